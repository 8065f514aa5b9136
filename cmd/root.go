package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cosmic-canvas/canvas-api/pkg/config"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvas-api",
	Short: "Cosmic Canvas API server",
	Long: `Cosmic Canvas API - annotation and PDF export service for deep-zoom imagery

The service stores point annotations on tiled deep-zoom images, serves the
tile pyramids and image catalog to viewer clients, and renders PDF reports
that reproduce the view each annotation was created in.

Features:
  • Per-image annotation storage (memory, file or SQLite backed)
  • DZI tile pyramid and catalog serving
  • Annotation text validation and JSON export/import
  • Headless viewport capture for PDF annotation reports`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// NewRootCmd creates a new root command (exported for testing)
func NewRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(loadConfig)
}

// loadConfig loads the configuration when a command needs it
func loadConfig() {
	// Version and help output must work without a config file present.
	cmd, _, _ := rootCmd.Find(os.Args[1:])
	if cmd != nil && (cmd.Name() == "version" || cmd.Name() == "help") {
		return
	}

	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}
