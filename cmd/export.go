package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cosmic-canvas/canvas-api/pkg/config"
)

var (
	exportImageID string
	exportOutPath string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a PDF annotation report for an image",
	Long: `Render a PDF annotation report without starting the server.

The report contains one page per annotation with a captured snippet of the
view the annotation was created in, using the configured storage backend
and tile directory.

Example:
  canvas-api export --image mars-surface
  canvas-api export --image mars-surface --out /tmp/report.pdf`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportImageID, "image", "", "image ID to export (required)")
	exportCmd.Flags().StringVar(&exportOutPath, "out", "", "output path (defaults to the generated filename)")
	exportCmd.MarkFlagRequired("image")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return err
	}

	deps, db, err := buildDependencies(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	ctx := cmd.Context()

	img, err := deps.CatalogService.GetImage(ctx, exportImageID)
	if err != nil {
		return fmt.Errorf("image %q: %w", exportImageID, err)
	}

	viewer, err := deps.OpenViewer(ctx, img.ID)
	if err != nil {
		return fmt.Errorf("failed to open viewer for %q: %w", img.ID, err)
	}

	var buf bytes.Buffer
	filename, err := deps.ExportService.Export(ctx, viewer, img.ID, img.Name, &buf)
	if err != nil {
		return err
	}

	outPath := exportOutPath
	if outPath == "" {
		outPath = filename
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d bytes)\n", outPath, buf.Len())
	return nil
}
