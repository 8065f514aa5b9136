// Package config loads application settings from ./config/settings.yaml with
// CANVAS_-prefixed environment overrides, on top of built-in defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once    sync.Once
	initErr error
)

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		// Set default values
		setDefaults()

		// Set up environment variable reading for overrides
		viper.SetEnvPrefix("CANVAS")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
		viper.AutomaticEnv()

		// Load config from fixed location (cleaned for safety)
		configPath := filepath.Clean("./config/settings.yaml")
		viper.SetConfigFile(configPath)

		// Try to read the config file
		if err := viper.ReadInConfig(); err != nil {
			// If the config file doesn't exist, just use defaults and env vars
			if !os.IsNotExist(err) {
				initErr = fmt.Errorf("error reading config file %s: %w", configPath, err)
				return
			}
		}

		// Validate the configuration
		if err := validate(); err != nil {
			initErr = fmt.Errorf("invalid configuration: %w", err)
		}
	})

	return initErr
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// Get returns a config value by key using Viper directly
func Get(key string) any {
	return viper.Get(key)
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

// validate validates the configuration using Viper values
func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	backend := viper.GetString("storage.backend")
	switch backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %q", backend)
	}
	if backend == "file" && viper.GetString("storage.file_path") == "" {
		return fmt.Errorf("storage.file_path is required for the file backend")
	}
	if backend == "sqlite" && viper.GetString("database.path") == "" {
		return fmt.Errorf("database.path is required for the sqlite backend")
	}

	if viper.GetString("tiles.dir") == "" {
		fmt.Println("Warning: No tiles directory configured, the image catalog will be empty")
	}

	// Auto-correct unusable export tuning
	if viper.GetInt("export.snippet_size") <= 0 {
		viper.Set("export.snippet_size", 500)
	}
	if viper.GetInt("export.min_tiles") <= 0 {
		viper.Set("export.min_tiles", 6)
	}
	if viper.GetFloat64("export.fallback_zoom_ratio") <= 0 {
		viper.Set("export.fallback_zoom_ratio", 0.3)
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("invalid storage backend: %q", c.Storage.Backend)
	}

	if c.Export.SnippetSize <= 0 {
		c.Export.SnippetSize = 500
	}
	if c.Export.MinTiles <= 0 {
		c.Export.MinTiles = 6
	}

	return nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Environment defaults
	viper.SetDefault("environment", "development")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)
	viper.SetDefault("server.max_header_bytes", 1048576)

	// Database defaults
	viper.SetDefault("database.path", "./data/canvas.db")
	viper.SetDefault("database.log_queries", false)

	// Storage defaults
	viper.SetDefault("storage.backend", "file")
	viper.SetDefault("storage.file_path", "./data/annotations.json")

	// Tiles defaults
	viper.SetDefault("tiles.dir", "./data/tiles")

	// Export defaults
	viper.SetDefault("export.snippet_size", 500)
	viper.SetDefault("export.min_tiles", 6)
	viper.SetDefault("export.stabilize_timeout", 2*time.Second)
	viper.SetDefault("export.viewport_width", 1000)
	viper.SetDefault("export.viewport_height", 800)
	viper.SetDefault("export.fallback_zoom_ratio", 0.3)

	// Rate limiting defaults
	viper.SetDefault("rate_limiting.enabled", true)
	viper.SetDefault("rate_limiting.endpoints", map[string]int{
		"annotations": 120,
		"export":      10,
		"tiles":       300,
		"default":     120,
	})

	// Security defaults
	viper.SetDefault("security.enable_cors", true)
	viper.SetDefault("security.cors_origins", []string{"*"})
	viper.SetDefault("security.cors_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	viper.SetDefault("security.cors_headers", []string{"Content-Type", "Authorization"})
	viper.SetDefault("security.enable_recovery", true)
	viper.SetDefault("security.max_request_size", 1048576)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}
