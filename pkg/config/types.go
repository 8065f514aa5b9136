package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string          `mapstructure:"environment"`
	Server       ServerConfig    `mapstructure:"server"`
	Database     DatabaseConfig  `mapstructure:"database"`
	Storage      StorageConfig   `mapstructure:"storage"`
	Tiles        TilesConfig     `mapstructure:"tiles"`
	Export       ExportConfig    `mapstructure:"export"`
	RateLimiting RateLimitConfig `mapstructure:"rate_limiting"`
	Security     SecurityConfig  `mapstructure:"security"`
	Logging      LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
}

// DatabaseConfig contains SQLite settings, used when the sqlite storage
// backend is selected
type DatabaseConfig struct {
	Path       string `mapstructure:"path"`
	LogQueries bool   `mapstructure:"log_queries"`
}

// StorageConfig selects and tunes the annotation storage backend
type StorageConfig struct {
	// Backend is one of "memory", "file" or "sqlite"
	Backend  string `mapstructure:"backend"`
	FilePath string `mapstructure:"file_path"`
}

// TilesConfig locates the tile pyramids on disk
type TilesConfig struct {
	Dir string `mapstructure:"dir"`
}

// ExportConfig tunes the PDF export capture pipeline
type ExportConfig struct {
	SnippetSize       int           `mapstructure:"snippet_size"`
	MinTiles          int           `mapstructure:"min_tiles"`
	StabilizeTimeout  time.Duration `mapstructure:"stabilize_timeout"`
	ViewportWidth     int           `mapstructure:"viewport_width"`
	ViewportHeight    int           `mapstructure:"viewport_height"`
	FallbackZoomRatio float64       `mapstructure:"fallback_zoom_ratio"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled   bool           `mapstructure:"enabled"`
	Endpoints map[string]int `mapstructure:"endpoints"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS     bool     `mapstructure:"enable_cors"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
	CORSMethods    []string `mapstructure:"cors_methods"`
	CORSHeaders    []string `mapstructure:"cors_headers"`
	EnableRecovery bool     `mapstructure:"enable_recovery"`
	MaxRequestSize int64    `mapstructure:"max_request_size"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
