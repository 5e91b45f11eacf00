// Package config provides configuration management for smartreadme.
//
// Configuration is loaded from multiple sources with the following precedence:
// 1. Command-line flags (highest priority)
// 2. Environment variables (including a .env file)
// 3. Configuration file
// 4. Default values (lowest priority)
//
// Example usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Backend: %s\n", cfg.API.BaseURL)
package config

import (
	"net/url"
	"time"
)

// Config represents the complete application configuration.
//
// Invariants:
// - API.BaseURL is an absolute http(s) URL
// - all API timeouts are > 0
// - Storage paths are non-empty
// - Watch.DebounceInterval is > 0.
type Config struct {
	// Backend settings
	API APIConfig `yaml:"api"`

	// Local persistence
	Storage StorageConfig `yaml:"storage"`

	// Download settings
	Download DownloadConfig `yaml:"download"`

	// Drop-folder settings
	Watch WatchConfig `yaml:"watch"`

	// Display settings
	Display DisplayConfig `yaml:"display"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// Root URL of the generation backend
	BaseURL string `yaml:"base_url"`

	// Upper bound for a login request
	LoginTimeout time.Duration `yaml:"login_timeout"`

	// Upper bound for one generation, upload included
	GenerateTimeout time.Duration `yaml:"generate_timeout"`

	// Upper bound for one artifact download
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// StorageConfig contains storage-related settings.
type StorageConfig struct {
	// Path to the BoltDB session file
	DBPath string `yaml:"db_path"`

	// Path to the SQLite generation history
	HistoryPath string `yaml:"history_path"`
}

// DownloadConfig contains download settings.
type DownloadConfig struct {
	// Directory receiving downloaded artifacts
	OutputDir string `yaml:"output_dir"`
}

// WatchConfig contains drop-folder settings.
type WatchConfig struct {
	// Directory watched for new archives
	Dir string `yaml:"dir"`

	// Quiet period before an archive is processed
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// Download every artifact after each generation
	DownloadAll bool `yaml:"download_all"`
}

// DisplayConfig contains display-related settings.
type DisplayConfig struct {
	// Output format (table, json, simple)
	Format string `yaml:"format"`

	// Show artifact server paths in tables
	ShowPaths bool `yaml:"show_paths"`

	// Drop header rules and blank lines from tables
	Compact bool `yaml:"compact"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Log level (debug, info, warn, error)
	Level string `yaml:"level"`

	// Log output destination (stdout, stderr, file path)
	Output string `yaml:"output"`

	// Log format (text, json)
	Format string `yaml:"format"`
}

// Validate checks if the configuration satisfies all invariants.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.API.LoginTimeout <= 0 || c.API.GenerateTimeout <= 0 || c.API.DownloadTimeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Storage.DBPath == "" || c.Storage.HistoryPath == "" {
		return ErrEmptyStoragePath
	}

	if c.Download.OutputDir == "" {
		return ErrEmptyOutputDir
	}

	if c.Watch.DebounceInterval <= 0 {
		return ErrInvalidDebounce
	}

	validFormats := map[string]bool{
		"table":  true,
		"json":   true,
		"simple": true,
	}
	if !validFormats[c.Display.Format] {
		return ErrInvalidDisplayFormat
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.Logging.Format] {
		return ErrInvalidLogFormat
	}

	return nil
}

// Default returns a configuration with sensible default values.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:         "http://localhost:5134",
			LoginTimeout:    30 * time.Second,
			GenerateTimeout: 5 * time.Minute,
			DownloadTimeout: 2 * time.Minute,
		},
		Storage: StorageConfig{
			DBPath:      defaultDataPath("session.db"),
			HistoryPath: defaultDataPath("history.db"),
		},
		Download: DownloadConfig{
			OutputDir: ".",
		},
		Watch: WatchConfig{
			DebounceInterval: 500 * time.Millisecond,
		},
		Display: DisplayConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Output: "stderr",
			Format: "text",
		},
	}
}
