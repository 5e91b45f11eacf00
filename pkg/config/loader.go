package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables recognised by the loader.
const (
	EnvAPIURL     = "SMARTREADME_API_URL"
	EnvDB         = "SMARTREADME_DB"
	EnvHistoryDB  = "SMARTREADME_HISTORY_DB"
	EnvOutputDir  = "SMARTREADME_OUTPUT_DIR"
	EnvLogLevel   = "SMARTREADME_LOG_LEVEL"
	defaultDotEnv = ".env"
)

// Loader provides methods for loading configuration from various sources.
type Loader interface {
	// Load loads configuration with the following precedence:
	// 1. Environment variables (process environment, then .env)
	// 2. Configuration file
	// 3. Default values
	//
	// Returns the merged configuration or an error if validation fails.
	Load() (*Config, error)

	// LoadFromFile loads configuration from a specific file.
	LoadFromFile(path string) (*Config, error)

	// Path returns the configuration file Load uses, or "" if none exists.
	Path() string
}

// loader implements the Loader interface.
type loader struct {
	configPath string
	envFile    string
	getenv     func(string) string
}

// NewLoader creates a new configuration loader.
//
// If configPath is empty, searches for config file in:
// 1. ./smartreadme.yaml (current directory)
// 2. ~/.config/smartreadme/config.yaml.
func NewLoader(configPath string) Loader {
	return NewLoaderWithEnv(configPath, defaultDotEnv)
}

// NewLoaderWithEnv is NewLoader with an explicit dotenv file. An empty
// envFile disables dotenv loading.
func NewLoaderWithEnv(configPath, envFile string) Loader {
	return &loader{
		configPath: configPath,
		envFile:    envFile,
		getenv:     os.Getenv,
	}
}

// Load implements Loader.Load.
func (l *loader) Load() (*Config, error) {
	cfg := Default()

	if configPath := l.Path(); configPath != "" {
		fileCfg, err := l.LoadFromFile(configPath)
		if err != nil {
			// An explicitly requested file must load.
			if l.configPath != "" {
				return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
			}
		} else {
			cfg = l.mergeConfigs(cfg, fileCfg)
		}
	}

	env, err := l.environment()
	if err != nil {
		return nil, err
	}
	cfg = l.applyEnvVars(cfg, env)
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadFromFile implements Loader.LoadFromFile.
func (l *loader) LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) // nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return &cfg, nil
}

// Path implements Loader.Path.
func (l *loader) Path() string {
	if l.configPath != "" {
		return l.configPath
	}

	for _, path := range []string{"./smartreadme.yaml", DefaultConfigPath()} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// environment returns a lookup that prefers the process environment and
// falls back to the dotenv file. A missing dotenv file is not an error.
func (l *loader) environment() (func(string) string, error) {
	if l.envFile == "" {
		return l.getenv, nil
	}

	values, err := godotenv.Read(l.envFile)
	if err != nil {
		if os.IsNotExist(err) {
			return l.getenv, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", l.envFile, err)
	}

	return func(key string) string {
		if v := l.getenv(key); v != "" {
			return v
		}
		return values[key]
	}, nil
}

// mergeConfigs merges file configuration into default configuration.
//
// File values override defaults, but only if they are non-zero.
func (l *loader) mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.API.BaseURL != "" {
		result.API.BaseURL = override.API.BaseURL
	}
	if override.API.LoginTimeout > 0 {
		result.API.LoginTimeout = override.API.LoginTimeout
	}
	if override.API.GenerateTimeout > 0 {
		result.API.GenerateTimeout = override.API.GenerateTimeout
	}
	if override.API.DownloadTimeout > 0 {
		result.API.DownloadTimeout = override.API.DownloadTimeout
	}

	if override.Storage.DBPath != "" {
		result.Storage.DBPath = override.Storage.DBPath
	}
	if override.Storage.HistoryPath != "" {
		result.Storage.HistoryPath = override.Storage.HistoryPath
	}

	if override.Download.OutputDir != "" {
		result.Download.OutputDir = override.Download.OutputDir
	}

	if override.Watch.Dir != "" {
		result.Watch.Dir = override.Watch.Dir
	}
	if override.Watch.DebounceInterval > 0 {
		result.Watch.DebounceInterval = override.Watch.DebounceInterval
	}
	// Bools have no unset state, so the file value always wins.
	result.Watch.DownloadAll = override.Watch.DownloadAll

	if override.Display.Format != "" {
		result.Display.Format = override.Display.Format
	}
	result.Display.ShowPaths = override.Display.ShowPaths
	result.Display.Compact = override.Display.Compact

	if override.Logging.Level != "" {
		result.Logging.Level = override.Logging.Level
	}
	if override.Logging.Output != "" {
		result.Logging.Output = override.Logging.Output
	}
	if override.Logging.Format != "" {
		result.Logging.Format = override.Logging.Format
	}

	return &result
}

// applyEnvVars applies environment variable overrides to the configuration.
//
// Supported environment variables:
//   - SMARTREADME_API_URL: backend base URL
//   - SMARTREADME_DB: session database path
//   - SMARTREADME_HISTORY_DB: history database path
//   - SMARTREADME_OUTPUT_DIR: download directory
//   - SMARTREADME_LOG_LEVEL: log level
func (l *loader) applyEnvVars(cfg *Config, getenv func(string) string) *Config {
	result := *cfg

	if v := getenv(EnvAPIURL); v != "" {
		result.API.BaseURL = strings.TrimSpace(v)
	}
	if v := getenv(EnvDB); v != "" {
		result.Storage.DBPath = v
	}
	if v := getenv(EnvHistoryDB); v != "" {
		result.Storage.HistoryPath = v
	}
	if v := getenv(EnvOutputDir); v != "" {
		result.Download.OutputDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		result.Logging.Level = strings.ToLower(v)
	}

	return &result
}

// Load is a convenience function that creates a loader and loads configuration.
func Load() (*Config, error) {
	return NewLoader("").Load()
}

// LoadFromFile is a convenience function that loads configuration from a file.
func LoadFromFile(path string) (*Config, error) {
	return NewLoader(path).Load()
}

// Save writes the configuration to a YAML file.
//
// Creates parent directories if they don't exist.
// File is created with 0600 permissions (read/write for owner only).
func Save(cfg *Config, path string) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
