package config

import "errors"

// Common errors returned by the config package.
var (
	// ErrInvalidBaseURL is returned when the backend URL is not absolute http(s).
	ErrInvalidBaseURL = errors.New("invalid api base_url: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when an API timeout is <= 0.
	ErrInvalidTimeout = errors.New("invalid api timeout: must be > 0")

	// ErrEmptyStoragePath is returned when a storage path is empty.
	ErrEmptyStoragePath = errors.New("invalid storage: db_path and history_path are required")

	// ErrEmptyOutputDir is returned when the download directory is empty.
	ErrEmptyOutputDir = errors.New("invalid download output_dir: must not be empty")

	// ErrInvalidDebounce is returned when the watch debounce interval is <= 0.
	ErrInvalidDebounce = errors.New("invalid watch debounce_interval: must be > 0")

	// ErrInvalidDisplayFormat is returned when the display format is not recognized.
	ErrInvalidDisplayFormat = errors.New("invalid display format: must be table, json, or simple")

	// ErrInvalidLogLevel is returned when log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level: must be debug, info, warn, or error")

	// ErrInvalidLogFormat is returned when log format is not recognized.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")

	// ErrConfigNotFound is returned when config file is not found.
	ErrConfigNotFound = errors.New("config file not found")

	// ErrInvalidYAML is returned when config file has invalid YAML syntax.
	ErrInvalidYAML = errors.New("invalid YAML syntax in config file")
)
