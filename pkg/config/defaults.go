package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "smartreadme"

// defaultDataPath returns ~/.config/smartreadme/<name>, or ./<name> when
// the home directory is unknown.
func defaultDataPath(name string) string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", name)
	}

	return filepath.Join(homeDir, ".config", appDir, name)
}

// DefaultConfigPath returns the user-level configuration file path.
//
// Returns: ~/.config/smartreadme/config.yaml.
func DefaultConfigPath() string {
	return defaultDataPath("config.yaml")
}

// ExpandHome expands a leading ~ or ~/ to the user's home directory. Other
// paths, and every path when the home directory is unknown, are returned
// unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return homeDir
	}
	return filepath.Join(homeDir, path[2:])
}

// expandPaths applies ExpandHome to every filesystem path in c.
func (c *Config) expandPaths() {
	c.Storage.DBPath = ExpandHome(c.Storage.DBPath)
	c.Storage.HistoryPath = ExpandHome(c.Storage.HistoryPath)
	c.Download.OutputDir = ExpandHome(c.Download.OutputDir)
	c.Watch.Dir = ExpandHome(c.Watch.Dir)
	if c.Logging.Output != "stdout" && c.Logging.Output != "stderr" {
		c.Logging.Output = ExpandHome(c.Logging.Output)
	}
}
