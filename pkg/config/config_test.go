package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg == nil {
		t.Fatal("Default() returned nil")
	}
	if cfg.API.BaseURL != "http://localhost:5134" {
		t.Errorf("BaseURL = %s, want http://localhost:5134", cfg.API.BaseURL)
	}
	if cfg.API.GenerateTimeout != 5*time.Minute {
		t.Errorf("GenerateTimeout = %v, want 5m", cfg.API.GenerateTimeout)
	}
	if filepath.Base(cfg.Storage.DBPath) != "session.db" {
		t.Errorf("DBPath = %s, want .../session.db", cfg.Storage.DBPath)
	}
	if cfg.Display.Format != "table" {
		t.Errorf("Display.Format = %s, want table", cfg.Display.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"valid default config", func(c *Config) {}, nil},
		{"https base url", func(c *Config) { c.API.BaseURL = "https://readme.example.com/base" }, nil},
		{"relative base url", func(c *Config) { c.API.BaseURL = "/api" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *Config) { c.API.BaseURL = "ftp://host" }, ErrInvalidBaseURL},
		{"zero generate timeout", func(c *Config) { c.API.GenerateTimeout = 0 }, ErrInvalidTimeout},
		{"negative download timeout", func(c *Config) { c.API.DownloadTimeout = -time.Second }, ErrInvalidTimeout},
		{"empty db path", func(c *Config) { c.Storage.DBPath = "" }, ErrEmptyStoragePath},
		{"empty history path", func(c *Config) { c.Storage.HistoryPath = "" }, ErrEmptyStoragePath},
		{"empty output dir", func(c *Config) { c.Download.OutputDir = "" }, ErrEmptyOutputDir},
		{"zero debounce", func(c *Config) { c.Watch.DebounceInterval = 0 }, ErrInvalidDebounce},
		{"bad display format", func(c *Config) { c.Display.Format = "xml" }, ErrInvalidDisplayFormat},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
		{"bad log format", func(c *Config) { c.Logging.Format = "yaml" }, ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid config file",
			content: `
api:
  base_url: https://readme.example.com
  generate_timeout: 90s
storage:
  db_path: /tmp/session.db
download:
  output_dir: /tmp/out
watch:
  dir: /tmp/drop
  debounce_interval: 2s
  download_all: true
display:
  format: json
  compact: true
logging:
  level: debug
  output: stdout
  format: json
`,
			check: func(t *testing.T, cfg *Config) {
				if cfg.API.BaseURL != "https://readme.example.com" {
					t.Errorf("BaseURL = %s", cfg.API.BaseURL)
				}
				if cfg.API.GenerateTimeout != 90*time.Second {
					t.Errorf("GenerateTimeout = %v, want 90s", cfg.API.GenerateTimeout)
				}
				if cfg.API.DownloadTimeout != 2*time.Minute {
					t.Errorf("DownloadTimeout = %v, want default 2m", cfg.API.DownloadTimeout)
				}
				if cfg.Storage.DBPath != "/tmp/session.db" {
					t.Errorf("DBPath = %s", cfg.Storage.DBPath)
				}
				if filepath.Base(cfg.Storage.HistoryPath) != "history.db" {
					t.Errorf("HistoryPath = %s, want default", cfg.Storage.HistoryPath)
				}
				if cfg.Watch.Dir != "/tmp/drop" || !cfg.Watch.DownloadAll {
					t.Errorf("Watch = %+v", cfg.Watch)
				}
				if cfg.Watch.DebounceInterval != 2*time.Second {
					t.Errorf("DebounceInterval = %v, want 2s", cfg.Watch.DebounceInterval)
				}
				if cfg.Display.Format != "json" {
					t.Errorf("Display.Format = %s, want json", cfg.Display.Format)
				}
				if !cfg.Display.Compact {
					t.Error("Display.Compact = false, want true")
				}
				if cfg.Logging.Level != "debug" {
					t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
				}
			},
		},
		{
			name:    "invalid yaml",
			content: `invalid: yaml: content: [`,
			wantErr: true,
		},
		{
			name:    "invalid values",
			content: "api:\n  base_url: not-a-url\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.name+".yaml")
			if err := os.WriteFile(filePath, []byte(tt.content), 0600); err != nil {
				t.Fatalf("Failed to create test file: %v", err)
			}

			cfg, err := NewLoaderWithEnv(filePath, "").Load()

			if tt.wantErr {
				if err == nil {
					t.Error("Load() error = nil, wantErr = true")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v, wantErr = false", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	_, err := NewLoaderWithEnv(filepath.Join(t.TempDir(), "nonexistent.yaml"), "").Load()
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("Load() error = %v, want ErrConfigNotFound", err)
	}
}

func TestSave(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Logging.Level = "debug"
	cfg.API.GenerateTimeout = 10 * time.Minute

	if err := Save(cfg, configPath); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loadedCfg, err := NewLoaderWithEnv(configPath, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loadedCfg.Logging.Level != "debug" {
		t.Errorf("Loaded config LogLevel = %s, want debug", loadedCfg.Logging.Level)
	}
	if loadedCfg.API.GenerateTimeout != 10*time.Minute {
		t.Errorf("Loaded GenerateTimeout = %v, want 10m", loadedCfg.API.GenerateTimeout)
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "loud"

	if err := Save(cfg, filepath.Join(t.TempDir(), "config.yaml")); err == nil {
		t.Error("Save() error = nil, want validation error")
	}
}

func TestEnvVarOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://backend:9000")
	t.Setenv(EnvDB, "/env/session.db")
	t.Setenv(EnvHistoryDB, "/env/history.db")
	t.Setenv(EnvOutputDir, "/env/out")
	t.Setenv(EnvLogLevel, "DEBUG")

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("api:\n  base_url: http://from-file:1\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoaderWithEnv(configPath, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://backend:9000" {
		t.Errorf("BaseURL = %s, want env override", cfg.API.BaseURL)
	}
	if cfg.Storage.DBPath != "/env/session.db" {
		t.Errorf("DBPath = %s, want /env/session.db", cfg.Storage.DBPath)
	}
	if cfg.Storage.HistoryPath != "/env/history.db" {
		t.Errorf("HistoryPath = %s, want /env/history.db", cfg.Storage.HistoryPath)
	}
	if cfg.Download.OutputDir != "/env/out" {
		t.Errorf("OutputDir = %s, want /env/out", cfg.Download.OutputDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.Logging.Level)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := EnvAPIURL + "=http://dotenv:5134\n" + EnvOutputDir + "=/dotenv/out\n"
	if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	// The process environment wins over the dotenv file.
	t.Setenv(EnvOutputDir, "/process/out")

	cfg, err := NewLoaderWithEnv(configPath, envFile).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "http://dotenv:5134" {
		t.Errorf("BaseURL = %s, want value from .env", cfg.API.BaseURL)
	}
	if cfg.Download.OutputDir != "/process/out" {
		t.Errorf("OutputDir = %s, want process env value", cfg.Download.OutputDir)
	}
}

func TestMissingDotEnvIgnored(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoaderWithEnv(configPath, filepath.Join(t.TempDir(), ".env")).Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
}

func TestLoaderPath(t *testing.T) {
	if got := NewLoader("/explicit.yaml").Path(); got != "/explicit.yaml" {
		t.Errorf("Path() = %s, want /explicit.yaml", got)
	}
	if filepath.Base(DefaultConfigPath()) != "config.yaml" {
		t.Errorf("DefaultConfigPath() = %s", DefaultConfigPath())
	}
}

func BenchmarkValidate(b *testing.B) {
	cfg := Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := cfg.Validate(); err != nil {
			b.Fatal(err)
		}
	}
}

func TestLoadExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, env := range []string{EnvAPIURL, EnvDB, EnvHistoryDB, EnvOutputDir, EnvLogLevel} {
		t.Setenv(env, "")
	}

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `storage:
  db_path: ~/s/session.db
  history_path: ~/s/history.db
download:
  output_dir: ~/readmes
watch:
  dir: ~
logging:
  output: ~/logs/client.log
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoaderWithEnv(configPath, "").Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"db_path", cfg.Storage.DBPath, filepath.Join(home, "s", "session.db")},
		{"history_path", cfg.Storage.HistoryPath, filepath.Join(home, "s", "history.db")},
		{"output_dir", cfg.Download.OutputDir, filepath.Join(home, "readmes")},
		{"watch dir", cfg.Watch.Dir, home},
		{"log output", cfg.Logging.Output, filepath.Join(home, "logs", "client.log")},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %s, want %s", tt.name, tt.got, tt.want)
		}
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"~", home},
		{"~/a/b", filepath.Join(home, "a", "b")},
		{"~other/x", "~other/x"},
		{"/abs/path", "/abs/path"},
		{"rel/~/path", "rel/~/path"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandHome(tt.path); got != tt.want {
			t.Errorf("ExpandHome(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
