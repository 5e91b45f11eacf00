package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "warn"})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestWithCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "info"}).With("component", "workflow")

	log.Info("submitted", "project", "myproj")

	out := buf.String()
	assert.Contains(t, out, "component=workflow")
	assert.Contains(t, out, "project=myproj")
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, Config{Level: "info", Format: "JSON"})

	log.Info("download finished", "name", "README.pdf", "bytes", 42)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "download finished", entry["msg"])
	assert.Equal(t, "README.pdf", entry["name"])
	assert.Equal(t, float64(42), entry["bytes"])
}

func TestFileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "client.log")

	log := New(Config{Level: "info", Output: logFile})
	log.Info("first")
	log.Error("second")

	data, err := os.ReadFile(logFile) // nolint:gosec
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "first"))
	assert.True(t, strings.Contains(string(data), "second"))
}

func TestCloseReleasesFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "client.log")

	log := New(Config{Level: "info", Output: logFile})
	log.With("component", "test").Info("before close")
	require.NoError(t, log.Close())

	f, ok := log.(*slogLogger).file.(*os.File)
	require.True(t, ok)
	assert.ErrorIs(t, f.Close(), os.ErrClosed)

	data, err := os.ReadFile(logFile) // nolint:gosec
	require.NoError(t, err)
	assert.Contains(t, string(data), "before close")
}

func TestCloseStandardStreams(t *testing.T) {
	for _, output := range []string{"stderr", "stdout", ""} {
		log := New(Config{Output: output})
		assert.NoError(t, log.Close())
		assert.NoError(t, log.Close())
	}

	var buf bytes.Buffer
	assert.NoError(t, NewWithWriter(&buf, Config{}).Close())
	assert.NoError(t, Noop().Close())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warning", "WARN"},
		{"WaRn", "WARN"},
		{"error", "ERROR"},
		{"", "INFO"},
		{"verbose", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.level).String())
		})
	}
}

func TestFingerprint(t *testing.T) {
	assert.Equal(t, "none", Fingerprint(""))

	fp := Fingerprint("secret-token")
	assert.Len(t, fp, 8)
	assert.NotContains(t, fp, "secret")
	assert.Equal(t, fp, Fingerprint("secret-token"))
	assert.NotEqual(t, fp, Fingerprint("other-token"))
}

func TestNoop(t *testing.T) {
	log := Noop()
	log.Debug("d")
	log.With("k", "v").Error("e")
}
