package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_WritesJSONWithStaticAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Options{App: "staff-attendance", Version: "test", Env: "development", Level: "info"})

	logger.Debug("hidden")
	logger.Info("snapshot saved", "date", "2024-01-01")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "staff-attendance", entry["app"])
	assert.Equal(t, "2024-01-01", entry["date"])
	assert.Contains(t, buf.String(), "snapshot saved")
}

func TestSetup_WritesFile(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	path := filepath.Join(t.TempDir(), "logs", "api.log")
	logger, closeFn, err := Setup(Options{App: "a", Env: "test", File: path})
	require.NoError(t, err)
	logger.Info("to file")
	require.NoError(t, closeFn())

	assert.FileExists(t, path)
}

func TestNewCLI_FiltersByVerbosity(t *testing.T) {
	var buf bytes.Buffer
	NewCLI(&buf, false).Info("quiet")
	assert.Empty(t, buf.String())

	NewCLI(&buf, false).Warn("loud")
	assert.Contains(t, buf.String(), "loud")
}
