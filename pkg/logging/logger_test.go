package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hardyjosh/rain-oracle-server/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestLogger_Fields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.Info("signed context", "direction", "as_is", "expiry", 1700000005, 42, "ignored")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "signed context", entry["message"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "as_is", entry["direction"])
	assert.Equal(t, float64(1700000005), entry["expiry"])
}

func TestLogger_ErrorField(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := New(zerolog.New(&buf))

	l.Error("fetch failed", "error", errors.New("connection refused"))

	entry := decodeLine(t, &buf)
	assert.Equal(t, "connection refused", entry["error"])
}

func TestLogger_With(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l := New(zerolog.New(&buf)).With("component", "pyth")

	l.Warn("stale price")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "pyth", entry["component"])
	assert.Equal(t, "warn", entry["level"])
}

func TestNoopLogger(t *testing.T) {
	l := NewNoopLogger()
	assert.NotPanics(t, func() {
		l.Debug("x")
		l.Info("x", "k", "v")
		l.Warn("x")
		l.Error("x")
	})
	assert.NoError(t, l.Close())
}

func TestInit_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "oracle.log")

	l, err := Init(config.LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stderr",
		File:   config.LogFileConfig{Path: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1},
	})
	require.NoError(t, err)

	l.Info("server started", "addr", ":3000")
	l.Debug("filtered out")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "server started")
	assert.NotContains(t, string(data), "filtered out")
}

func TestInit_InvalidLevelFallsBackToInfo(t *testing.T) {
	_, err := Init(config.LoggingConfig{Level: "loud", Output: "stdout"})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
