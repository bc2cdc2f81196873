package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPresetConfigs(t *testing.T) {
	dev := DefaultConfig()
	assert.Equal(t, "console", dev.Format)
	assert.Equal(t, "stdout", dev.Output)

	prod := ProductionConfig()
	assert.Equal(t, "json", prod.Format)
	assert.Equal(t, "info", prod.Level)
}

func TestNew(t *testing.T) {
	t.Run("nil config falls back to defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("writes json to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "orderbridge.log")
		l, err := New(&Config{Level: "debug", Format: "json", Output: path})
		require.NoError(t, err)

		l.Debug("cart started", zap.Int64("order_id", 42))
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(data), &entry))
		assert.Equal(t, "cart started", entry["msg"])
		assert.Equal(t, "debug", entry["level"])
		assert.EqualValues(t, 42, entry["order_id"])
	})

	t.Run("unwritable output is an error", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open log output")
	})

	t.Run("extra cores receive entries", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		l, err := New(&Config{Format: "json", Output: "stderr"}, WithCore(core), WithCore(nil))
		require.NoError(t, err)

		l.Info("tee me")
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "tee me", logs.All()[0].Message)
	})
}

func TestNewForEnvironment(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		level  string
		format string
	}{
		{name: "development", env: "development"},
		{name: "production", env: "production"},
		{name: "overrides", env: "production", level: "debug", format: "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewForEnvironment(tt.env, tt.level, tt.format, "stderr")
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{" info ", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.level))
		})
	}
}

func TestNamed(t *testing.T) {
	assert.NotNil(t, Named(nil, "browser"))

	core, logs := observer.New(zapcore.InfoLevel)
	Named(zap.New(core), "browser").Info("x")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "browser", logs.All()[0].LoggerName)
}

func TestCreateWriter(t *testing.T) {
	for _, out := range []string{"", "stdout", "stderr", "STDOUT"} {
		t.Run(out, func(t *testing.T) {
			w, err := createWriter(out)
			require.NoError(t, err)
			assert.NotNil(t, w)
		})
	}
}

func TestCreateEncoder_EmptyTimeFormat(t *testing.T) {
	assert.NotNil(t, createEncoder(&Config{Format: "json"}))
	assert.NotNil(t, createEncoder(&Config{Format: "console"}))
}
