package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLevel(tt.in), "parseLevel(%q)", tt.in)
	}
}

func TestNew(t *testing.T) {
	log, err := New(Config{Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, log)

	log.Debug("debug message", String("key", "value"))
	log.Info("info message", Int("count", 3), Bool("ok", true))
	log.Warn("warn message", Strings("items", []string{"a", "b"}))

	child := log.With(String("component", "test"))
	require.NotNil(t, child)
	child.Info("child message")
}

func TestNop(t *testing.T) {
	log := NewNop()
	require.NotNil(t, log)

	// Every method must be callable without output or panic.
	log.Debug("msg")
	log.Info("msg", Int64("n", 1))
	log.Warn("msg", Float64("f", 0.5))
	log.Error("msg", Any("v", struct{}{}))
	assert.NoError(t, log.Sync())
	assert.NotNil(t, log.With(String("k", "v")))
}
