package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestConfig(t *testing.T) {
	json := Config("warn", "json")
	assert.Equal(t, "json", json.Encoding)
	assert.Equal(t, "timestamp", json.EncoderConfig.TimeKey)
	assert.Equal(t, zapcore.WarnLevel, json.Level.Level())
	assert.Equal(t, []string{"stdout"}, json.OutputPaths)

	console := Config("debug", "console")
	assert.Equal(t, "console", console.Encoding)
	assert.True(t, console.Development)
	assert.Equal(t, zapcore.DebugLevel, console.Level.Level())
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("error", "json", "cleanarch-test")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.ErrorLevel))
}
