package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/simaogato/wealthflow-allocator/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantLevel zapcore.Level
	}{
		{name: "Console debug", cfg: config.LogConfig{Level: "DEBUG", Encoding: "console"}, wantLevel: zapcore.DebugLevel},
		{name: "JSON warn with sampling", cfg: config.LogConfig{Level: "warn", Encoding: "json", Sampling: true}, wantLevel: zapcore.WarnLevel},
		{name: "Unknown level falls back to info", cfg: config.LogConfig{Level: "chatty", Encoding: "json"}, wantLevel: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.wantLevel))
			assert.False(t, log.Core().Enabled(tt.wantLevel-1))
		})
	}
}

func TestNew_InvalidEncoding(t *testing.T) {
	_, err := New(config.LogConfig{Level: "info", Encoding: "xml"})
	assert.Error(t, err)
}
