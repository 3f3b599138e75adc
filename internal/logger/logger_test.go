package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		wantErr bool
	}{
		{name: "json info", level: "info", format: "json"},
		{name: "console debug", level: "debug", format: "console"},
		{name: "default level", level: "", format: "json"},
		{name: "invalid level", level: "loud", format: "json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.format)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, logger)
			logger.Info("test message")
		})
	}
}

func TestNewWithConfigNil(t *testing.T) {
	_, err := NewWithConfig(nil)
	require.Error(t, err)
}

func TestNewWithConfigLevel(t *testing.T) {
	logger, err := NewWithConfig(&Config{Level: "warn"})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestContextLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithLogger(context.Background(), base)
	FromContext(ctx).Info("from context")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "from context", logs.All()[0].Message)
}

func TestContextLoggerFallback(t *testing.T) {
	assert.NotNil(t, FromContext(nil))
	assert.NotNil(t, FromContext(context.Background()))
}

func TestWithComponentAndSearchFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := WithComponent(zap.New(core), "aggregator")

	logger.Info("dispatch", SearchFields("0xabc", []string{"kusama", "polkadot"})...)

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "aggregator", fields["component"])
	assert.Equal(t, "0xabc", fields["query"])
	assert.Equal(t, []interface{}{"kusama", "polkadot"}, fields["networks"])
}
