package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	logger, zl, err := New(Config{AppName: "fern", Level: "debug"})
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.True(t, zl.Core().Enabled(zapcore.DebugLevel))

	_, zl, err = New(Config{Level: "warn", Pretty: true})
	require.NoError(t, err)
	assert.False(t, zl.Core().Enabled(zapcore.InfoLevel))
}

func TestNewInvalidLevel(t *testing.T) {
	_, _, err := New(Config{Level: "loud"})
	require.Error(t, err)
}
