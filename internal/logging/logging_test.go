package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString_RecognizesTrace(t *testing.T) {
	level, err := LevelFromString("trace")
	require.NoError(t, err)
	assert.Equal(t, TraceLevel, level)
}

func TestLevelFromString_StandardLevels(t *testing.T) {
	level, err := LevelFromString("warn")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, level)
}

func TestLevelFromString_RejectsUnknown(t *testing.T) {
	_, err := LevelFromString("not-a-level")
	assert.Error(t, err)
}

func TestNew_BuildsLoggerForConsoleAndJSON(t *testing.T) {
	l, err := New(Options{Level: "info", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, l)

	l2, err := New(Options{Level: "info", Format: "json"})
	require.NoError(t, err)
	require.NotNil(t, l2)
}

func TestNew_FallsBackToInfoOnBadLevel(t *testing.T) {
	l, err := New(Options{Level: "bogus", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestWithCorrelationID_RoundTrips(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "abc-123")
	fields := contextFields(ctx)
	require.Len(t, fields, 1)
	assert.Equal(t, "correlation_id", fields[0].Key)
	assert.Equal(t, "abc-123", fields[0].String)
}

func TestContextFields_EmptyWithoutCorrelationID(t *testing.T) {
	fields := contextFields(context.Background())
	assert.Empty(t, fields)
}

func TestNewCorrelationID_ProducesNonEmptyUniqueIDs(t *testing.T) {
	a := NewCorrelationID()
	b := NewCorrelationID()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestLogger_MethodsDoNotPanic(t *testing.T) {
	l, err := New(Options{Level: "trace", Format: "json"})
	require.NoError(t, err)
	ctx := WithCorrelationID(context.Background(), "req-1")

	assert.NotPanics(t, func() {
		l.Trace(ctx, "trace msg")
		l.Debug(ctx, "debug msg")
		l.Info(ctx, "info msg")
		l.Warn(ctx, "warn msg")
		l.Error(ctx, "error msg")
		_ = l.Sync()
	})
}
