package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogDurationWritesTimerEntry(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := TimerLogger
	TimerLogger = zap.New(core)
	defer func() { TimerLogger = prev }()

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	LogDuration(ctx, "provider_call")()

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "provider_call", fields["func"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Contains(t, fields, "duration_ms")
}

func TestInitLoggerCreatesDirectory(t *testing.T) {
	prevApp, prevReq, prevTimer, prevErr := AppLogger, RequestLogger, TimerLogger, ErrorLogger
	defer func() {
		AppLogger, RequestLogger, TimerLogger, ErrorLogger = prevApp, prevReq, prevTimer, prevErr
	}()

	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, InitLogger(dir))

	RequestLogger.Info("hello")
	Sync()

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(dir, "request.log"))
	assert.NoError(t, err)
}
