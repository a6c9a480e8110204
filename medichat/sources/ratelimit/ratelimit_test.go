package ratelimit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(2, time.Minute)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false, false} {
		ok, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}

	ok, _ := l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok, "other clients are counted separately")

	now = now.Add(time.Minute)
	ok, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok, "window resets")
}

func TestMemoryLimiterSweep(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewMemoryLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow(context.Background(), "a")
	now = now.Add(30 * time.Second)
	l.Allow(context.Background(), "b")
	now = now.Add(45 * time.Second)
	l.Sweep()

	assert.Len(t, l.windows, 1)
	assert.Contains(t, l.windows, "b")
}

func TestRedisLimiter(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	l := NewRedisLimiter(client, 2, time.Minute)
	l.prefix = "medichat:test:" + time.Now().Format(time.RFC3339Nano) + ":"

	for i, want := range []bool{true, true, false} {
		ok, err := l.Allow(ctx, "client")
		require.NoError(t, err)
		assert.Equal(t, want, ok, "hit %d", i+1)
	}
}
