package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (Limiter, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return Limiter{Client: client, Prefix: "test:", Now: func() time.Time { return now }}, mr, &now
}

func TestLimiterAllowSlidingWindow(t *testing.T) {
	limiter, mr, now := newTestLimiter(t)
	ctx := context.Background()
	window := 2 * time.Second
	limit := 2
	start := *now

	for i := 0; i < limit; i++ {
		d, err := limiter.Allow(ctx, "key", window, limit)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		require.Equal(t, limit-(i+1), d.Remaining)
	}

	*now = now.Add(500 * time.Millisecond)
	d, err := limiter.Allow(ctx, "key", window, limit)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Zero(t, d.Remaining)
	require.WithinDuration(t, start.Add(window), d.ResetAt, 0)

	*now = start.Add(window)
	mr.FastForward(window)

	d, err = limiter.Allow(ctx, "key", window, limit)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestLimiterDoesNotCountRejectedHits(t *testing.T) {
	limiter, _, now := newTestLimiter(t)
	ctx := context.Background()
	start := *now

	d, err := limiter.Allow(ctx, "k", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)

	for i := 0; i < 3; i++ {
		*now = now.Add(10 * time.Second)
		d, err = limiter.Allow(ctx, "k", time.Minute, 1)
		require.NoError(t, err)
		require.False(t, d.Allowed)
	}

	*now = start.Add(time.Minute + time.Second)
	d, err = limiter.Allow(ctx, "k", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}

func TestLimiterWithoutClientAllows(t *testing.T) {
	d, err := Limiter{}.Allow(context.Background(), "key", time.Minute, 3)
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 3, d.Remaining)
}
