package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRateLimiter_Allow_PerMinute(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	config := RateLimitConfig{RequestsPerMinute: 5}

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "webhook:acme:stripe", config)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should be allowed", i+1)
	}

	allowed, err := limiter.Allow(ctx, "webhook:acme:stripe", config)
	require.NoError(t, err)
	assert.False(t, allowed, "6th request should be denied")

	allowed, err = limiter.Allow(ctx, "webhook:globex:stripe", config)
	require.NoError(t, err)
	assert.True(t, allowed, "keys are independent")
}

func TestRedisRateLimiter_WindowSlides(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }
	config := RateLimitConfig{RequestsPerMinute: 2}

	for i := 0; i < 2; i++ {
		allowed, err := limiter.Allow(ctx, "k", config)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, err := limiter.Allow(ctx, "k", config)
	require.NoError(t, err)
	assert.False(t, allowed)

	limiter.now = func() time.Time { return base.Add(2 * time.Minute) }
	allowed, err = limiter.Allow(ctx, "k", config)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisRateLimiter_RemainingAndReset(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	ctx := context.Background()
	config := RateLimitConfig{RequestsPerMinute: 10}

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "k", config)
		require.NoError(t, err)
	}

	remaining, err := limiter.GetRemaining(ctx, "k", time.Minute, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 7, remaining)

	require.NoError(t, limiter.Reset(ctx, "k"))
	remaining, err = limiter.GetRemaining(ctx, "k", time.Minute, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 10, remaining)
}

func TestRedisRateLimiter_DisabledWindows(t *testing.T) {
	limiter := NewRedisRateLimiter(setupTestRedis(t))
	for i := 0; i < 20; i++ {
		allowed, err := limiter.Allow(context.Background(), "k", RateLimitConfig{})
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}
