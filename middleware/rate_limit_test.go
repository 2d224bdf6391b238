package middleware

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/la-cortesia/cortesia_api/services"
)

func newTestLimiter(t *testing.T) (*RateLimitMiddleware, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	redisSvc := &services.RedisService{}
	redisSvc.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	limiter := &RateLimitMiddleware{redisSvc: redisSvc}
	limiter.initDefaultConfigs()
	return limiter, mr
}

func TestIsAllowedWithinWindow(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	for i := 0; i < 10; i++ {
		allowed, info, err := limiter.IsAllowed("10.0.0.1", "game_create")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10-(i+1), info.Remaining)
	}
}

func TestIsAllowedBlocksOverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	for i := 0; i < 10; i++ {
		_, _, err := limiter.IsAllowed("10.0.0.2", "game_create")
		require.NoError(t, err)
	}

	allowed, info, err := limiter.IsAllowed("10.0.0.2", "game_create")
	require.NoError(t, err)
	assert.False(t, allowed)
	require.NotNil(t, info.BlockedUntil)
	assert.True(t, info.BlockedUntil.After(time.Now()))
}

func TestBlockExpiresAfterBlockTime(t *testing.T) {
	limiter, mr := newTestLimiter(t)

	for i := 0; i < 11; i++ {
		_, _, err := limiter.IsAllowed("10.0.0.3", "game_create")
		require.NoError(t, err)
	}

	allowed, _, err := limiter.IsAllowed("10.0.0.3", "game_create")
	require.NoError(t, err)
	assert.False(t, allowed)

	// Past the 30 minute block and the 15 minute counter window.
	mr.FastForward(31 * time.Minute)

	allowed, info, err := limiter.IsAllowed("10.0.0.3", "game_create")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 9, info.Remaining)
}

func TestIdentifiersAreIsolated(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	for i := 0; i < 11; i++ {
		_, _, err := limiter.IsAllowed("10.0.0.4", "vote_submit")
		require.NoError(t, err)
	}

	allowed, _, err := limiter.IsAllowed("10.0.0.5", "vote_submit")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestUnknownEndpointTypeAllowed(t *testing.T) {
	limiter, _ := newTestLimiter(t)

	allowed, info, err := limiter.IsAllowed("10.0.0.6", "nonexistent")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, -1, info.Remaining)
}
