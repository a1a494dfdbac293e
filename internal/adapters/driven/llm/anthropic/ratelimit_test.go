package anthropic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitsWithin reports whether Wait returns within d.
func waitsWithin(r *RateLimiter, d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return r.Wait(ctx) == nil
}

func TestRateLimiter_BurstThenThrottle(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.1, BurstSize: 2})
	assert.True(t, waitsWithin(r, 50*time.Millisecond))
	assert.True(t, waitsWithin(r, 50*time.Millisecond))
	assert.False(t, waitsWithin(r, 50*time.Millisecond))
}

func TestRateLimiter_BurstFloor(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 0.1})
	assert.True(t, waitsWithin(r, 50*time.Millisecond))
	assert.False(t, waitsWithin(r, 50*time.Millisecond))
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 10})
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(5)
	assert.Equal(t, 5*time.Second, r.backoffRemaining())
	assert.False(t, waitsWithin(r, 20*time.Millisecond))

	r.RecordRateLimitError(0)
	assert.Equal(t, defaultRateLimitBackoff, r.backoffRemaining())

	now = now.Add(2 * time.Minute)
	assert.LessOrEqual(t, r.backoffRemaining(), time.Duration(0))
	assert.True(t, waitsWithin(r, 20*time.Millisecond))
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	r.RecordRateLimitError(60)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := r.Wait(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitImmediate(t *testing.T) {
	r := NewRateLimiter(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 1})
	assert.NoError(t, r.Wait(context.Background()))
}
