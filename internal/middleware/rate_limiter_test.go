package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiterExhaustsBucket(t *testing.T) {
	limiter := NewIPRateLimiter(2)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.1"))
	assert.False(t, limiter.Allow("10.0.0.1"))
	assert.True(t, limiter.Allow("10.0.0.2"))

	now = now.Add(30 * time.Second)
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestIPRateLimiterEvictsIdleBuckets(t *testing.T) {
	limiter := NewIPRateLimiter(5)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.Allow("10.0.0.1")
	limiter.Allow("10.0.0.2")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(30 * time.Second)
	limiter.Allow("10.0.0.2")
	assert.Equal(t, 2, limiter.Len())

	now = now.Add(time.Minute)
	limiter.Allow("10.0.0.3")
	assert.Equal(t, 1, limiter.Len())
}
