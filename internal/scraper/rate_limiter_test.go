package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostRateLimiter_SeparatesHosts(t *testing.T) {
	limiter := newHostRateLimiter(1.0)

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), "https://a.example.com/1"))
	require.NoError(t, limiter.Wait(context.Background(), "https://b.example.com/1"))
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 200*time.Millisecond, "distinct hosts must not share a bucket")
}

func TestHostRateLimiter_ThrottlesSameHost(t *testing.T) {
	limiter := newHostRateLimiter(5.0) // burst 1, so a second immediate call on the same host must wait

	require.NoError(t, limiter.Wait(context.Background(), "https://a.example.com/1"))

	start := time.Now()
	require.NoError(t, limiter.Wait(context.Background(), "https://a.example.com/2"))
	elapsed := time.Since(start)

	assert.Greater(t, elapsed, 100*time.Millisecond)
}

func TestHostRateLimiter_NoHostIsNoop(t *testing.T) {
	limiter := newHostRateLimiter(1.0)
	require.NoError(t, limiter.Wait(context.Background(), "not a url"))
}

func TestHostRateLimiter_RespectsContextCancellation(t *testing.T) {
	limiter := newHostRateLimiter(0.1) // very slow, so the second wait should block well past the ctx deadline

	require.NoError(t, limiter.Wait(context.Background(), "https://slow.example.com/1"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "https://slow.example.com/2")
	require.Error(t, err)
}
