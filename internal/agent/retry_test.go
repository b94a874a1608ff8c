package agent

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimitError(t *testing.T) {
	assert.True(t, IsRateLimitError(errors.New("Error 429: too many requests")))
	assert.True(t, IsRateLimitError(errors.New("RESOURCE_EXHAUSTED: quota exceeded")))
	assert.False(t, IsRateLimitError(errors.New("not found")))
	assert.False(t, IsRateLimitError(nil))
}

func TestExtractRetryDelay(t *testing.T) {
	err := errors.New("Error 429, Message: ... Please retry in 45.38s., Status: RESOURCE_EXHAUSTED")
	delay := ExtractRetryDelay(err)
	assert.InDelta(t, 45.38, delay.Seconds(), 0.01)

	assert.Equal(t, time.Duration(0), ExtractRetryDelay(errors.New("no delay here")))
}

func TestCalculateBackoff(t *testing.T) {
	cfg := NewDefaultRetryConfig()

	first := cfg.CalculateBackoff(0, 0)
	assert.Equal(t, cfg.InitialBackoff, first)

	second := cfg.CalculateBackoff(1, 0)
	assert.True(t, second > first)

	capped := cfg.CalculateBackoff(10, 0)
	assert.LessOrEqual(t, capped, cfg.MaxBackoff)
}

func TestCalculateBackoff_UsesAPIDelay(t *testing.T) {
	cfg := NewDefaultRetryConfig()
	withDelay := cfg.CalculateBackoff(0, 30*time.Second)
	assert.Equal(t, 35*time.Second, withDelay)
}
