package queue

import (
	"math"
	"math/rand"
	"time"

	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/models"
)

const (
	fallbackInitialBackoff = 5 * time.Second
	fallbackMaxBackoff     = 10 * time.Minute

	// blockedBackoffFloorMultiplier scales the initial backoff for a
	// Blocked (bot wall / 429-as-block) classification: a source that
	// just blocked us needs longer to cool down than a plain transient
	// failure, so retrying at the ordinary floor would likely trip the
	// block again immediately.
	blockedBackoffFloorMultiplier = 6
)

// calculateBackoff computes the delay before a failed QueueItem's next
// attempt, exponential in the attempt count and jittered by ±25% so a
// burst of items failing together doesn't all wake up and retry in
// lockstep. A Blocked classification uses a larger floor than the
// configured InitialBackoff, per the error table's "retry with longer
// backoff" rule. Grounded on services/crawler/retry.go's
// RetryPolicy.CalculateBackoff.
func calculateBackoff(cfg *common.WorkerConfig, kind models.ErrorKind, attempt int) time.Duration {
	initial := parseDurationOr(cfg.InitialBackoff, fallbackInitialBackoff)
	max := parseDurationOr(cfg.MaxBackoff, fallbackMaxBackoff)
	if kind == models.ErrorKindBlocked {
		initial *= blockedBackoffFloorMultiplier
	}
	multiplier := cfg.BackoffMultiplier
	if multiplier <= 1 {
		multiplier = 2.0
	}

	backoff := float64(initial) * math.Pow(multiplier, float64(attempt))
	if backoff > float64(max) {
		backoff = float64(max)
	}

	jitter := backoff * 0.25 * (rand.Float64()*2 - 1)
	backoff += jitter
	if backoff < float64(initial) {
		backoff = float64(initial)
	}

	return time.Duration(backoff)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
