package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func TestCalculateBackoff_GrowsWithAttemptAndRespectsCeiling(t *testing.T) {
	cfg := &common.WorkerConfig{InitialBackoff: "100ms", MaxBackoff: "1s", BackoffMultiplier: 2.0}

	first := calculateBackoff(cfg, models.ErrorKindTransient, 0)
	assert.GreaterOrEqual(t, first, 75*time.Millisecond)
	assert.LessOrEqual(t, first, 125*time.Millisecond)

	later := calculateBackoff(cfg, models.ErrorKindTransient, 10)
	assert.LessOrEqual(t, later, 1*time.Second+250*time.Millisecond)
}

func TestCalculateBackoff_FallsBackOnBadDurationStrings(t *testing.T) {
	cfg := &common.WorkerConfig{InitialBackoff: "", MaxBackoff: "not-a-duration", BackoffMultiplier: 2.0}
	d := calculateBackoff(cfg, models.ErrorKindTransient, 0)
	assert.Greater(t, d, time.Duration(0))
}

func TestCalculateBackoff_NeverNegative(t *testing.T) {
	cfg := &common.WorkerConfig{InitialBackoff: "1s", MaxBackoff: "1s", BackoffMultiplier: 2.0}
	for attempt := 0; attempt < 20; attempt++ {
		assert.GreaterOrEqual(t, calculateBackoff(cfg, models.ErrorKindTransient, attempt), time.Duration(0))
	}
}

func TestCalculateBackoff_BlockedUsesLargerFloorThanTransient(t *testing.T) {
	cfg := &common.WorkerConfig{InitialBackoff: "1s", MaxBackoff: "10m", BackoffMultiplier: 2.0}

	transient := calculateBackoff(cfg, models.ErrorKindTransient, 0)
	blocked := calculateBackoff(cfg, models.ErrorKindBlocked, 0)

	assert.Greater(t, blocked, transient)
}
