package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
)

func TestLeaseReclaimer_RunReclaimsOnEachTick(t *testing.T) {
	queue := &fakeQueueManager{reclaimed: 2}
	cfg := &common.Config{}
	cfg.Scheduler.ReclaimInterval = "10ms"

	reclaimer := newLeaseReclaimer(queue, cfg, arbor.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reclaimer.run(ctx)
}

func TestLeaseReclaimer_ToleratesReclaimError(t *testing.T) {
	queue := &fakeQueueManager{reclaimErr: assertErr{}}
	cfg := &common.Config{}
	cfg.Scheduler.ReclaimInterval = "10ms"

	reclaimer := newLeaseReclaimer(queue, cfg, arbor.NewLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	reclaimer.run(ctx)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
