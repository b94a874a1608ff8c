package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
)

const defaultReclaimInterval = time.Minute

// leaseReclaimer periodically sweeps claimed QueueItems whose lease has
// expired back to PENDING, grounded on the teacher's staleJobTicker /
// staleJobDetectorLoop pair in scheduler_service.go — generalized from a
// fixed 5-minute ticker checking job heartbeats to a configurable
// interval checking QueueItem lease expiry via the Queue Manager.
type leaseReclaimer struct {
	queue  interfaces.QueueManager
	cfg    *common.Config
	logger arbor.ILogger
}

func newLeaseReclaimer(queueManager interfaces.QueueManager, cfg *common.Config, logger arbor.ILogger) *leaseReclaimer {
	return &leaseReclaimer{queue: queueManager, cfg: cfg, logger: logger}
}

func (r *leaseReclaimer) run(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().Str("panic", fmt.Sprintf("%v", rec)).Msg("recovered from panic in lease reclaim loop - reclaimer stopped")
		}
	}()

	interval := parseDurationOrDefault(r.cfg.Scheduler.ReclaimInterval, defaultReclaimInterval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.queue.ReclaimStale(ctx)
			if err != nil {
				r.logger.Error().Err(err).Msg("stale lease reclaim failed")
				continue
			}
			if count > 0 {
				r.logger.Warn().Int("count", count).Msg("reclaimed queue items with expired leases")
			}
		}
	}
}
