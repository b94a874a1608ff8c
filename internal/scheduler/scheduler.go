package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// Scheduler runs the worker pool that claims and processes QueueItems,
// the cron timers that trigger source polling, and the lease-reclaim
// sweep, grounded on the teacher's `workers.Pool` (N goroutines pulling
// off a channel) generalized from one shared channel to one
// per-item-type worker group so `ConcurrencyByType` caps are enforced
// independently per lane instead of globally.
type Scheduler struct {
	queue      interfaces.QueueManager
	processors interfaces.ProcessorRegistry
	cfg        *common.Config
	logger     arbor.ILogger

	cron *cronTrigger
	lease *leaseReclaimer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Scheduler.
func New(
	queueManager interfaces.QueueManager,
	processors interfaces.ProcessorRegistry,
	sources interfaces.SourceStore,
	intake scrapeTrigger,
	cfg *common.Config,
	logger arbor.ILogger,
) *Scheduler {
	return &Scheduler{
		queue:      queueManager,
		processors: processors,
		cfg:        cfg,
		logger:     logger,
		cron:       newCronTrigger(sources, intake, cfg, logger),
		lease:      newLeaseReclaimer(queueManager, cfg, logger),
	}
}

var _ interfaces.Scheduler = (*Scheduler)(nil)

// Start launches one worker group per configured item type, the lease
// reclaim ticker, and the cron trigger, all stoppable via the returned
// error path or a later Stop call.
func (s *Scheduler) Start(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	pollInterval := parseDurationOrDefault(s.cfg.Worker.PollInterval, time.Second)

	for typeName, concurrency := range s.cfg.Worker.ConcurrencyByType {
		itemType := models.ItemType(typeName)
		if concurrency <= 0 {
			continue
		}
		for i := 0; i < concurrency; i++ {
			s.wg.Add(1)
			go s.runWorker(workerCtx, itemType, pollInterval)
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.lease.run(workerCtx)
	}()

	if err := s.cron.start(); err != nil {
		cancel()
		return fmt.Errorf("starting cron trigger: %w", err)
	}

	return nil
}

// Stop cancels all worker goroutines and the lease reclaim loop, stops
// cron, and waits (bounded by ctx) for everything to exit.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cron.stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("scheduler shutdown timed out: %w", ctx.Err())
	}
}

func (s *Scheduler) runWorker(ctx context.Context, itemType models.ItemType, pollInterval time.Duration) {
	defer s.wg.Done()
	workerID := fmt.Sprintf("%s-%s", itemType, uuid.New().String())

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.claimAndProcessOne(ctx, itemType, workerID)
		}
	}
}

func (s *Scheduler) claimAndProcessOne(ctx context.Context, itemType models.ItemType, workerID string) {
	item, err := s.queue.Claim(ctx, []models.ItemType{itemType}, workerID)
	if err != nil {
		s.logger.Error().Err(err).Str("item_type", string(itemType)).Msg("failed to claim next queue item")
		return
	}
	if item == nil {
		return
	}

	proc, ok := s.processors.Get(itemType)
	if !ok {
		s.logger.Error().Str("item_type", string(itemType)).Msg("no processor registered for claimed item type")
		_ = s.queue.Fail(ctx, item, fmt.Errorf("no processor registered for type %s", itemType))
		return
	}

	outcome, err := proc.Process(ctx, item)
	if err != nil {
		if failErr := s.queue.Fail(ctx, item, err); failErr != nil {
			s.logger.Error().Err(failErr).Str("item_id", item.ID).Msg("failed to record processing failure")
		}
		return
	}

	if err := s.queue.Complete(ctx, item, outcome); err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID).Msg("failed to commit processing outcome")
	}
}

func parseDurationOrDefault(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
