package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// Manager implements interfaces.QueueManager over a QueueStore,
// layering idempotency dedup, fan-out depth guarding, terminal-state
// transitions and retry backoff on top of the store's plain
// enqueue/claim/update primitives. Grounded on the teacher's queue
// package shape (one manager orchestrating a storage-backed work
// queue) generalized to this pipeline's re-enqueue-between-subtypes
// state machine, which the teacher's single-pass job queue never
// needed.
type Manager struct {
	store    interfaces.QueueStore
	cfg      *common.WorkerConfig
	leaseTTL time.Duration
	logger   arbor.ILogger
}

// NewManager constructs a Manager. leaseTTL is how long a CLAIMED/
// PROCESSING item may sit unclaimed-by-progress before ReclaimStale
// considers its worker dead and returns it to PENDING; callers derive
// it from SchedulerConfig.LeaseMultiplier * the poll interval.
func NewManager(store interfaces.QueueStore, cfg *common.WorkerConfig, leaseTTL time.Duration, logger arbor.ILogger) *Manager {
	return &Manager{store: store, cfg: cfg, leaseTTL: leaseTTL, logger: logger}
}

var _ interfaces.QueueManager = (*Manager)(nil)

// Submit enqueues item, unless its IdempotencyKey already names an item
// in the store (in which case Submit is a no-op returning ok=false), its
// (Type, SubType) tuple already occurs somewhere in its own ancestor
// chain (the loop guard, catching a cyclic fan-out even once its prior
// occurrence has already gone terminal and dropped out of the
// idempotency index), or its lineage has grown beyond MaxFanOutDepth.
func (m *Manager) Submit(ctx context.Context, item *models.QueueItem) (bool, error) {
	if item.Depth > m.cfg.MaxFanOutDepth {
		return false, fmt.Errorf("queue item %s exceeds max fan-out depth %d (depth=%d)", item.ID, m.cfg.MaxFanOutDepth, item.Depth)
	}

	looped, err := m.ancestorLoopDetected(ctx, item)
	if err != nil {
		return false, fmt.Errorf("checking ancestor lineage for item %s: %w", item.ID, err)
	}
	if looped {
		m.logger.Warn().Str("item_id", item.ID).Str("root_id", item.RootID).Str("type", string(item.Type)).Str("sub_type", string(item.SubType)).
			Msg("rejecting fan-out item: (type, subType) already occurred in its ancestor chain")
		return false, nil
	}

	if item.IdempotencyKey != "" {
		existing, err := m.store.GetByIdempotencyKey(ctx, item.IdempotencyKey)
		if err != nil {
			return false, fmt.Errorf("checking idempotency key %s: %w", item.IdempotencyKey, err)
		}
		if existing != nil {
			return false, nil
		}
	}

	if err := m.store.Enqueue(ctx, item); err != nil {
		return false, fmt.Errorf("enqueueing item %s: %w", item.ID, err)
	}
	return true, nil
}

// ancestorLoopDetected walks item's ParentID chain upward (NOT a flat
// scan of everything sharing item.RootID, which would falsely flag
// legitimate sibling fan-out: many children spawned from one parent
// share a RootID and often a (Type, SubType) pair without being a
// cycle) looking for a prior occurrence of item's own (Type, SubType).
func (m *Manager) ancestorLoopDetected(ctx context.Context, item *models.QueueItem) (bool, error) {
	parentID := item.ParentID
	for parentID != nil {
		ancestor, err := m.store.Get(ctx, *parentID)
		if err != nil {
			return false, fmt.Errorf("loading ancestor %s: %w", *parentID, err)
		}
		if ancestor == nil {
			return false, nil
		}
		if ancestor.Type == item.Type && ancestor.SubType == item.SubType {
			return true, nil
		}
		parentID = ancestor.ParentID
	}
	return false, nil
}

// Claim atomically hands the next eligible item of one of types to
// workerID.
func (m *Manager) Claim(ctx context.Context, types []models.ItemType, workerID string) (*models.QueueItem, error) {
	item, err := m.store.ClaimNext(ctx, types, workerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("claiming next item: %w", err)
	}
	return item, nil
}

// Complete applies outcome to item: either a terminal status, or a
// re-enqueue at the next sub-type for the processor's following step.
// Any fan-out items outcome names are submitted through Submit (so
// dedup and depth guarding still apply to them).
func (m *Manager) Complete(ctx context.Context, item *models.QueueItem, outcome interfaces.Outcome) error {
	now := time.Now()

	for k, v := range outcome.PayloadPatch {
		if item.Payload == nil {
			item.Payload = make(map[string]interface{})
		}
		item.Payload[k] = v
	}

	// A fan-out child that would itself exceed MaxFanOutDepth blocks the
	// parent rather than being enqueued: the cycle (or runaway fan-out)
	// is in item's own lineage, so item is the one terminated.
	if overDepth := firstOverDepthChild(outcome.FanOut, m.cfg.MaxFanOutDepth); overDepth != nil {
		item.Status = models.StatusBlocked
		item.ClaimedBy = nil
		item.ClaimedAt = nil
		item.ErrorDetails = &models.ErrorDetails{
			Kind:      string(models.ErrorKindMaxDepthExceeded),
			Message:   fmt.Sprintf("fan-out child %s would reach depth %d, exceeding max fan-out depth %d", overDepth.ID, overDepth.Depth, m.cfg.MaxFanOutDepth),
			Attempt:   item.Attempts,
			Timestamp: now,
		}
		item.UpdatedAt = now
		if err := m.store.Update(ctx, item); err != nil {
			return fmt.Errorf("updating blocked item %s: %w", item.ID, err)
		}
		m.logger.Warn().Str("item_id", item.ID).Str("blocked_child_id", overDepth.ID).Msg("fan-out would exceed max depth, blocking parent item")
		return nil
	}

	if outcome.Terminal != "" {
		item.Status = outcome.Terminal
		item.ClaimedBy = nil
		item.ClaimedAt = nil
	} else {
		item.SubType = outcome.NextSubType
		item.Status = models.StatusPending
		item.NextAttemptAt = now
		item.ClaimedBy = nil
		item.ClaimedAt = nil
	}
	item.UpdatedAt = now

	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("updating completed item %s: %w", item.ID, err)
	}

	for _, child := range outcome.FanOut {
		if _, err := m.Submit(ctx, child); err != nil {
			m.logger.Warn().Err(err).Str("parent_id", item.ID).Str("child_id", child.ID).Msg("failed to submit fan-out item")
		}
	}

	return nil
}

// firstOverDepthChild returns the first fan-out child whose Depth
// exceeds maxDepth, or nil if none do.
func firstOverDepthChild(children []*models.QueueItem, maxDepth int) *models.QueueItem {
	for _, child := range children {
		if child.Depth > maxDepth {
			return child
		}
	}
	return nil
}

// Fail records a processing error against item, retrying with backoff
// while attempts and the error's retryability allow it, or marking the
// item terminally FAILED once they don't. Attempts itself is bumped at
// claim time (ClaimNext), not here, so a worker that crashes mid-process
// without ever reaching Fail still counts toward MaxAttempts on its next
// claim.
func (m *Manager) Fail(ctx context.Context, item *models.QueueItem, procErr error) error {
	now := time.Now()
	kind := models.KindOf(procErr)

	item.ErrorDetails = &models.ErrorDetails{
		Kind:      string(kind),
		Message:   procErr.Error(),
		Attempt:   item.Attempts,
		Timestamp: now,
	}

	if models.IsRetryable(kind) && item.Attempts < item.MaxAttempts {
		item.Status = models.StatusPending
		item.ClaimedBy = nil
		item.ClaimedAt = nil
		item.NextAttemptAt = now.Add(calculateBackoff(m.cfg, kind, item.Attempts-1))
	} else {
		item.Status = models.StatusFailed
		item.ClaimedBy = nil
		item.ClaimedAt = nil
	}
	item.UpdatedAt = now

	if err := m.store.Update(ctx, item); err != nil {
		return fmt.Errorf("updating failed item %s: %w", item.ID, err)
	}
	return nil
}

// ReclaimStale finds items whose lease (claimed but not completed
// within leaseTTL) has expired and returns them to PENDING, recovering
// work orphaned by a crashed worker.
func (m *Manager) ReclaimStale(ctx context.Context) (int, error) {
	deadline := time.Now().Add(-m.leaseTTL)
	stale, err := m.store.ListStale(ctx, deadline)
	if err != nil {
		return 0, fmt.Errorf("listing stale items: %w", err)
	}

	reclaimed := 0
	for _, item := range stale {
		item.Status = models.StatusPending
		item.ClaimedBy = nil
		item.ClaimedAt = nil
		item.NextAttemptAt = time.Now()
		item.UpdatedAt = time.Now()
		if err := m.store.Update(ctx, item); err != nil {
			m.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to reclaim stale item")
			continue
		}
		reclaimed++
	}
	return reclaimed, nil
}
