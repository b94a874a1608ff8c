package badger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// QueueStorage implements interfaces.QueueStore over badgerhold.
//
// ClaimNext is the one operation that must be atomic across concurrent
// workers. BadgerHold's public API has no compare-and-swap primitive, and
// the teacher never drops to a raw badger.Txn anywhere in its tree, so
// this guards the find-then-update critical section with an in-process
// mutex instead. Spec's single-host, no-cross-host-coordination
// concurrency model (only one process ever holds this store) makes that
// sufficient.
type QueueStorage struct {
	db        *BadgerDB
	logger    arbor.ILogger
	claimLock sync.Mutex
}

// NewQueueStorage constructs a QueueStorage.
func NewQueueStorage(db *BadgerDB, logger arbor.ILogger) interfaces.QueueStore {
	return &QueueStorage{db: db, logger: logger}
}

func (s *QueueStorage) Enqueue(ctx context.Context, item *models.QueueItem) error {
	if item.ID == "" {
		return fmt.Errorf("queue item ID is required")
	}
	if err := s.db.Store().Insert(item.ID, *item); err != nil {
		return fmt.Errorf("failed to enqueue item %s: %w", item.ID, err)
	}
	return nil
}

func (s *QueueStorage) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	var item models.QueueItem
	if err := s.db.Store().Get(id, &item); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (s *QueueStorage) GetByIdempotencyKey(ctx context.Context, key string) (*models.QueueItem, error) {
	if key == "" {
		return nil, nil
	}
	var items []models.QueueItem
	if err := s.db.Store().Find(&items, badgerhold.Where("IdempotencyKey").Eq(key)); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ClaimNext atomically finds the oldest eligible PENDING item among types
// and transitions it to CLAIMED. The find-then-update pair runs under
// claimLock so two workers can never claim the same item.
func (s *QueueStorage) ClaimNext(ctx context.Context, types []models.ItemType, claimant string, now time.Time) (*models.QueueItem, error) {
	s.claimLock.Lock()
	defer s.claimLock.Unlock()

	var candidates []models.QueueItem
	if err := s.db.Store().Find(&candidates, badgerhold.Where("Status").Eq(models.StatusPending)); err != nil {
		return nil, err
	}

	typeSet := make(map[models.ItemType]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	var best *models.QueueItem
	for i := range candidates {
		c := candidates[i]
		if !typeSet[c.Type] {
			continue
		}
		if c.NextAttemptAt.After(now) {
			continue
		}
		if best == nil || c.CreatedAt.Before(best.CreatedAt) {
			item := c
			best = &item
		}
	}
	if best == nil {
		return nil, nil
	}

	claimedBy := claimant
	best.Status = models.StatusClaimed
	best.ClaimedBy = &claimedBy
	best.ClaimedAt = &now
	best.UpdatedAt = now
	// Attempts is bumped here, atomically with the claim, not in
	// queue.Manager.Fail: a worker that crashes mid-process without ever
	// calling Fail would otherwise leave Attempts untouched, letting
	// ReclaimStale hand the item back out forever without ever tripping
	// MaxAttempts.
	best.Attempts++

	if err := s.db.Store().Update(best.ID, *best); err != nil {
		return nil, fmt.Errorf("failed to claim item %s: %w", best.ID, err)
	}
	return best, nil
}

func (s *QueueStorage) Update(ctx context.Context, item *models.QueueItem) error {
	item.UpdatedAt = time.Now()
	if err := s.db.Store().Update(item.ID, *item); err != nil {
		return fmt.Errorf("failed to update item %s: %w", item.ID, err)
	}
	return nil
}

func (s *QueueStorage) ListStale(ctx context.Context, deadline time.Time) ([]*models.QueueItem, error) {
	var candidates []models.QueueItem
	if err := s.db.Store().Find(&candidates, badgerhold.Where("Status").In(models.StatusClaimed, models.StatusProcessing)); err != nil {
		return nil, err
	}

	var stale []*models.QueueItem
	for i := range candidates {
		c := candidates[i]
		if c.ClaimedAt != nil && c.ClaimedAt.Before(deadline) {
			item := c
			stale = append(stale, &item)
		}
	}
	return stale, nil
}

func (s *QueueStorage) ListChildren(ctx context.Context, parentID string) ([]*models.QueueItem, error) {
	var items []models.QueueItem
	if err := s.db.Store().Find(&items, badgerhold.Where("ParentID").Eq(&parentID)); err != nil {
		return nil, err
	}
	result := make([]*models.QueueItem, 0, len(items))
	for i := range items {
		if items[i].ParentID != nil && *items[i].ParentID == parentID {
			item := items[i]
			result = append(result, &item)
		}
	}
	return result, nil
}

func (s *QueueStorage) ListByRoot(ctx context.Context, rootID string) ([]*models.QueueItem, error) {
	var items []models.QueueItem
	if err := s.db.Store().Find(&items, badgerhold.Where("RootID").Eq(rootID)); err != nil {
		return nil, err
	}
	result := make([]*models.QueueItem, 0, len(items))
	for i := range items {
		item := items[i]
		result = append(result, &item)
	}
	return result, nil
}

func (s *QueueStorage) CountByStatus(ctx context.Context, status models.ItemStatus) (int, error) {
	return s.db.Store().Count(&models.QueueItem{}, badgerhold.Where("Status").Eq(status))
}

// RequeueOrphaned flips any CLAIMED/PROCESSING item back to PENDING,
// mirroring the teacher's MarkRunningJobsAsPending. The shutdown path
// does not call it; stale claims are returned by lease reclamation.
func (s *QueueStorage) RequeueOrphaned(ctx context.Context) (int, error) {
	var inFlight []models.QueueItem
	if err := s.db.Store().Find(&inFlight, badgerhold.Where("Status").In(models.StatusClaimed, models.StatusProcessing)); err != nil {
		return 0, err
	}

	now := time.Now()
	count := 0
	for i := range inFlight {
		item := inFlight[i]
		item.Status = models.StatusPending
		item.ClaimedBy = nil
		item.ClaimedAt = nil
		item.NextAttemptAt = now
		item.UpdatedAt = now
		if err := s.db.Store().Update(item.ID, item); err != nil {
			s.logger.Warn().Err(err).Str("item_id", item.ID).Msg("failed to requeue orphaned item")
			continue
		}
		count++
	}
	return count, nil
}
