package interfaces

import (
	"context"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// QueueManager is the single mutator of QueueItem state. Every state
// transition funnels through it so dedup, lineage, loop-guard, and
// backoff rules are enforced in one place.
type QueueManager interface {
	// Submit enqueues a new item, rejecting it (returning ok=false, no
	// error) when an item with the same IdempotencyKey already exists,
	// when its (Type, SubType) already occurs in its own ancestor chain
	// (the loop guard), or when its Depth exceeds MaxFanOutDepth.
	Submit(ctx context.Context, item *models.QueueItem) (ok bool, err error)

	// Claim pulls the next eligible item of one of the given types for
	// processing by this worker.
	Claim(ctx context.Context, types []models.ItemType, workerID string) (*models.QueueItem, error)

	// Complete advances item per outcome: applies a terminal status, or
	// advances to NextSubType, then submits any FanOut children (each
	// checked against the loop guard and dedup key before insertion). If
	// any FanOut child would exceed MaxFanOutDepth, item itself is
	// transitioned to terminal BLOCKED instead, and no children are
	// enqueued.
	Complete(ctx context.Context, item *models.QueueItem, outcome Outcome) error

	// Fail records err against item and either schedules a backoff retry
	// or marks it terminally FAILED depending on attempts and the
	// error's classified kind.
	Fail(ctx context.Context, item *models.QueueItem, err error) error

	// ReclaimStale requeues CLAIMED/PROCESSING items whose lease expired.
	ReclaimStale(ctx context.Context) (int, error)
}
