package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/jobpipeline/internal/models"
)

// QueueStore persists QueueItems and implements the claim/transition
// primitives the Queue Manager builds retry, backoff, and lineage on top
// of.
type QueueStore interface {
	Enqueue(ctx context.Context, item *models.QueueItem) error
	Get(ctx context.Context, id string) (*models.QueueItem, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*models.QueueItem, error)

	// ClaimNext atomically finds the oldest eligible PENDING item of one
	// of the given types whose NextAttemptAt has elapsed, transitions it
	// to CLAIMED by claimant, and increments Attempts as part of the same
	// update, so a worker crash mid-processing still counts toward
	// MaxAttempts on the item's next claim. Returns nil, nil when nothing
	// is ready.
	ClaimNext(ctx context.Context, types []models.ItemType, claimant string, now time.Time) (*models.QueueItem, error)

	Update(ctx context.Context, item *models.QueueItem) error

	// ListStale returns CLAIMED/PROCESSING items whose ClaimedAt predates
	// the lease deadline, for reclamation by the scheduler.
	ListStale(ctx context.Context, deadline time.Time) ([]*models.QueueItem, error)

	ListChildren(ctx context.Context, parentID string) ([]*models.QueueItem, error)
	ListByRoot(ctx context.Context, rootID string) ([]*models.QueueItem, error)
	CountByStatus(ctx context.Context, status models.ItemStatus) (int, error)

	// RequeueOrphaned flips any CLAIMED/PROCESSING item back to PENDING.
	// Shutdown does not call it: in-flight items stay CLAIMED until the
	// lease reclaimer returns them to PENDING.
	RequeueOrphaned(ctx context.Context) (int, error)
}

// ListingStore persists JobListings.
type ListingStore interface {
	Save(ctx context.Context, listing *models.JobListing) error
	Get(ctx context.Context, id string) (*models.JobListing, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*models.JobListing, error)
	List(ctx context.Context, limit, offset int) ([]*models.JobListing, error)
}

// MatchStore persists JobMatches.
type MatchStore interface {
	Save(ctx context.Context, match *models.JobMatch) error
	GetByListing(ctx context.Context, listingID string) (*models.JobMatch, error)
	ListByPriority(ctx context.Context, priority models.MatchPriority, limit, offset int) ([]*models.JobMatch, error)
}

// CompanyStore persists Companies.
type CompanyStore interface {
	Save(ctx context.Context, company *models.Company) error
	Get(ctx context.Context, id string) (*models.Company, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
}

// SourceStore persists JobSources.
type SourceStore interface {
	Save(ctx context.Context, source *models.JobSource) error
	Get(ctx context.Context, id string) (*models.JobSource, error)
	GetByURL(ctx context.Context, url string) (*models.JobSource, error)
	ListEnabled(ctx context.Context) ([]*models.JobSource, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.JobSource, error)
}

// ConfigStore persists ConfigEntry overrides.
type ConfigStore interface {
	Get(ctx context.Context, key string) (*models.ConfigEntry, error)
	Set(ctx context.Context, entry *models.ConfigEntry) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]*models.ConfigEntry, error)
}

// CostStore persists CostLedgerEntries and answers daily-spend rollups
// for the Agent Manager's budget gate. Spend is rolled up per provider
// (CostBudgetConfig's ceilings are per-provider), not per scope.
type CostStore interface {
	Record(ctx context.Context, entry *models.CostLedgerEntry) error
	SpendForDay(ctx context.Context, provider, day string) (float64, error)
}

// StorageManager aggregates the per-entity stores behind one handle, the
// same accessor-composition shape as the teacher's badger.Manager.
type StorageManager interface {
	Queue() QueueStore
	Listings() ListingStore
	Matches() MatchStore
	Companies() CompanyStore
	Sources() SourceStore
	Config() ConfigStore
	Cost() CostStore
	Close() error
}
