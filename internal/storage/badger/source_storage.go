package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SourceStorage implements interfaces.SourceStore over badgerhold.
type SourceStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSourceStorage constructs a SourceStorage.
func NewSourceStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SourceStore {
	return &SourceStorage{db: db, logger: logger}
}

func (s *SourceStorage) Save(ctx context.Context, source *models.JobSource) error {
	if source.ID == "" {
		return fmt.Errorf("source ID is required")
	}
	if err := s.db.Store().Upsert(source.ID, *source); err != nil {
		return fmt.Errorf("failed to save source %s: %w", source.ID, err)
	}
	return nil
}

func (s *SourceStorage) Get(ctx context.Context, id string) (*models.JobSource, error) {
	var source models.JobSource
	if err := s.db.Store().Get(id, &source); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &source, nil
}

func (s *SourceStorage) GetByURL(ctx context.Context, url string) (*models.JobSource, error) {
	var sources []models.JobSource
	if err := s.db.Store().Find(&sources, badgerhold.Where("URL").Eq(url)); err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, nil
	}
	return &sources[0], nil
}

func (s *SourceStorage) ListEnabled(ctx context.Context) ([]*models.JobSource, error) {
	var sources []models.JobSource
	if err := s.db.Store().Find(&sources, badgerhold.Where("Enabled").Eq(true)); err != nil {
		return nil, err
	}
	result := make([]*models.JobSource, 0, len(sources))
	for i := range sources {
		src := sources[i]
		result = append(result, &src)
	}
	return result, nil
}

// ListDue returns enabled sources whose poll interval has elapsed, or
// whose OPEN circuit has reached its half-open retry time. Filtering is
// done in memory, following the teacher's GetStaleJobs idiom of avoiding
// pointer-field query predicates that badgerhold's reflection can panic
// on.
func (s *SourceStorage) ListDue(ctx context.Context, now time.Time) ([]*models.JobSource, error) {
	enabled, err := s.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}

	var due []*models.JobSource
	for _, src := range enabled {
		switch src.CircuitState {
		case models.CircuitOpen:
			if src.ReadyForHalfOpenProbe(now) {
				due = append(due, src)
			}
		default:
			interval := time.Duration(src.PollIntervalSeconds) * time.Second
			if src.LastFetchedAt == nil || now.Sub(*src.LastFetchedAt) >= interval {
				due = append(due, src)
			}
		}
	}
	return due, nil
}
