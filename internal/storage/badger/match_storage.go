package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// MatchStorage implements interfaces.MatchStore over badgerhold.
type MatchStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMatchStorage constructs a MatchStorage.
func NewMatchStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MatchStore {
	return &MatchStorage{db: db, logger: logger}
}

func (s *MatchStorage) Save(ctx context.Context, match *models.JobMatch) error {
	if match.ID == "" {
		return fmt.Errorf("match ID is required")
	}
	if err := s.db.Store().Upsert(match.ID, *match); err != nil {
		return fmt.Errorf("failed to save match %s: %w", match.ID, err)
	}
	return nil
}

func (s *MatchStorage) GetByListing(ctx context.Context, listingID string) (*models.JobMatch, error) {
	var matches []models.JobMatch
	if err := s.db.Store().Find(&matches, badgerhold.Where("ListingID").Eq(listingID)); err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (s *MatchStorage) ListByPriority(ctx context.Context, priority models.MatchPriority, limit, offset int) ([]*models.JobMatch, error) {
	query := badgerhold.Where("Priority").Eq(priority).SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}
	var matches []models.JobMatch
	if err := s.db.Store().Find(&matches, query); err != nil {
		return nil, err
	}
	result := make([]*models.JobMatch, 0, len(matches))
	for i := range matches {
		m := matches[i]
		result = append(result, &m)
	}
	return result, nil
}
