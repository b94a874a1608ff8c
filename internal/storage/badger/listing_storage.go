package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ListingStorage implements interfaces.ListingStore over badgerhold.
type ListingStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewListingStorage constructs a ListingStorage.
func NewListingStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ListingStore {
	return &ListingStorage{db: db, logger: logger}
}

func (s *ListingStorage) Save(ctx context.Context, listing *models.JobListing) error {
	if listing.ID == "" {
		return fmt.Errorf("listing ID is required")
	}
	if err := s.db.Store().Upsert(listing.ID, *listing); err != nil {
		return fmt.Errorf("failed to save listing %s: %w", listing.ID, err)
	}
	return nil
}

func (s *ListingStorage) Get(ctx context.Context, id string) (*models.JobListing, error) {
	var listing models.JobListing
	if err := s.db.Store().Get(id, &listing); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

func (s *ListingStorage) GetByDedupKey(ctx context.Context, dedupKey string) (*models.JobListing, error) {
	var listings []models.JobListing
	if err := s.db.Store().Find(&listings, badgerhold.Where("DedupKey").Eq(dedupKey)); err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, nil
	}
	return &listings[0], nil
}

func (s *ListingStorage) List(ctx context.Context, limit, offset int) ([]*models.JobListing, error) {
	var listings []models.JobListing
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}
	if err := s.db.Store().Find(&listings, query); err != nil {
		return nil, err
	}
	result := make([]*models.JobListing, 0, len(listings))
	for i := range listings {
		l := listings[i]
		result = append(result, &l)
	}
	return result, nil
}
