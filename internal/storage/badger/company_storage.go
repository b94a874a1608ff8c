package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CompanyStorage implements interfaces.CompanyStore over badgerhold.
type CompanyStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCompanyStorage constructs a CompanyStorage.
func NewCompanyStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CompanyStore {
	return &CompanyStorage{db: db, logger: logger}
}

func (s *CompanyStorage) Save(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		return fmt.Errorf("company ID is required")
	}
	if err := s.db.Store().Upsert(company.ID, *company); err != nil {
		return fmt.Errorf("failed to save company %s: %w", company.ID, err)
	}
	return nil
}

func (s *CompanyStorage) Get(ctx context.Context, id string) (*models.Company, error) {
	var company models.Company
	if err := s.db.Store().Get(id, &company); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &company, nil
}

func (s *CompanyStorage) GetByDedupKey(ctx context.Context, dedupKey string) (*models.Company, error) {
	var companies []models.Company
	if err := s.db.Store().Find(&companies, badgerhold.Where("DedupKey").Eq(dedupKey)); err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, nil
	}
	return &companies[0], nil
}

func (s *CompanyStorage) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Skip(offset)
	}
	var companies []models.Company
	if err := s.db.Store().Find(&companies, query); err != nil {
		return nil, err
	}
	result := make([]*models.Company, 0, len(companies))
	for i := range companies {
		c := companies[i]
		result = append(result, &c)
	}
	return result, nil
}
