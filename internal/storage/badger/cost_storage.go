package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// CostStorage implements interfaces.CostStore over badgerhold.
type CostStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCostStorage constructs a CostStorage.
func NewCostStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CostStore {
	return &CostStorage{db: db, logger: logger}
}

func (s *CostStorage) Record(ctx context.Context, entry *models.CostLedgerEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("cost ledger entry ID is required")
	}
	if err := s.db.Store().Insert(entry.ID, *entry); err != nil {
		return fmt.Errorf("failed to record cost ledger entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *CostStorage) SpendForDay(ctx context.Context, provider, day string) (float64, error) {
	var entries []models.CostLedgerEntry
	if err := s.db.Store().Find(&entries, badgerhold.Where("Day").Eq(day).And("Provider").Eq(provider)); err != nil {
		return 0, err
	}
	total := 0.0
	for _, e := range entries {
		total += e.EstimatedCostUSD
	}
	return total, nil
}
