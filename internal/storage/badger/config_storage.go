package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ConfigStorage implements interfaces.ConfigStore over badgerhold.
type ConfigStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConfigStorage constructs a ConfigStorage.
func NewConfigStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConfigStore {
	return &ConfigStorage{db: db, logger: logger}
}

func (s *ConfigStorage) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	var entry models.ConfigEntry
	if err := s.db.Store().Get(key, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (s *ConfigStorage) Set(ctx context.Context, entry *models.ConfigEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("config entry key is required")
	}
	if err := s.db.Store().Upsert(entry.Key, *entry); err != nil {
		return fmt.Errorf("failed to save config entry %s: %w", entry.Key, err)
	}
	return nil
}

func (s *ConfigStorage) Delete(ctx context.Context, key string) error {
	if err := s.db.Store().Delete(key, &models.ConfigEntry{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete config entry %s: %w", key, err)
	}
	return nil
}

func (s *ConfigStorage) All(ctx context.Context) ([]*models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	if err := s.db.Store().Find(&entries, badgerhold.Where("Key").Ne("")); err != nil {
		return nil, err
	}
	result := make([]*models.ConfigEntry, 0, len(entries))
	for i := range entries {
		e := entries[i]
		result = append(result, &e)
	}
	return result, nil
}
