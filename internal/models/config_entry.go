package models

import "time"

// ConfigEntry is a single override row in the Config Registry's
// persisted layer, taking precedence over file-loaded defaults until
// the process restarts or the row is deleted.
type ConfigEntry struct {
	Key       string `badgerhold:"key"`
	Value     string
	UpdatedAt time.Time
	UpdatedBy string
}

// NewConfigEntry builds a ConfigEntry stamped with now.
func NewConfigEntry(key, value, updatedBy string) *ConfigEntry {
	return &ConfigEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
		UpdatedBy: updatedBy,
	}
}
