package storage

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/storage/badger"
)

// NewStorageManager creates the configured storage manager. Badger is the
// only backend this pipeline supports.
func NewStorageManager(logger arbor.ILogger, config *common.Config) (interfaces.StorageManager, error) {
	return badger.NewManager(logger, &config.Storage.Badger)
}
