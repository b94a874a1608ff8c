package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
)

// Manager implements interfaces.StorageManager for Badger, aggregating
// one sub-store per entity behind a single handle.
type Manager struct {
	db        *BadgerDB
	queue     interfaces.QueueStore
	listings  interfaces.ListingStore
	matches   interfaces.MatchStore
	companies interfaces.CompanyStore
	sources   interfaces.SourceStore
	config    interfaces.ConfigStore
	cost      interfaces.CostStore
	logger    arbor.ILogger
}

// NewManager creates a new Badger storage manager.
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:        db,
		queue:     NewQueueStorage(db, logger),
		listings:  NewListingStorage(db, logger),
		matches:   NewMatchStorage(db, logger),
		companies: NewCompanyStorage(db, logger),
		sources:   NewSourceStorage(db, logger),
		config:    NewConfigStorage(db, logger),
		cost:      NewCostStorage(db, logger),
		logger:    logger,
	}

	logger.Info().Msg("badger storage manager initialized")

	return manager, nil
}

func (m *Manager) Queue() interfaces.QueueStore         { return m.queue }
func (m *Manager) Listings() interfaces.ListingStore    { return m.listings }
func (m *Manager) Matches() interfaces.MatchStore       { return m.matches }
func (m *Manager) Companies() interfaces.CompanyStore   { return m.companies }
func (m *Manager) Sources() interfaces.SourceStore      { return m.sources }
func (m *Manager) Config() interfaces.ConfigStore       { return m.config }
func (m *Manager) Cost() interfaces.CostStore           { return m.cost }

// Close closes the database connection.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
