package server

import (
	"context"
	"time"

	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

type fakeQueueStore struct {
	items map[string]*models.QueueItem
}

func newFakeQueueStore() *fakeQueueStore {
	return &fakeQueueStore{items: make(map[string]*models.QueueItem)}
}

func (s *fakeQueueStore) Enqueue(ctx context.Context, item *models.QueueItem) error {
	s.items[item.ID] = item
	return nil
}
func (s *fakeQueueStore) Get(ctx context.Context, id string) (*models.QueueItem, error) {
	return s.items[id], nil
}
func (s *fakeQueueStore) GetByIdempotencyKey(ctx context.Context, key string) (*models.QueueItem, error) {
	for _, item := range s.items {
		if item.IdempotencyKey == key {
			return item, nil
		}
	}
	return nil, nil
}
func (s *fakeQueueStore) ClaimNext(ctx context.Context, types []models.ItemType, claimant string, now time.Time) (*models.QueueItem, error) {
	return nil, nil
}
func (s *fakeQueueStore) Update(ctx context.Context, item *models.QueueItem) error {
	s.items[item.ID] = item
	return nil
}
func (s *fakeQueueStore) ListStale(ctx context.Context, deadline time.Time) ([]*models.QueueItem, error) {
	return nil, nil
}
func (s *fakeQueueStore) ListChildren(ctx context.Context, parentID string) ([]*models.QueueItem, error) {
	return nil, nil
}
func (s *fakeQueueStore) ListByRoot(ctx context.Context, rootID string) ([]*models.QueueItem, error) {
	var out []*models.QueueItem
	for _, item := range s.items {
		if item.RootID == rootID {
			out = append(out, item)
		}
	}
	return out, nil
}
func (s *fakeQueueStore) CountByStatus(ctx context.Context, status models.ItemStatus) (int, error) {
	count := 0
	for _, item := range s.items {
		if item.Status == status {
			count++
		}
	}
	return count, nil
}
func (s *fakeQueueStore) RequeueOrphaned(ctx context.Context) (int, error) { return 0, nil }

type fakeListingStore struct {
	listings []*models.JobListing
}

func (s *fakeListingStore) Save(ctx context.Context, listing *models.JobListing) error {
	s.listings = append(s.listings, listing)
	return nil
}
func (s *fakeListingStore) Get(ctx context.Context, id string) (*models.JobListing, error) {
	return nil, nil
}
func (s *fakeListingStore) GetByDedupKey(ctx context.Context, dedupKey string) (*models.JobListing, error) {
	return nil, nil
}
func (s *fakeListingStore) List(ctx context.Context, limit, offset int) ([]*models.JobListing, error) {
	return s.listings, nil
}

type fakeMatchStore struct {
	matches []*models.JobMatch
}

func (s *fakeMatchStore) Save(ctx context.Context, match *models.JobMatch) error {
	s.matches = append(s.matches, match)
	return nil
}
func (s *fakeMatchStore) GetByListing(ctx context.Context, listingID string) (*models.JobMatch, error) {
	return nil, nil
}
func (s *fakeMatchStore) ListByPriority(ctx context.Context, priority models.MatchPriority, limit, offset int) ([]*models.JobMatch, error) {
	var out []*models.JobMatch
	for _, m := range s.matches {
		if m.Priority == priority {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeCompanyStore struct{ companies []*models.Company }

func (s *fakeCompanyStore) Save(ctx context.Context, company *models.Company) error {
	s.companies = append(s.companies, company)
	return nil
}
func (s *fakeCompanyStore) Get(ctx context.Context, id string) (*models.Company, error) {
	return nil, nil
}
func (s *fakeCompanyStore) GetByDedupKey(ctx context.Context, dedupKey string) (*models.Company, error) {
	return nil, nil
}
func (s *fakeCompanyStore) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	return s.companies, nil
}

type fakeSourceStore struct {
	sources map[string]*models.JobSource
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{sources: make(map[string]*models.JobSource)}
}
func (s *fakeSourceStore) Save(ctx context.Context, source *models.JobSource) error {
	s.sources[source.ID] = source
	return nil
}
func (s *fakeSourceStore) Get(ctx context.Context, id string) (*models.JobSource, error) {
	return s.sources[id], nil
}
func (s *fakeSourceStore) GetByURL(ctx context.Context, url string) (*models.JobSource, error) {
	return nil, nil
}
func (s *fakeSourceStore) ListEnabled(ctx context.Context) ([]*models.JobSource, error) {
	var out []*models.JobSource
	for _, src := range s.sources {
		if src.Enabled {
			out = append(out, src)
		}
	}
	return out, nil
}
func (s *fakeSourceStore) ListDue(ctx context.Context, now time.Time) ([]*models.JobSource, error) {
	return nil, nil
}

type fakeConfigStore struct {
	entries map[string]*models.ConfigEntry
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{entries: make(map[string]*models.ConfigEntry)}
}
func (s *fakeConfigStore) Get(ctx context.Context, key string) (*models.ConfigEntry, error) {
	return s.entries[key], nil
}
func (s *fakeConfigStore) Set(ctx context.Context, entry *models.ConfigEntry) error {
	s.entries[entry.Key] = entry
	return nil
}
func (s *fakeConfigStore) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}
func (s *fakeConfigStore) All(ctx context.Context) ([]*models.ConfigEntry, error) {
	var out []*models.ConfigEntry
	for _, e := range s.entries {
		out = append(out, e)
	}
	return out, nil
}

type fakeCostStore struct{}

func (s *fakeCostStore) Record(ctx context.Context, entry *models.CostLedgerEntry) error { return nil }
func (s *fakeCostStore) SpendForDay(ctx context.Context, provider, day string) (float64, error) {
	return 0, nil
}

type fakeStorageManager struct {
	queue    *fakeQueueStore
	listings *fakeListingStore
	matches  *fakeMatchStore
	companies *fakeCompanyStore
	sources  *fakeSourceStore
	config   *fakeConfigStore
	cost     *fakeCostStore
}

func newFakeStorageManager() *fakeStorageManager {
	return &fakeStorageManager{
		queue:     newFakeQueueStore(),
		listings:  &fakeListingStore{},
		matches:   &fakeMatchStore{},
		companies: &fakeCompanyStore{},
		sources:   newFakeSourceStore(),
		config:    newFakeConfigStore(),
		cost:      &fakeCostStore{},
	}
}

func (m *fakeStorageManager) Queue() interfaces.QueueStore       { return m.queue }
func (m *fakeStorageManager) Listings() interfaces.ListingStore  { return m.listings }
func (m *fakeStorageManager) Matches() interfaces.MatchStore     { return m.matches }
func (m *fakeStorageManager) Companies() interfaces.CompanyStore { return m.companies }
func (m *fakeStorageManager) Sources() interfaces.SourceStore    { return m.sources }
func (m *fakeStorageManager) Config() interfaces.ConfigStore     { return m.config }
func (m *fakeStorageManager) Cost() interfaces.CostStore         { return m.cost }
func (m *fakeStorageManager) Close() error                       { return nil }

type fakeConfigRegistry struct {
	strings map[string]string
}

func newFakeConfigRegistry() *fakeConfigRegistry {
	return &fakeConfigRegistry{strings: make(map[string]string)}
}
func (r *fakeConfigRegistry) GetString(ctx context.Context, key, fallback string) string {
	if v, ok := r.strings[key]; ok {
		return v
	}
	return fallback
}
func (r *fakeConfigRegistry) GetInt(ctx context.Context, key string, fallback int) int { return fallback }
func (r *fakeConfigRegistry) GetBool(ctx context.Context, key string, fallback bool) bool {
	return fallback
}
func (r *fakeConfigRegistry) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	return fallback
}
func (r *fakeConfigRegistry) Set(ctx context.Context, key, value, updatedBy string) error {
	r.strings[key] = value
	return nil
}
func (r *fakeConfigRegistry) InvalidateCache() {}
