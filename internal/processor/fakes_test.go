package processor

import (
	"context"
	"time"

	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

type fakeScraperRegistry struct {
	adapters map[models.SourceKind]interfaces.ScraperAdapter
}

func newFakeScraperRegistry() *fakeScraperRegistry {
	return &fakeScraperRegistry{adapters: make(map[models.SourceKind]interfaces.ScraperAdapter)}
}

func (r *fakeScraperRegistry) Register(kind models.SourceKind, adapter interfaces.ScraperAdapter) {
	r.adapters[kind] = adapter
}

func (r *fakeScraperRegistry) Get(kind models.SourceKind) (interfaces.ScraperAdapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

type fakeScraperAdapter struct {
	kind         models.SourceKind
	fetchedPage  *interfaces.FetchedPage
	fetchedPageErr error
	listings     []interfaces.FetchedListing
	listingsErr  error
}

func (a *fakeScraperAdapter) Kind() models.SourceKind { return a.kind }

func (a *fakeScraperAdapter) FetchSource(ctx context.Context, source *models.JobSource) ([]interfaces.FetchedListing, error) {
	return a.listings, a.listingsErr
}

func (a *fakeScraperAdapter) FetchListing(ctx context.Context, url string) (*interfaces.FetchedPage, error) {
	return a.fetchedPage, a.fetchedPageErr
}

type fakeAgentManager struct {
	response *interfaces.AgentResponse
	err      error
	scopes   map[interfaces.AgentScope]bool
}

func newFakeAgentManager() *fakeAgentManager {
	return &fakeAgentManager{scopes: make(map[interfaces.AgentScope]bool)}
}

func (m *fakeAgentManager) Generate(ctx context.Context, req interfaces.AgentRequest) (*interfaces.AgentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *fakeAgentManager) SetScopeEnabled(scope interfaces.AgentScope, enabled bool) { m.scopes[scope] = enabled }
func (m *fakeAgentManager) ScopeEnabled(scope interfaces.AgentScope) bool             { return true }
func (m *fakeAgentManager) Close() error                                             { return nil }

type fakePreFilter struct {
	result interfaces.PreFilterResult
}

func (f *fakePreFilter) Apply(ctx context.Context, listing *models.JobListing) interfaces.PreFilterResult {
	return f.result
}

type fakeMatchAnalyzer struct {
	match *models.JobMatch
	err   error
}

func (a *fakeMatchAnalyzer) Analyze(ctx context.Context, listing *models.JobListing) (*models.JobMatch, error) {
	return a.match, a.err
}

type fakeListingStore struct {
	byID       map[string]*models.JobListing
	byDedupKey map[string]*models.JobListing
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{byID: make(map[string]*models.JobListing), byDedupKey: make(map[string]*models.JobListing)}
}

func (s *fakeListingStore) Save(ctx context.Context, listing *models.JobListing) error {
	s.byID[listing.ID] = listing
	s.byDedupKey[listing.DedupKey] = listing
	return nil
}

func (s *fakeListingStore) Get(ctx context.Context, id string) (*models.JobListing, error) {
	return s.byID[id], nil
}

func (s *fakeListingStore) GetByDedupKey(ctx context.Context, dedupKey string) (*models.JobListing, error) {
	return s.byDedupKey[dedupKey], nil
}

func (s *fakeListingStore) List(ctx context.Context, limit, offset int) ([]*models.JobListing, error) {
	return nil, nil
}

type fakeMatchStore struct {
	saved []*models.JobMatch
}

func (s *fakeMatchStore) Save(ctx context.Context, match *models.JobMatch) error {
	s.saved = append(s.saved, match)
	return nil
}

func (s *fakeMatchStore) GetByListing(ctx context.Context, listingID string) (*models.JobMatch, error) {
	for _, m := range s.saved {
		if m.ListingID == listingID {
			return m, nil
		}
	}
	return nil, nil
}

func (s *fakeMatchStore) ListByPriority(ctx context.Context, priority models.MatchPriority, limit, offset int) ([]*models.JobMatch, error) {
	return nil, nil
}

type fakeCompanyStore struct {
	byDedupKey map[string]*models.Company
}

func newFakeCompanyStore() *fakeCompanyStore {
	return &fakeCompanyStore{byDedupKey: make(map[string]*models.Company)}
}

func (s *fakeCompanyStore) Save(ctx context.Context, company *models.Company) error {
	s.byDedupKey[company.DedupKey] = company
	return nil
}

func (s *fakeCompanyStore) Get(ctx context.Context, id string) (*models.Company, error) {
	for _, c := range s.byDedupKey {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (s *fakeCompanyStore) GetByDedupKey(ctx context.Context, dedupKey string) (*models.Company, error) {
	return s.byDedupKey[dedupKey], nil
}

func (s *fakeCompanyStore) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	return nil, nil
}

type fakeSourceStore struct {
	byID map[string]*models.JobSource
}

func newFakeSourceStore() *fakeSourceStore {
	return &fakeSourceStore{byID: make(map[string]*models.JobSource)}
}

func (s *fakeSourceStore) Save(ctx context.Context, source *models.JobSource) error {
	s.byID[source.ID] = source
	return nil
}

func (s *fakeSourceStore) Get(ctx context.Context, id string) (*models.JobSource, error) {
	return s.byID[id], nil
}

func (s *fakeSourceStore) GetByURL(ctx context.Context, url string) (*models.JobSource, error) {
	for _, src := range s.byID {
		if src.URL == url {
			return src, nil
		}
	}
	return nil, nil
}

func (s *fakeSourceStore) ListEnabled(ctx context.Context) ([]*models.JobSource, error) {
	return nil, nil
}

func (s *fakeSourceStore) ListDue(ctx context.Context, now time.Time) ([]*models.JobSource, error) {
	return nil, nil
}

type fakeConfigRegistry struct {
	ints  map[string]int
	bools map[string]bool
}

func newFakeConfigRegistry() *fakeConfigRegistry {
	return &fakeConfigRegistry{ints: make(map[string]int), bools: make(map[string]bool)}
}

func (c *fakeConfigRegistry) GetString(ctx context.Context, key, fallback string) string { return fallback }

func (c *fakeConfigRegistry) GetInt(ctx context.Context, key string, fallback int) int {
	if v, ok := c.ints[key]; ok {
		return v
	}
	return fallback
}

func (c *fakeConfigRegistry) GetBool(ctx context.Context, key string, fallback bool) bool {
	if v, ok := c.bools[key]; ok {
		return v
	}
	return fallback
}

func (c *fakeConfigRegistry) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	return fallback
}

func (c *fakeConfigRegistry) Set(ctx context.Context, key, value, updatedBy string) error { return nil }
func (c *fakeConfigRegistry) InvalidateCache()                                           {}
