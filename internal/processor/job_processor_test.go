package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func newTestJobProcessor() (*JobProcessor, *fakeScraperRegistry, *fakeAgentManager, *fakePreFilter, *fakeMatchAnalyzer, *fakeListingStore, *fakeMatchStore, *fakeCompanyStore, *fakeConfigRegistry) {
	scrapers := newFakeScraperRegistry()
	agent := newFakeAgentManager()
	prefilter := &fakePreFilter{result: interfaces.PreFilterResult{Pass: true}}
	analyzer := &fakeMatchAnalyzer{}
	listings := newFakeListingStore()
	matches := &fakeMatchStore{}
	companies := newFakeCompanyStore()
	cfg := newFakeConfigRegistry()

	p := NewJobProcessor(scrapers, agent, prefilter, analyzer, listings, matches, companies, cfg, arbor.NewLogger())
	return p, scrapers, agent, prefilter, analyzer, listings, matches, companies, cfg
}

func TestJobProcessor_FetchAdvancesToExtract(t *testing.T) {
	p, scrapers, _, _, _, _, _, _, _ := newTestJobProcessor()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:        models.SourceKindHTML,
		fetchedPage: &interfaces.FetchedPage{Title: "Senior Engineer", MarkdownContent: "job body"},
	})

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/1", nil, models.SourceAutomatedScan, 3)
	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeExtract, outcome.NextSubType)
	assert.Equal(t, "job body", outcome.PayloadPatch["fetched_markdown"])
}

func TestJobProcessor_FetchNotFoundSkipsAndMarksListing(t *testing.T) {
	p, scrapers, _, _, _, listings, _, _, _ := newTestJobProcessor()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:           models.SourceKindHTML,
		fetchedPageErr: models.Classify(models.ErrorKindNotFound, errors.New("404"), 0),
	})

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/gone", nil, models.SourceAutomatedScan, 3)
	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSkipped, outcome.Terminal)

	dedupKey, err := common.NormalizeURL(item.URL)
	require.NoError(t, err)
	listing, err := listings.GetByDedupKey(context.Background(), dedupKey)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, models.ListingSkipped, listing.Status)
}

func TestJobProcessor_FetchGoneSkipsAndMarksListing(t *testing.T) {
	p, scrapers, _, _, _, listings, _, _, _ := newTestJobProcessor()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:           models.SourceKindHTML,
		fetchedPageErr: models.Classify(models.ErrorKindGone, errors.New("410"), 0),
	})

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/gone-2", nil, models.SourceAutomatedScan, 3)
	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSkipped, outcome.Terminal)

	dedupKey, err := common.NormalizeURL(item.URL)
	require.NoError(t, err)
	listing, err := listings.GetByDedupKey(context.Background(), dedupKey)
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, models.ListingSkipped, listing.Status)
}

func TestJobProcessor_FetchOtherErrorSurfacesUpstream(t *testing.T) {
	p, scrapers, _, _, _, _, _, _, _ := newTestJobProcessor()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:           models.SourceKindHTML,
		fetchedPageErr: models.Classify(models.ErrorKindTransient, errors.New("upstream 503"), 0),
	})

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/flaky", nil, models.SourceAutomatedScan, 3)
	_, err := p.Process(context.Background(), item)
	require.Error(t, err)
}

func TestJobProcessor_ExtractSavesListingAndAdvancesToFilter(t *testing.T) {
	p, _, agent, _, _, listings, _, _, _ := newTestJobProcessor()
	agent.response = &interfaces.AgentResponse{
		Text:  `{"title":"Senior Engineer","companyName":"Acme Inc","location":"Remote","remote":true,"description":"build things"}`,
		Model: "gemini-2.5-flash",
	}

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeExtract, "https://example.com/job/1", map[string]interface{}{
		"fetched_title":    "Senior Engineer",
		"fetched_markdown": "job body",
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeFilter, outcome.NextSubType)
	listingID, ok := outcome.PayloadPatch["listing_id"].(string)
	require.True(t, ok)
	saved, err := listings.Get(context.Background(), listingID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Inc", saved.CompanyName)
}

func TestJobProcessor_FilterRejectsToTerminal(t *testing.T) {
	p, _, _, prefilter, _, listings, _, _, _ := newTestJobProcessor()
	prefilter.result = interfaces.PreFilterResult{Pass: false, Reason: "excluded keyword"}

	listing := models.NewJobListing("", "https://example.com/job/1")
	require.NoError(t, listings.Save(context.Background(), listing))

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFilter, listing.URL, map[string]interface{}{
		"listing_id": listing.ID,
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFiltered, outcome.Terminal)
}

func TestJobProcessor_AnalyzeSkipsBelowThreshold(t *testing.T) {
	p, _, _, _, analyzer, listings, _, _, cfg := newTestJobProcessor()
	cfg.ints[matchPolicyMediumThresholdKey] = 50
	analyzer.match = models.NewJobMatch("listing-id", 20, models.PriorityLow, "weak fit", nil, nil, "gemini-2.5-flash", "v1")

	listing := models.NewJobListing("", "https://example.com/job/1")
	require.NoError(t, listings.Save(context.Background(), listing))

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeAnalyze, listing.URL, map[string]interface{}{
		"listing_id": listing.ID,
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSkipped, outcome.Terminal)
}

func TestJobProcessor_AnalyzeDegradedMatchBypassesThresholdAndAdvancesToSave(t *testing.T) {
	p, _, _, _, analyzer, listings, _, _, cfg := newTestJobProcessor()
	cfg.ints[matchPolicyMediumThresholdKey] = 50
	analyzer.match = models.NewDegradedJobMatch("listing-id", "shape validation exhausted after retries", "gemini-2.5-flash", "v1")

	listing := models.NewJobListing("", "https://example.com/job/1")
	require.NoError(t, listings.Save(context.Background(), listing))

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeAnalyze, listing.URL, map[string]interface{}{
		"listing_id": listing.ID,
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeSave, outcome.NextSubType)
	assert.Equal(t, 0, outcome.PayloadPatch["match_score"])
	assert.Equal(t, true, outcome.PayloadPatch["match_degraded"])
}

func TestJobProcessor_AnalyzeAdvancesToSaveAboveThreshold(t *testing.T) {
	p, _, _, _, analyzer, listings, _, _, cfg := newTestJobProcessor()
	cfg.ints[matchPolicyMediumThresholdKey] = 50
	analyzer.match = models.NewJobMatch("listing-id", 90, models.PriorityHigh, "great fit", []string{"golang"}, nil, "gemini-2.5-flash", "v1")

	listing := models.NewJobListing("", "https://example.com/job/1")
	require.NoError(t, listings.Save(context.Background(), listing))

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeAnalyze, listing.URL, map[string]interface{}{
		"listing_id": listing.ID,
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeSave, outcome.NextSubType)
	assert.Equal(t, 90, outcome.PayloadPatch["match_score"])
}

func TestJobProcessor_SaveFansOutCompanyEnrichmentForHighPriority(t *testing.T) {
	p, _, _, _, _, listings, matches, _, _ := newTestJobProcessor()

	listing := models.NewJobListing("", "https://example.com/job/1")
	listing.CompanyName = "Acme Inc"
	require.NoError(t, listings.Save(context.Background(), listing))

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeSave, listing.URL, map[string]interface{}{
		"listing_id":      listing.ID,
		"match_score":     95,
		"match_priority":  string(models.PriorityHigh),
		"match_summary":   "excellent match",
		"match_strengths": []string{"golang", "distributed systems"},
		"match_model":     "gemini-2.5-flash",
		"match_prompt_v":  "v1",
	}, models.SourceAutomatedScan, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Terminal)
	require.Len(t, outcome.FanOut, 1)
	assert.Equal(t, models.ItemTypeCompany, outcome.FanOut[0].Type)
	require.Len(t, matches.saved, 1)
	assert.Equal(t, 95, matches.saved[0].Score)
}
