package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func testSchedulerConfig() *common.SchedulerConfig {
	return &common.SchedulerConfig{CircuitFailureThreshold: 3, CircuitCooldown: "30m"}
}

func TestSourceProcessor_FetchPageAdvancesToIntake(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind: models.SourceKindHTML,
		listings: []interfaces.FetchedListing{
			{URL: "https://example.com/jobs/1", Title: "Engineer"},
			{URL: "https://example.com/jobs/2", Title: "Designer"},
		},
	})
	sources := newFakeSourceStore()
	source := models.NewJobSource("Acme careers", "https://example.com/jobs", models.SourceKindHTML, 3600)
	require.NoError(t, sources.Save(context.Background(), source))

	p := NewSourceProcessor(scrapers, sources, testSchedulerConfig(), arbor.NewLogger())
	item := models.NewRootQueueItem(models.ItemTypeScrapeSource, models.SubTypeFetchPage, source.URL, map[string]interface{}{
		"source_id": source.ID,
	}, models.SourceScheduled, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeIntake, outcome.NextSubType)
	urls, ok := outcome.PayloadPatch["discovered_urls"].([]string)
	require.True(t, ok)
	assert.Len(t, urls, 2)
}

func TestSourceProcessor_IntakeFansOutDedupedJobItems(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	sources := newFakeSourceStore()
	source := models.NewJobSource("Acme careers", "https://example.com/jobs", models.SourceKindHTML, 3600)
	require.NoError(t, sources.Save(context.Background(), source))

	p := NewSourceProcessor(scrapers, sources, testSchedulerConfig(), arbor.NewLogger())
	item := models.NewRootQueueItem(models.ItemTypeScrapeSource, models.SubTypeIntake, source.URL, map[string]interface{}{
		"source_id":         source.ID,
		"discovered_urls":   []string{"https://example.com/jobs/1?utm_source=x", "https://example.com/jobs/2"},
		"discovered_titles": []string{"Engineer", "Designer"},
	}, models.SourceScheduled, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeStats, outcome.NextSubType)
	require.Len(t, outcome.FanOut, 2)
	assert.Equal(t, models.ItemTypeJob, outcome.FanOut[0].Type)
	assert.NotEmpty(t, outcome.FanOut[0].IdempotencyKey)
}

func TestSourceProcessor_UpdateStatsRecordsSuccessAndTerminates(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	sources := newFakeSourceStore()
	source := models.NewJobSource("Acme careers", "https://example.com/jobs", models.SourceKindHTML, 3600)
	require.NoError(t, sources.Save(context.Background(), source))

	p := NewSourceProcessor(scrapers, sources, testSchedulerConfig(), arbor.NewLogger())
	item := models.NewRootQueueItem(models.ItemTypeScrapeSource, models.SubTypeStats, source.URL, map[string]interface{}{
		"source_id":        source.ID,
		"discovered_count": 2,
	}, models.SourceScheduled, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Terminal)

	updated, err := sources.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.LastItemCount)
	assert.Equal(t, models.CircuitClosed, updated.CircuitState)
}

func TestSourceProcessor_FetchPageRecordsFailureAndOpensCircuit(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:        models.SourceKindHTML,
		listingsErr: models.Classify(models.ErrorKindBlocked, assert.AnError, 0),
	})
	sources := newFakeSourceStore()
	source := models.NewJobSource("Acme careers", "https://example.com/jobs", models.SourceKindHTML, 3600)
	require.NoError(t, sources.Save(context.Background(), source))

	p := NewSourceProcessor(scrapers, sources, testSchedulerConfig(), arbor.NewLogger())
	item := models.NewRootQueueItem(models.ItemTypeScrapeSource, models.SubTypeFetchPage, source.URL, map[string]interface{}{
		"source_id": source.ID,
	}, models.SourceScheduled, 3)

	for i := 0; i < 3; i++ {
		_, err := p.Process(context.Background(), item)
		require.Error(t, err)
		assert.Equal(t, models.ErrorKindBlocked, models.KindOf(err))
	}

	updated, err := sources.Get(context.Background(), source.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ConsecutiveFails)
	assert.Equal(t, models.CircuitOpen, updated.CircuitState)
}
