package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func TestDiscoveryProcessor_SkipsWithoutDomain(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	sources := newFakeSourceStore()
	p := NewDiscoveryProcessor(scrapers, sources, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeSourceDiscovery, "", "", map[string]interface{}{
		"company_name": "Acme Inc",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSkipped, outcome.Terminal)
}

func TestDiscoveryProcessor_SavesFirstRespondingCandidate(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	scrapers.Register(models.SourceKindRSS, &fakeScraperAdapter{
		kind:        models.SourceKindRSS,
		listingsErr: assert.AnError,
	})
	scrapers.Register(models.SourceKindHTML, &fakeScraperAdapter{
		kind:     models.SourceKindHTML,
		listings: []interfaces.FetchedListing{{URL: "https://acme.com/careers/1"}},
	})
	sources := newFakeSourceStore()
	p := NewDiscoveryProcessor(scrapers, sources, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeSourceDiscovery, "", "", map[string]interface{}{
		"company_name":   "Acme Inc",
		"company_domain": "acme.com",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Terminal)
}
