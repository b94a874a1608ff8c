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

func TestCompanyProcessor_FetchAdvancesToExtractEvenWithoutURL(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	agent := newFakeAgentManager()
	companies := newFakeCompanyStore()
	p := NewCompanyProcessor(scrapers, agent, companies, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeCompany, models.SubTypeFetch, "", map[string]interface{}{
		"company_name": "Acme Inc",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeExtract, outcome.NextSubType)
}

func TestCompanyProcessor_ExtractAdvancesToEnrich(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	agent := newFakeAgentManager()
	agent.response = &interfaces.AgentResponse{Text: `{"name":"Acme Inc","domain":"acme.com","industry":"Software"}`}
	companies := newFakeCompanyStore()
	p := NewCompanyProcessor(scrapers, agent, companies, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeCompany, models.SubTypeExtract, "", map[string]interface{}{
		"company_name": "Acme Inc",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.SubTypeEnrich, outcome.NextSubType)
	assert.Equal(t, "acme.com", outcome.PayloadPatch["company_domain"])
}

func TestCompanyProcessor_EnrichUpsertsAndTerminates(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	agent := newFakeAgentManager()
	companies := newFakeCompanyStore()
	p := NewCompanyProcessor(scrapers, agent, companies, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeCompany, models.SubTypeEnrich, "", map[string]interface{}{
		"company_name":        "Acme Inc",
		"company_domain":      "acme.com",
		"company_description": "Widgets",
		"company_industry":    "Manufacturing",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Terminal)

	saved, err := companies.GetByDedupKey(context.Background(), models.CanonicalCompanyKey("Acme Inc"))
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.True(t, saved.Enriched)
	assert.Equal(t, "acme.com", saved.Domain)
}

func TestCompanyProcessor_DiscoverSourcesFansOutSourceDiscovery(t *testing.T) {
	scrapers := newFakeScraperRegistry()
	agent := newFakeAgentManager()
	companies := newFakeCompanyStore()
	p := NewCompanyProcessor(scrapers, agent, companies, arbor.NewLogger())

	item := models.NewRootQueueItem(models.ItemTypeCompany, models.SubTypeDiscover, "", map[string]interface{}{
		"company_name": "Acme Inc",
	}, models.SourceFanOut, 3)

	outcome, err := p.Process(context.Background(), item)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, outcome.Terminal)
	require.Len(t, outcome.FanOut, 1)
	assert.Equal(t, models.ItemTypeSourceDiscovery, outcome.FanOut[0].Type)
}
