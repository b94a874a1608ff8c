package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// CompanyProcessor drives the COMPANY lane: FETCH (the company's site,
// when the item carries its URL) -> EXTRACT (LLM-structured facts) -> ENRICH (merge
// into the Company record) -> DISCOVER_SOURCES (optional fan-out into
// SOURCE_DISCOVERY). Grounded on the same JobWorker-generalized shape as
// JobProcessor.
type CompanyProcessor struct {
	scrapers  interfaces.ScraperRegistry
	agent     interfaces.AgentManager
	companies interfaces.CompanyStore
	logger    arbor.ILogger
}

// NewCompanyProcessor constructs a CompanyProcessor.
func NewCompanyProcessor(scrapers interfaces.ScraperRegistry, agent interfaces.AgentManager, companies interfaces.CompanyStore, logger arbor.ILogger) *CompanyProcessor {
	return &CompanyProcessor{scrapers: scrapers, agent: agent, companies: companies, logger: logger}
}

var _ interfaces.Processor = (*CompanyProcessor)(nil)

func (p *CompanyProcessor) Type() models.ItemType { return models.ItemTypeCompany }

func (p *CompanyProcessor) Process(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	switch item.SubType {
	case models.SubTypeFetch, "":
		return p.fetch(ctx, item)
	case models.SubTypeExtract:
		return p.extract(ctx, item)
	case models.SubTypeEnrich:
		return p.enrich(ctx, item)
	case models.SubTypeDiscover:
		return p.discoverSources(ctx, item)
	default:
		return interfaces.Outcome{}, fmt.Errorf("company processor: unknown sub type %q", item.SubType)
	}
}

// fetch loads the company's site through the HTML adapter when the item
// carries a URL (set when the fan-out came with a known domain). No
// search is made by company_name: a name-only fan-out, or a failed
// fetch, advances to EXTRACT with no page content, and the AI extraction
// step works from the company name alone, returning sparse fields.
func (p *CompanyProcessor) fetch(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	name, _ := item.GetPayloadString("company_name")
	patch := map[string]interface{}{"company_name": name}

	if item.URL != "" {
		adapter, ok := p.scrapers.Get(models.SourceKindHTML)
		if ok {
			page, err := adapter.FetchListing(ctx, item.URL)
			if err != nil {
				p.logger.Warn().Err(err).Str("url", item.URL).Msg("company site fetch failed, continuing with name-only extraction")
			} else {
				patch["fetched_markdown"] = page.MarkdownContent
			}
		}
	}

	return interfaces.Outcome{NextSubType: models.SubTypeExtract, PayloadPatch: patch}, nil
}

func (p *CompanyProcessor) extract(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	name, _ := item.GetPayloadString("company_name")
	markdown, _ := item.GetPayloadString("fetched_markdown")

	prompt := fmt.Sprintf("Company name: %s\n\nSite content (may be empty):\n%s", name, markdown)
	resp, err := p.agent.Generate(ctx, interfaces.AgentRequest{
		Scope:             scopeExtraction,
		SystemInstruction: extractionSystemInstruction,
		Prompt:            prompt,
		OutputSchema:      companyExtractionJSONSchema(),
		MaxOutputTokens:   1024,
		Temperature:       0.1,
	})
	if err != nil {
		return interfaces.Outcome{}, fmt.Errorf("company extraction call failed: %w", err)
	}

	parsed, err := parseCompanyExtraction(resp.Text)
	if err != nil {
		return interfaces.Outcome{}, models.Classify(models.ErrorKindParseError, err, 0)
	}
	if err := parsed.Validate(); err != nil {
		return interfaces.Outcome{}, models.Classify(models.ErrorKindValidation, err, 0)
	}

	return interfaces.Outcome{
		NextSubType: models.SubTypeEnrich,
		PayloadPatch: map[string]interface{}{
			"company_domain":      parsed.Domain,
			"company_description": parsed.Description,
			"company_industry":    parsed.Industry,
			"company_size_range":  parsed.SizeRange,
			"company_locations":   parsed.Locations,
		},
	}, nil
}

func (p *CompanyProcessor) enrich(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	name, _ := item.GetPayloadString("company_name")
	dedupKey := models.CanonicalCompanyKey(name)

	company, err := p.companies.GetByDedupKey(ctx, dedupKey)
	if err != nil {
		return interfaces.Outcome{}, fmt.Errorf("looking up company by dedup key: %w", err)
	}
	if company == nil {
		company = models.NewCompany(name)
	}

	company.Domain, _ = item.GetPayloadString("company_domain")
	company.Description, _ = item.GetPayloadString("company_description")
	company.Industry, _ = item.GetPayloadString("company_industry")
	company.SizeRange, _ = item.GetPayloadString("company_size_range")
	company.Locations = payloadStringSlice(item, "company_locations")

	now := time.Now()
	company.Enriched = true
	company.EnrichedAt = &now
	company.UpdatedAt = now

	if err := p.companies.Save(ctx, company); err != nil {
		return interfaces.Outcome{}, fmt.Errorf("saving enriched company: %w", err)
	}

	return interfaces.Outcome{Terminal: models.StatusSuccess}, nil
}

// discoverSources is reserved for an explicit operator-triggered fan-out
// into SOURCE_DISCOVERY (probing a known company for a careers feed);
// the ENRICH step does not chain into it automatically, since most
// COMPANY fan-outs originate from a single job match, not a source
// discovery sweep.
func (p *CompanyProcessor) discoverSources(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	name, _ := item.GetPayloadString("company_name")
	if name == "" {
		return interfaces.Outcome{}, fmt.Errorf("queue item %s missing company_name for source discovery", item.ID)
	}

	child := models.NewChildQueueItem(
		item, models.ItemTypeSourceDiscovery, "", "",
		map[string]interface{}{"company_name": name},
		item.MaxAttempts,
	)
	return interfaces.Outcome{Terminal: models.StatusSuccess, FanOut: []*models.QueueItem{child}}, nil
}
