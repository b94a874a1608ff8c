package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

const scopeExtraction interfaces.AgentScope = "worker.extraction"

const extractionSystemInstruction = `You extract structured job posting fields from a scraped page's markdown
content. Return only what the page actually states; leave fields empty rather than guessing.`

const (
	matchPolicyHighThresholdKey   = "match_policy.high_threshold"
	matchPolicyMediumThresholdKey = "match_policy.medium_threshold"
	matchPolicyEnrichOnSaveKey    = "match_policy.enrich_on_save"
)

// JobProcessor drives the JOB lane: FETCH -> EXTRACT -> FILTER -> ANALYZE
// -> SAVE, a terminal state per step, grounded on the teacher's JobWorker
// (Execute/GetWorkerType/Validate) generalized from one atomic Execute
// into a sub-step switch, since this pipeline's processors re-enqueue
// between sub-types instead of running a lane to completion in one call.
type JobProcessor struct {
	scrapers  interfaces.ScraperRegistry
	agent     interfaces.AgentManager
	prefilter interfaces.PreFilter
	analyzer  interfaces.MatchAnalyzer
	listings  interfaces.ListingStore
	matches   interfaces.MatchStore
	companies interfaces.CompanyStore
	cfg       interfaces.ConfigRegistry
	logger    arbor.ILogger
}

// NewJobProcessor constructs a JobProcessor.
func NewJobProcessor(
	scrapers interfaces.ScraperRegistry,
	agent interfaces.AgentManager,
	prefilter interfaces.PreFilter,
	analyzer interfaces.MatchAnalyzer,
	listings interfaces.ListingStore,
	matches interfaces.MatchStore,
	companies interfaces.CompanyStore,
	cfg interfaces.ConfigRegistry,
	logger arbor.ILogger,
) *JobProcessor {
	return &JobProcessor{
		scrapers:  scrapers,
		agent:     agent,
		prefilter: prefilter,
		analyzer:  analyzer,
		listings:  listings,
		matches:   matches,
		companies: companies,
		cfg:       cfg,
		logger:    logger,
	}
}

var _ interfaces.Processor = (*JobProcessor)(nil)

func (p *JobProcessor) Type() models.ItemType { return models.ItemTypeJob }

func (p *JobProcessor) Process(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	switch item.SubType {
	case models.SubTypeFetch, "":
		return p.fetch(ctx, item)
	case models.SubTypeExtract:
		return p.extract(ctx, item)
	case models.SubTypeFilter:
		return p.filter(ctx, item)
	case models.SubTypeAnalyze:
		return p.analyze(ctx, item)
	case models.SubTypeSave:
		return p.save(ctx, item)
	default:
		return interfaces.Outcome{}, fmt.Errorf("job processor: unknown sub type %q", item.SubType)
	}
}

func (p *JobProcessor) fetch(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	kind := models.SourceKindHTML
	if k, ok := item.GetPayloadString("source_kind"); ok && k != "" {
		kind = models.SourceKind(k)
	}
	adapter, ok := p.scrapers.Get(kind)
	if !ok {
		return interfaces.Outcome{}, fmt.Errorf("no scraper adapter registered for kind %q", kind)
	}

	page, err := adapter.FetchListing(ctx, item.URL)
	if err != nil {
		switch models.KindOf(err) {
		case models.ErrorKindNotFound, models.ErrorKindGone:
			p.logger.Info().Str("url", item.URL).Err(err).Msg("listing fetch returned not-found/gone, marking skipped")
			if markErr := p.markListingSkipped(ctx, item); markErr != nil {
				p.logger.Warn().Err(markErr).Str("url", item.URL).Msg("failed to record skipped listing")
			}
			return interfaces.Outcome{Terminal: models.StatusSkipped}, nil
		default:
			return interfaces.Outcome{}, fmt.Errorf("fetching listing %s: %w", item.URL, err)
		}
	}

	return interfaces.Outcome{
		NextSubType: models.SubTypeExtract,
		PayloadPatch: map[string]interface{}{
			"fetched_title":    page.Title,
			"fetched_markdown": page.MarkdownContent,
		},
	}, nil
}

func (p *JobProcessor) extract(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	markdown, _ := item.GetPayloadString("fetched_markdown")
	title, _ := item.GetPayloadString("fetched_title")

	resp, err := p.agent.Generate(ctx, interfaces.AgentRequest{
		Scope:             scopeExtraction,
		SystemInstruction: extractionSystemInstruction,
		Prompt:            fmt.Sprintf("Page title: %s\n\nContent:\n%s", title, markdown),
		OutputSchema:      listingExtractionJSONSchema(),
		MaxOutputTokens:   2048,
		Temperature:       0.1,
	})
	if err != nil {
		return interfaces.Outcome{}, fmt.Errorf("job extraction call failed: %w", err)
	}

	parsed, err := parseListingExtraction(resp.Text)
	if err != nil {
		return interfaces.Outcome{}, models.Classify(models.ErrorKindParseError, err, 0)
	}
	if err := parsed.Validate(); err != nil {
		return interfaces.Outcome{}, models.Classify(models.ErrorKindValidation, err, 0)
	}

	dedupKey, err := common.NormalizeURL(item.URL)
	if err != nil {
		dedupKey = item.URL
	}

	listing, err := p.listings.GetByDedupKey(ctx, dedupKey)
	if err != nil {
		return interfaces.Outcome{}, fmt.Errorf("looking up listing by dedup key: %w", err)
	}
	if listing == nil {
		sourceID, _ := item.GetPayloadString("source_id")
		listing = models.NewJobListing(sourceID, item.URL)
		listing.DedupKey = dedupKey
	} else {
		listing.Touch()
	}

	listing.Title = parsed.Title
	listing.CompanyName = parsed.CompanyName
	listing.Location = parsed.Location
	listing.Remote = parsed.Remote
	listing.SalaryMin = parsed.SalaryMin
	listing.SalaryMax = parsed.SalaryMax
	listing.SalaryCurrency = parsed.SalaryCurrency
	listing.Description = parsed.Description
	if parsed.PostedAt != "" {
		if t, err := time.Parse(time.RFC3339, parsed.PostedAt); err == nil {
			listing.PostedAt = &t
		}
	}

	if err := p.listings.Save(ctx, listing); err != nil {
		return interfaces.Outcome{}, fmt.Errorf("saving extracted listing: %w", err)
	}

	return interfaces.Outcome{
		NextSubType: models.SubTypeFilter,
		PayloadPatch: map[string]interface{}{
			"listing_id": listing.ID,
		},
	}, nil
}

func (p *JobProcessor) filter(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	listing, err := p.requireListing(ctx, item)
	if err != nil {
		return interfaces.Outcome{}, err
	}

	result := p.prefilter.Apply(ctx, listing)
	if !result.Pass {
		p.logger.Info().Str("listing_id", listing.ID).Str("reason", result.Reason).Msg("listing rejected by pre-filter")
		listing.Status = models.ListingFiltered
		listing.Touch()
		if err := p.listings.Save(ctx, listing); err != nil {
			p.logger.Warn().Err(err).Str("listing_id", listing.ID).Msg("failed to persist filtered listing status")
		}
		return interfaces.Outcome{Terminal: models.StatusFiltered}, nil
	}

	listing.Status = models.ListingAnalyzing
	listing.Touch()
	if err := p.listings.Save(ctx, listing); err != nil {
		p.logger.Warn().Err(err).Str("listing_id", listing.ID).Msg("failed to persist analyzing listing status")
	}

	return interfaces.Outcome{NextSubType: models.SubTypeAnalyze}, nil
}

func (p *JobProcessor) analyze(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	listing, err := p.requireListing(ctx, item)
	if err != nil {
		return interfaces.Outcome{}, err
	}

	match, err := p.analyzer.Analyze(ctx, listing)
	if err != nil {
		return interfaces.Outcome{}, fmt.Errorf("analyzing listing %s: %w", listing.ID, err)
	}

	// A degraded match (shape validation exhausted, not a genuine score)
	// always proceeds to SAVE regardless of score, recording the audit
	// trail rather than being silently dropped as below-threshold.
	if !match.Degraded {
		mediumThreshold := p.cfg.GetInt(ctx, matchPolicyMediumThresholdKey, 50)
		if match.Score < mediumThreshold {
			p.logger.Info().Str("listing_id", listing.ID).Int("score", match.Score).Msg("listing skipped, below medium threshold")
			listing.Status = models.ListingSkipped
			listing.Touch()
			if err := p.listings.Save(ctx, listing); err != nil {
				p.logger.Warn().Err(err).Str("listing_id", listing.ID).Msg("failed to persist skipped listing status")
			}
			return interfaces.Outcome{Terminal: models.StatusSkipped}, nil
		}
	}

	return interfaces.Outcome{
		NextSubType: models.SubTypeSave,
		PayloadPatch: map[string]interface{}{
			"match_score":     match.Score,
			"match_priority":  string(match.Priority),
			"match_summary":   match.Summary,
			"match_strengths": match.Strengths,
			"match_concerns":  match.Concerns,
			"match_model":     match.Model,
			"match_prompt_v":  match.PromptVersion,
			"match_degraded":  match.Degraded,
		},
	}, nil
}

func (p *JobProcessor) save(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	listing, err := p.requireListing(ctx, item)
	if err != nil {
		return interfaces.Outcome{}, err
	}

	score, _ := item.GetPayloadInt("match_score")
	priority, _ := item.GetPayloadString("match_priority")
	summary, _ := item.GetPayloadString("match_summary")
	model, _ := item.GetPayloadString("match_model")
	promptV, _ := item.GetPayloadString("match_prompt_v")
	strengths := payloadStringSlice(item, "match_strengths")
	concerns := payloadStringSlice(item, "match_concerns")

	match := models.NewJobMatch(listing.ID, score, models.MatchPriority(priority), summary, strengths, concerns, model, promptV)
	match.Degraded = payloadBool(item, "match_degraded")
	if err := p.matches.Save(ctx, match); err != nil {
		return interfaces.Outcome{}, fmt.Errorf("saving match: %w", err)
	}

	listing.Status = models.ListingAnalyzed
	listing.Touch()
	if err := p.listings.Save(ctx, listing); err != nil {
		p.logger.Warn().Err(err).Str("listing_id", listing.ID).Msg("failed to persist analyzed listing status")
	}

	var fanOut []*models.QueueItem
	enrichOnSave := p.cfg.GetBool(ctx, matchPolicyEnrichOnSaveKey, false)
	if (enrichOnSave || match.Priority == models.PriorityHigh) && listing.CompanyName != "" {
		existing, err := p.companies.GetByDedupKey(ctx, models.CanonicalCompanyKey(listing.CompanyName))
		if err != nil {
			p.logger.Warn().Err(err).Str("company_name", listing.CompanyName).Msg("failed to check existing company before enrichment fan-out")
		}
		if existing == nil || !existing.Enriched {
			fanOut = append(fanOut, models.NewChildQueueItem(
				item, models.ItemTypeCompany, models.SubTypeFetch, "",
				map[string]interface{}{"company_name": listing.CompanyName},
				item.MaxAttempts,
			))
		}
	}

	return interfaces.Outcome{Terminal: models.StatusSuccess, FanOut: fanOut}, nil
}

// markListingSkipped records that item's URL is permanently unreachable
// (404/410), get-or-creating the JobListing stub by dedup key since
// FETCH failing means EXTRACT never ran to create one.
func (p *JobProcessor) markListingSkipped(ctx context.Context, item *models.QueueItem) error {
	dedupKey, err := common.NormalizeURL(item.URL)
	if err != nil {
		dedupKey = item.URL
	}

	listing, err := p.listings.GetByDedupKey(ctx, dedupKey)
	if err != nil {
		return fmt.Errorf("looking up listing by dedup key: %w", err)
	}
	if listing == nil {
		sourceID, _ := item.GetPayloadString("source_id")
		listing = models.NewJobListing(sourceID, item.URL)
		listing.DedupKey = dedupKey
	}
	listing.Status = models.ListingSkipped
	listing.Touch()

	return p.listings.Save(ctx, listing)
}

func (p *JobProcessor) requireListing(ctx context.Context, item *models.QueueItem) (*models.JobListing, error) {
	listingID, ok := item.GetPayloadString("listing_id")
	if !ok {
		return nil, fmt.Errorf("queue item %s missing listing_id in payload", item.ID)
	}
	listing, err := p.listings.Get(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("loading listing %s: %w", listingID, err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s not found", listingID)
	}
	return listing, nil
}

func payloadBool(item *models.QueueItem, key string) bool {
	v, ok := item.Payload[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func payloadStringSlice(item *models.QueueItem, key string) []string {
	v, ok := item.Payload[key]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return s
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, e := range s {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
