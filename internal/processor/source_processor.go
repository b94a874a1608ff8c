package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/ternarybob/jobpipeline/internal/queue"
)

// SourceProcessor drives the SCRAPE_SOURCE lane: FETCH_PAGE (possibly
// paginated index fetch) -> INTAKE (fan out one JOB item per discovered
// posting, deduped) -> UPDATE_SOURCE_STATS.
type SourceProcessor struct {
	scrapers         interfaces.ScraperRegistry
	sources          interfaces.SourceStore
	circuitThreshold int
	circuitCooldown  time.Duration
	logger           arbor.ILogger
}

// NewSourceProcessor constructs a SourceProcessor. schedulerCfg supplies
// the circuit breaker's failure threshold and cooldown, since both are
// operator-tunable alongside poll cadence rather than per-source.
func NewSourceProcessor(scrapers interfaces.ScraperRegistry, sources interfaces.SourceStore, schedulerCfg *common.SchedulerConfig, logger arbor.ILogger) *SourceProcessor {
	cooldown, err := time.ParseDuration(schedulerCfg.CircuitCooldown)
	if err != nil || cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	threshold := schedulerCfg.CircuitFailureThreshold
	if threshold <= 0 {
		threshold = 5
	}
	return &SourceProcessor{
		scrapers:         scrapers,
		sources:          sources,
		circuitThreshold: threshold,
		circuitCooldown:  cooldown,
		logger:           logger,
	}
}

var _ interfaces.Processor = (*SourceProcessor)(nil)

func (p *SourceProcessor) Type() models.ItemType { return models.ItemTypeScrapeSource }

func (p *SourceProcessor) Process(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	switch item.SubType {
	case models.SubTypeFetchPage, "":
		return p.fetchPage(ctx, item)
	case models.SubTypeIntake:
		return p.intake(ctx, item)
	case models.SubTypeStats:
		return p.updateStats(ctx, item)
	default:
		return interfaces.Outcome{}, fmt.Errorf("source processor: unknown sub type %q", item.SubType)
	}
}

func (p *SourceProcessor) requireSource(ctx context.Context, item *models.QueueItem) (*models.JobSource, error) {
	sourceID, ok := item.GetPayloadString("source_id")
	if !ok {
		return nil, fmt.Errorf("queue item %s missing source_id in payload", item.ID)
	}
	source, err := p.sources.Get(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("loading source %s: %w", sourceID, err)
	}
	if source == nil {
		return nil, fmt.Errorf("source %s not found", sourceID)
	}
	return source, nil
}

func (p *SourceProcessor) fetchPage(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	source, err := p.requireSource(ctx, item)
	if err != nil {
		return interfaces.Outcome{}, err
	}

	adapter, ok := p.scrapers.Get(source.Kind)
	if !ok {
		return interfaces.Outcome{}, fmt.Errorf("no scraper adapter registered for source kind %q", source.Kind)
	}

	listings, err := adapter.FetchSource(ctx, source)
	if err != nil {
		source.RecordFailure(p.circuitThreshold, p.circuitCooldown)
		if saveErr := p.sources.Save(ctx, source); saveErr != nil {
			p.logger.Warn().Err(saveErr).Str("source_id", source.ID).Msg("failed to persist source failure streak")
		}
		kind := models.KindOf(err)
		if kind == models.ErrorKindUnknown {
			return interfaces.Outcome{}, fmt.Errorf("fetching source %s: %w", source.URL, err)
		}
		// Preserve the classified kind (e.g. Blocked) so queue.Fail can
		// apply the right retry/backoff decision instead of seeing a
		// re-wrapped, unclassifiable error.
		return interfaces.Outcome{}, err
	}

	urls := make([]string, 0, len(listings))
	titles := make([]string, 0, len(listings))
	for _, l := range listings {
		urls = append(urls, l.URL)
		titles = append(titles, l.Title)
	}

	return interfaces.Outcome{
		NextSubType: models.SubTypeIntake,
		PayloadPatch: map[string]interface{}{
			"discovered_urls":   urls,
			"discovered_titles": titles,
		},
	}, nil
}

func (p *SourceProcessor) intake(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	urls := payloadStringSlice(item, "discovered_urls")
	titles := payloadStringSlice(item, "discovered_titles")

	sourceID, _ := item.GetPayloadString("source_id")

	children := make([]*models.QueueItem, 0, len(urls))
	for i, rawURL := range urls {
		normalized, err := common.NormalizeURL(rawURL)
		if err != nil {
			p.logger.Warn().Err(err).Str("url", rawURL).Msg("skipping unparsable discovered URL")
			continue
		}

		title := ""
		if i < len(titles) {
			title = titles[i]
		}

		child := models.NewChildQueueItem(
			item, models.ItemTypeJob, models.SubTypeFetch, rawURL,
			map[string]interface{}{"source_id": sourceID, "fetched_title": title},
			item.MaxAttempts,
		)
		child.IdempotencyKey = queue.JobIdempotencyKey(models.SubTypeFetch, normalized)
		children = append(children, child)
	}

	return interfaces.Outcome{
		NextSubType:  models.SubTypeStats,
		FanOut:       children,
		PayloadPatch: map[string]interface{}{"discovered_count": len(children)},
	}, nil
}

func (p *SourceProcessor) updateStats(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	source, err := p.requireSource(ctx, item)
	if err != nil {
		return interfaces.Outcome{}, err
	}

	count, _ := item.GetPayloadInt("discovered_count")
	source.RecordSuccess(count)
	if err := p.sources.Save(ctx, source); err != nil {
		return interfaces.Outcome{}, fmt.Errorf("saving source stats: %w", err)
	}

	return interfaces.Outcome{Terminal: models.StatusSuccess}, nil
}
