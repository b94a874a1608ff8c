package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// candidateFeedPaths are common careers/job-feed endpoint suffixes probed
// against a company's domain, cheapest (RSS feeds) first so a hit short-
// circuits the remaining, more expensive HEADLESS probes.
var candidateFeedPaths = []struct {
	path string
	kind models.SourceKind
}{
	{"/careers.rss", models.SourceKindRSS},
	{"/jobs.rss", models.SourceKindRSS},
	{"/careers", models.SourceKindHTML},
	{"/jobs", models.SourceKindHTML},
	{"/careers/", models.SourceKindHeadless},
}

// DiscoveryProcessor drives the SOURCE_DISCOVERY lane: given a known
// Company, probe a short list of candidate endpoints, classify the first
// one that resolves, and save a JobSource for it. This is a single
// monolithic step (no sub-type split): each candidate probe is cheap and
// the lane has no intermediate state worth making restartable.
type DiscoveryProcessor struct {
	scrapers interfaces.ScraperRegistry
	sources  interfaces.SourceStore
	logger   arbor.ILogger
}

// NewDiscoveryProcessor constructs a DiscoveryProcessor.
func NewDiscoveryProcessor(scrapers interfaces.ScraperRegistry, sources interfaces.SourceStore, logger arbor.ILogger) *DiscoveryProcessor {
	return &DiscoveryProcessor{scrapers: scrapers, sources: sources, logger: logger}
}

var _ interfaces.Processor = (*DiscoveryProcessor)(nil)

func (p *DiscoveryProcessor) Type() models.ItemType { return models.ItemTypeSourceDiscovery }

func (p *DiscoveryProcessor) Process(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	name, _ := item.GetPayloadString("company_name")
	domain, _ := item.GetPayloadString("company_domain")
	if domain == "" {
		return interfaces.Outcome{Terminal: models.StatusSkipped}, nil
	}

	base := "https://" + strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")

	for _, candidate := range candidateFeedPaths {
		adapter, ok := p.scrapers.Get(candidate.kind)
		if !ok {
			continue
		}
		candidateURL := base + candidate.path

		probe := &models.JobSource{URL: candidateURL, Kind: candidate.kind}
		if _, err := adapter.FetchSource(ctx, probe); err != nil {
			continue
		}

		source := models.NewJobSource(fmt.Sprintf("%s careers (%s)", name, candidate.kind), candidateURL, candidate.kind, 3600)
		if err := p.sources.Save(ctx, source); err != nil {
			return interfaces.Outcome{}, fmt.Errorf("saving discovered source: %w", err)
		}

		p.logger.Info().Str("company_name", name).Str("url", candidateURL).Msg("discovered job source")
		return interfaces.Outcome{Terminal: models.StatusSuccess}, nil
	}

	return interfaces.Outcome{Terminal: models.StatusSkipped}, nil
}
