package intake

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/ternarybob/jobpipeline/internal/queue"
)

const defaultMaxAttempts = 5

// Intake is the external entry point a REST layer or CLI would call: it
// normalizes an operator-submitted URL and turns it into a root
// QueueItem, delegating every state transition to the Queue Manager.
// Grounded on the teacher's thin-facade-over-a-validator pattern in
// `common/url_utils.go`'s `ValidateBaseURL`, reused here rather than
// rewritten since URL scheme/host validation doesn't change across
// domains.
type Intake struct {
	queue  interfaces.QueueManager
	logger arbor.ILogger
}

// New constructs an Intake.
func New(queueManager interfaces.QueueManager, logger arbor.ILogger) *Intake {
	return &Intake{queue: queueManager, logger: logger}
}

var _ interfaces.Intake = (*Intake)(nil)

// SubmitURL normalizes rawURL and enqueues it as a root JOB item, the
// common case of an operator pasting a single posting URL.
func (i *Intake) SubmitURL(ctx context.Context, rawURL string) (string, error) {
	if _, _, _, err := common.ValidateBaseURL(rawURL, i.logger); err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	normalized, err := common.NormalizeURL(rawURL)
	if err != nil {
		return "", fmt.Errorf("normalizing URL %q: %w", rawURL, err)
	}

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, rawURL, nil, models.SourceUserSubmission, defaultMaxAttempts)
	item.IdempotencyKey = queue.JobIdempotencyKey(models.SubTypeFetch, normalized)

	ok, err := i.queue.Submit(ctx, item)
	if err != nil {
		return "", fmt.Errorf("submitting job url %q: %w", rawURL, err)
	}
	if !ok {
		i.logger.Info().Str("url", rawURL).Msg("job url already queued, skipping duplicate submission")
	}
	return item.ID, nil
}

// SubmitCompany enqueues a root COMPANY item for a known (or suspected)
// employer name, triggering the FETCH->EXTRACT->ENRICH lane
// independently of any single job match.
func (i *Intake) SubmitCompany(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("company name must not be empty")
	}

	item := models.NewRootQueueItem(models.ItemTypeCompany, models.SubTypeFetch, "", map[string]interface{}{
		"company_name": name,
	}, models.SourceUserSubmission, defaultMaxAttempts)
	item.IdempotencyKey = queue.CompanyIdempotencyKey(models.SubTypeFetch, name)

	ok, err := i.queue.Submit(ctx, item)
	if err != nil {
		return "", fmt.Errorf("submitting company %q: %w", name, err)
	}
	if !ok {
		i.logger.Info().Str("company_name", name).Msg("company already queued, skipping duplicate submission")
	}
	return item.ID, nil
}

// SubmitSource enqueues a root SCRAPE_SOURCE item to poll an existing,
// already-persisted JobSource once immediately rather than waiting for
// its next scheduled poll.
func (i *Intake) SubmitSource(ctx context.Context, source *models.JobSource) (string, error) {
	if source == nil || source.ID == "" {
		return "", fmt.Errorf("source must be persisted before it can be submitted")
	}

	item := models.NewRootQueueItem(models.ItemTypeScrapeSource, models.SubTypeFetchPage, source.URL, map[string]interface{}{
		"source_id": source.ID,
	}, models.SourceUserSubmission, defaultMaxAttempts)

	ok, err := i.queue.Submit(ctx, item)
	if err != nil {
		return "", fmt.Errorf("submitting source %s: %w", source.ID, err)
	}
	if !ok {
		i.logger.Info().Str("source_id", source.ID).Msg("source scrape already queued, skipping duplicate submission")
	}
	return item.ID, nil
}

// TriggerScrape is an alias for SubmitSource kept as its own named
// operation because the two callers (an operator re-queuing a poll vs.
// the scheduler's own cron tick) have distinct call sites even though
// the behavior is identical.
func (i *Intake) TriggerScrape(ctx context.Context, source *models.JobSource) (string, error) {
	return i.SubmitSource(ctx, source)
}
