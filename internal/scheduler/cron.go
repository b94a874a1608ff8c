package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// scrapeTrigger is the subset of internal/intake.Intake the cron trigger
// needs — a narrower surface than interfaces.Intake (which only exposes
// SubmitURL) since triggering a poll of an already-persisted JobSource
// is an Intake operation the shared interface doesn't name.
type scrapeTrigger interface {
	TriggerScrape(ctx context.Context, source *models.JobSource) (string, error)
}

// defaultPollCronExpr fires every minute; actual per-source cadence is
// governed by JobSource.PollIntervalSeconds via SourceStore.ListDue, not
// by this expression, so one coarse tick is enough to catch any source
// whose interval has elapsed.
const defaultPollCronExpr = "* * * * *"

// cronTrigger ticks on a schedule and enqueues a scrape for every
// JobSource whose poll interval has elapsed, grounded on the (post-
// revert) teacher's choice of `github.com/robfig/cron/v3` in
// `scheduler_service.go`.
type cronTrigger struct {
	sources interfaces.SourceStore
	intake  scrapeTrigger
	cfg     *common.Config
	logger  arbor.ILogger
	engine  *cron.Cron
}

func newCronTrigger(sources interfaces.SourceStore, intake scrapeTrigger, cfg *common.Config, logger arbor.ILogger) *cronTrigger {
	return &cronTrigger{sources: sources, intake: intake, cfg: cfg, logger: logger, engine: cron.New()}
}

func (t *cronTrigger) start() error {
	_, err := t.engine.AddFunc(defaultPollCronExpr, t.tick)
	if err != nil {
		return fmt.Errorf("registering poll cron entry: %w", err)
	}
	t.engine.Start()
	return nil
}

func (t *cronTrigger) stop() {
	ctx := t.engine.Stop()
	<-ctx.Done()
}

func (t *cronTrigger) tick() {
	ctx := context.Background()
	due, err := t.sources.ListDue(ctx, time.Now())
	if err != nil {
		t.logger.Error().Err(err).Msg("failed to list due sources")
		return
	}

	for _, source := range due {
		if !source.Enabled || source.CircuitState == "OPEN" {
			continue
		}
		if _, err := t.intake.TriggerScrape(ctx, source); err != nil {
			t.logger.Error().Err(err).Str("source_id", source.ID).Msg("failed to trigger scrape for due source")
		}
	}
}
