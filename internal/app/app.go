// Package app wires every component of the pipeline — storage, config
// registry, agent manager, scraper registry, processor graph, queue
// manager, intake, and scheduler — into one handle, grounded on the
// teacher's internal/app.App composition root.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/agent"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/filter"
	"github.com/ternarybob/jobpipeline/internal/intake"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/ternarybob/jobpipeline/internal/processor"
	"github.com/ternarybob/jobpipeline/internal/queue"
	"github.com/ternarybob/jobpipeline/internal/registry"
	"github.com/ternarybob/jobpipeline/internal/scheduler"
	"github.com/ternarybob/jobpipeline/internal/scraper"
	"github.com/ternarybob/jobpipeline/internal/storage"
)

// App is the composition root: every long-lived component is built
// once in New and handed out by field, the same shape as the teacher's
// app.App except the handler set is replaced by the queue/processor/
// scheduler graph this domain actually runs.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	Storage    interfaces.StorageManager
	Registry   interfaces.ConfigRegistry
	Agent      interfaces.AgentManager
	Scrapers   interfaces.ScraperRegistry
	PreFilter  interfaces.PreFilter
	Analyzer   interfaces.MatchAnalyzer
	Processors interfaces.ProcessorRegistry
	Queue      interfaces.QueueManager
	Intake     *intake.Intake
	Scheduler  *scheduler.Scheduler
}

// New builds and wires the full App from a loaded config. Callers own
// calling Start/Stop around the returned App's lifetime.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	store, err := storage.NewStorageManager(logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	configRegistry := registry.NewConfigRegistry(cfg, store.Config(), logger)

	scraperRegistry := scraper.NewRegistry()
	scraperRegistry.Register(models.SourceKindHTML, scraper.NewHTMLAdapter(cfg.Crawler, logger))
	scraperRegistry.Register(models.SourceKindRSS, scraper.NewRSSAdapter(cfg.Crawler, logger))
	headless, err := scraper.NewHeadlessAdapter(cfg.Crawler, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing headless adapter: %w", err)
	}
	scraperRegistry.Register(models.SourceKindHeadless, headless)

	agentManager := agent.NewManager(cfg, store.Cost(), logger)
	preFilter := filter.NewPreFilter(&cfg.PreFilter, logger)
	analyzer := filter.NewMatchAnalyzer(agentManager, logger)

	leaseTTL := parseLeaseTTL(cfg)
	queueManager := queue.NewManager(store.Queue(), &cfg.Worker, leaseTTL, logger)

	processorRegistry := processor.NewRegistry()
	processorRegistry.Register(processor.NewJobProcessor(scraperRegistry, agentManager, preFilter, analyzer, store.Listings(), store.Matches(), store.Companies(), configRegistry, logger))
	processorRegistry.Register(processor.NewCompanyProcessor(scraperRegistry, agentManager, store.Companies(), logger))
	processorRegistry.Register(processor.NewSourceProcessor(scraperRegistry, store.Sources(), &cfg.Scheduler, logger))
	processorRegistry.Register(processor.NewDiscoveryProcessor(scraperRegistry, store.Sources(), logger))

	in := intake.New(queueManager, logger)
	sched := scheduler.New(queueManager, processorRegistry, store.Sources(), in, cfg, logger)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Storage:    store,
		Registry:   configRegistry,
		Agent:      agentManager,
		Scrapers:   scraperRegistry,
		PreFilter:  preFilter,
		Analyzer:   analyzer,
		Processors: processorRegistry,
		Queue:      queueManager,
		Intake:     in,
		Scheduler:  sched,
	}, nil
}

// Start launches the scheduler (worker pool, lease reclaimer, cron
// trigger).
func (a *App) Start(ctx context.Context) error {
	return a.Scheduler.Start(ctx)
}

// Stop drains the scheduler and closes storage, in that order so no
// worker is mid-claim against a closed store.
func (a *App) Stop(ctx context.Context) error {
	if err := a.Scheduler.Stop(ctx); err != nil {
		a.Logger.Error().Err(err).Msg("scheduler shutdown reported an error")
	}
	if err := a.Agent.Close(); err != nil {
		a.Logger.Error().Err(err).Msg("agent manager close reported an error")
	}
	return a.Storage.Close()
}

const (
	fallbackPollInterval   = time.Second
	defaultLeaseMultiplier = 5
)

// parseLeaseTTL derives the CLAIMED lease TTL as
// lease-multiplier * poll-interval, falling back to a safe default on
// malformed config (resolves Open Question 1).
func parseLeaseTTL(cfg *common.Config) time.Duration {
	poll, err := time.ParseDuration(cfg.Worker.PollInterval)
	if err != nil || poll <= 0 {
		poll = fallbackPollInterval
	}
	multiplier := cfg.Scheduler.LeaseMultiplier
	if multiplier <= 0 {
		multiplier = defaultLeaseMultiplier
	}
	return poll * time.Duration(multiplier)
}
