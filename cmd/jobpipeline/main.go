package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/jobpipeline/internal/app"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/ternarybob/jobpipeline/internal/server"
)

// configPaths is a custom flag type allowing multiple -config flags.
type configPaths []string

func (c *configPaths) String() string { return fmt.Sprintf("%v", *c) }
func (c *configPaths) Set(value string) error {
	*c = append(*c, value)
	return nil
}

var (
	configFiles configPaths
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	serverHost  = flag.String("host", "", "Server host (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func init() {
	flag.Var(&configFiles, "config", "Configuration file path (can be specified multiple times, later files override earlier ones)")
	flag.Var(&configFiles, "c", "Configuration file path (shorthand)")
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("jobpipeline version %s\n", common.GetVersion())
		os.Exit(0)
	}

	args := flag.Args()

	if len(configFiles) == 0 {
		if _, err := os.Stat("jobpipeline.toml"); err == nil {
			configFiles = append(configFiles, "jobpipeline.toml")
		} else if _, err := os.Stat("deployments/local/jobpipeline.toml"); err == nil {
			configFiles = append(configFiles, "deployments/local/jobpipeline.toml")
		}
	}

	cfg, err := common.LoadFromFiles(configFiles...)
	if err != nil {
		tempLogger := arbor.NewLogger()
		tempLogger.Fatal().Strs("paths", configFiles).Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	common.ApplyFlagOverrides(cfg, *serverPort, *serverHost)

	logger := buildLogger(cfg)
	common.InitLogger(logger)

	if len(args) > 0 && args[0] == "query" {
		runQuery(cfg, logger, args[1:])
		return
	}

	runServe(cfg, logger)
}

// buildLogger wires console/file/memory writers the same way the
// teacher's main.go assembles arbor, generalized only in the on-disk
// log file name.
func buildLogger(cfg *common.Config) arbor.ILogger {
	logger := arbor.NewLogger()

	hasFileOutput, hasStdoutOutput := false, false
	for _, output := range cfg.Logging.Output {
		if output == "file" {
			hasFileOutput = true
		}
		if output == "stdout" || output == "console" {
			hasStdoutOutput = true
		}
	}

	if hasFileOutput {
		execPath, err := os.Executable()
		if err == nil {
			logsDir := filepath.Join(filepath.Dir(execPath), "logs")
			if mkErr := os.MkdirAll(logsDir, 0755); mkErr == nil {
				logger = logger.WithFileWriter(arbormodels.WriterConfiguration{
					Type:             arbormodels.LogWriterTypeFile,
					FileName:         filepath.Join(logsDir, "jobpipeline.log"),
					TimeFormat:       "15:04:05",
					MaxSize:          100 * 1024 * 1024,
					MaxBackups:       3,
					TextOutput:       true,
					DisableTimestamp: false,
				})
			}
		}
	}

	if hasStdoutOutput || !hasFileOutput {
		logger = logger.WithConsoleWriter(arbormodels.WriterConfiguration{
			Type:             arbormodels.LogWriterTypeConsole,
			TimeFormat:       "15:04:05",
			TextOutput:       true,
			DisableTimestamp: false,
		})
	}

	logger = logger.WithMemoryWriter(arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeMemory,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})

	return logger.WithLevelFromString(cfg.Logging.Level)
}

// runServe starts storage, the scheduler, and the HTTP surface, and
// blocks until SIGINT/SIGTERM or a shutdown request over HTTP.
func runServe(cfg *common.Config, logger arbor.ILogger) {
	common.PrintBanner(cfg, logger)

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to start scheduler")
	}

	shutdownChan := make(chan struct{})
	srv := server.New(application)
	srv.SetShutdownChannel(shutdownChan)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Fatal().Str("panic", fmt.Sprintf("%v", r)).Msg("HTTP server goroutine panicked")
			}
		}()
		if err := srv.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed to start")
		}
	}()

	time.Sleep(100 * time.Millisecond)
	logger.Info().
		Str("url", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)).
		Msg("jobpipeline ready - press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		logger.Info().Msg("interrupt signal received")
	case <-shutdownChan:
		logger.Info().Msg("shutdown requested via HTTP")
	}

	common.PrintShutdownBanner(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("application shutdown failed")
	}

	logger.Info().Msg("jobpipeline stopped")
}

// runQuery opens storage without starting the scheduler
// and prints matching JobListings/JobMatches for quick operator
// triage, grounded on the teacher's cmd/quaero/query.go intent though
// rebuilt against this domain's Store instead of a cobra RAG command.
func runQuery(cfg *common.Config, logger arbor.ILogger, args []string) {
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application")
	}
	defer application.Stop(context.Background())

	priority := models.PriorityHigh
	if len(args) > 0 {
		priority = models.MatchPriority(args[0])
	}

	ctx := context.Background()
	matches, err := application.Storage.Matches().ListByPriority(ctx, priority, 50, 0)
	if err != nil {
		logger.Fatal().Err(err).Msg("query failed")
	}

	fmt.Printf("%-36s %-8s %-6s %s\n", "LISTING ID", "SCORE", "PRIO", "SUMMARY")
	for _, m := range matches {
		fmt.Printf("%-36s %-8d %-6s %s\n", m.ListingID, m.Score, m.Priority, m.Summary)
	}
	fmt.Printf("\n%d match(es)\n", len(matches))
}
