package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	Environment     string           `toml:"environment"` // "development" or "production"
	DeleteOnStartup []string         `toml:"delete_on_startup"`
	Server          ServerConfig     `toml:"server"`
	Storage         StorageConfig    `toml:"storage"`
	Logging         LoggingConfig    `toml:"logging"`
	Scheduler       SchedulerConfig  `toml:"scheduler"`
	Worker          WorkerConfig     `toml:"worker_settings"`
	Crawler         CrawlerConfig    `toml:"crawler"`
	Gemini          GeminiConfig     `toml:"gemini"`
	Claude          ClaudeConfig     `toml:"claude"`
	LLM             LLMConfig        `toml:"llm"`
	PreFilter       PreFilterConfig  `toml:"prefilter_policy"`
	MatchPolicy     MatchPolicyConfig `toml:"match_policy"`
	CostBudget      CostBudgetConfig `toml:"cost_budget"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration.
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // debug|info|warn|error
	Format     string   `toml:"format"`      // text|json
	Output     []string `toml:"output"`      // stdout|file
	TimeFormat string   `toml:"time_format"`
}

// SchedulerConfig governs cron-triggered source polling and lease
// reclamation cadence.
type SchedulerConfig struct {
	DefaultPollIntervalSeconds int    `toml:"default_poll_interval_seconds"`
	LeaseMultiplier            int    `toml:"lease_multiplier"` // lease TTL = multiplier * poll interval
	ReclaimInterval            string `toml:"reclaim_interval"` // duration string, e.g. "1m"
	CircuitFailureThreshold    int    `toml:"circuit_failure_threshold"`
	CircuitCooldown            string `toml:"circuit_cooldown"` // duration string, e.g. "30m"
}

// WorkerConfig governs the pool claiming and processing QueueItems.
type WorkerConfig struct {
	PollInterval       string         `toml:"poll_interval"` // e.g. "1s"
	ConcurrencyByType  map[string]int `toml:"concurrency_by_type"`
	MaxAttempts        int            `toml:"max_attempts"`
	InitialBackoff     string         `toml:"initial_backoff"` // e.g. "5s"
	MaxBackoff         string         `toml:"max_backoff"`     // e.g. "10m"
	BackoffMultiplier  float64        `toml:"backoff_multiplier"`
	MaxFanOutDepth     int            `toml:"max_fan_out_depth"`
}

// CrawlerConfig governs the Scraper Adapter's fetch behavior.
type CrawlerConfig struct {
	UserAgent          string        `toml:"user_agent"`
	RequestTimeout     time.Duration `toml:"request_timeout"`
	MaxBodySize        int           `toml:"max_body_size"`
	RequestsPerSecond  float64       `toml:"requests_per_second"` // per-host rate limit
	OutputFormat       string        `toml:"output_format"`       // always "markdown" in this pipeline
	HeadlessWaitTime   time.Duration `toml:"headless_wait_time"`
	HeadlessMaxRetries int           `toml:"headless_max_retries"`
	HeadlessPoolSize   int           `toml:"headless_pool_size"`
}

// GeminiConfig contains Google Gemini API configuration.
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig contains Anthropic Claude API configuration.
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents an AI provider type.
type LLMProvider string

const (
	LLMProviderGemini LLMProvider = "gemini"
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig governs the Agent Manager's provider fallback chain.
type LLMConfig struct {
	FallbackOrder []LLMProvider `toml:"fallback_order"`
	MaxRetries    int           `toml:"max_retries"`
}

// PreFilterConfig governs the deterministic pre-AI filter.
type PreFilterConfig struct {
	RequiredKeywords []string `toml:"required_keywords"`
	ExcludedKeywords []string `toml:"excluded_keywords"`
	AllowedLocations []string `toml:"allowed_locations"`
	RequireRemote    bool     `toml:"require_remote"`
	MinSalary        float64  `toml:"min_salary"`
	MaxAgeDays       int      `toml:"max_age_days"`
}

// MatchPolicyConfig governs what happens after a JobMatch is scored.
type MatchPolicyConfig struct {
	EnrichOnSave   bool `toml:"enrich_on_save"` // true: every saved match fans out COMPANY enrichment; false: HIGH matches only
	HighThreshold  int  `toml:"high_threshold"`
	MediumThreshold int `toml:"medium_threshold"`
}

// ProviderBudget is one provider's daily spend ceiling.
type ProviderBudget struct {
	Provider      string  `toml:"provider"`
	DailyLimitUSD float64 `toml:"daily_limit_usd"`
}

// CostBudgetConfig governs the Agent Manager's daily spend cap, one
// ceiling per provider: CostLedgerEntry rows are tallied per (provider,
// day), so a noisy provider cannot starve another's budget and a
// provider's own ceiling gates only that provider's turn in the
// fallback chain.
type CostBudgetConfig struct {
	Providers []ProviderBudget `toml:"providers"`
	Timezone  string           `toml:"timezone"` // IANA zone, e.g. "America/New_York"
}

// LimitFor returns provider's configured daily limit. ok is false when
// no entry names provider, in which case the budget gate treats it as
// unbounded rather than silently blocking an unconfigured provider.
func (c *CostBudgetConfig) LimitFor(provider string) (limit float64, ok bool) {
	for _, p := range c.Providers {
		if p.Provider == provider {
			return p.DailyLimitUSD, true
		}
	}
	return 0, false
}

// NewDefaultConfig creates a configuration with default values. Technical
// parameters are hardcoded here for production stability; only
// user-facing settings should need to be set in jobpipeline.toml.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "text",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05.000",
		},
		Scheduler: SchedulerConfig{
			DefaultPollIntervalSeconds: 300,
			LeaseMultiplier:            5,
			ReclaimInterval:            "1m",
			CircuitFailureThreshold:    5,
			CircuitCooldown:            "30m",
		},
		Worker: WorkerConfig{
			PollInterval: "1s",
			ConcurrencyByType: map[string]int{
				"JOB":              10,
				"COMPANY":          3,
				"SCRAPE_SOURCE":    5,
				"SOURCE_DISCOVERY": 2,
			},
			MaxAttempts:       5,
			InitialBackoff:    "5s",
			MaxBackoff:        "10m",
			BackoffMultiplier: 2.0,
			MaxFanOutDepth:    6,
		},
		Crawler: CrawlerConfig{
			UserAgent:          "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			RequestTimeout:     30 * time.Second,
			MaxBodySize:        10 * 1024 * 1024,
			RequestsPerSecond:  1.0,
			OutputFormat:       "markdown",
			HeadlessWaitTime:   3 * time.Second,
			HeadlessMaxRetries: 2,
			HeadlessPoolSize:   2,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-3-flash-preview",
			Timeout:     "2m",
			Temperature: 0.3,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   4096,
			Timeout:     "2m",
			Temperature: 0.3,
		},
		LLM: LLMConfig{
			FallbackOrder: []LLMProvider{LLMProviderGemini, LLMProviderClaude},
			MaxRetries:    5,
		},
		PreFilter: PreFilterConfig{
			MaxAgeDays: 30,
		},
		MatchPolicy: MatchPolicyConfig{
			EnrichOnSave:    true,
			HighThreshold:   75,
			MediumThreshold: 45,
		},
		CostBudget: CostBudgetConfig{
			Providers: []ProviderBudget{
				{Provider: string(LLMProviderGemini), DailyLimitUSD: 5.0},
				{Provider: string(LLMProviderClaude), DailyLimitUSD: 5.0},
			},
			Timezone: "UTC",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// ones; a later file only needs to set the keys it wants to change.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if env := os.Getenv("JOBPIPELINE_ENV"); env != "" {
		config.Environment = env
	}
	if port := os.Getenv("JOBPIPELINE_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("JOBPIPELINE_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies CLI flag values, which take precedence over
// every other configuration source. Zero values mean "not set."
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// IsProduction reports whether the configured environment is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
