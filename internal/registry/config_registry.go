package registry

import (
	"context"
	"strconv"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// ConfigRegistry serves typed configuration reads of ConfigStore-persisted
// overrides, cached until InvalidateCache is called (always called by Set).
// A GetX call returns the override for its key, or else the caller's
// fallback; the file-loaded config is not consulted by these reads and
// is reachable only through Base(). Grounded on
// services/config.Service's read-cache + invalidate-on-write shape,
// simplified since this pipeline has no event bus to subscribe to.
type ConfigRegistry struct {
	base  *common.Config
	store interfaces.ConfigStore

	mu        sync.RWMutex
	cache     map[string]string
	cacheLoaded bool

	logger arbor.ILogger
}

// NewConfigRegistry constructs a ConfigRegistry over base defaults and a
// persisted override store.
func NewConfigRegistry(base *common.Config, store interfaces.ConfigStore, logger arbor.ILogger) *ConfigRegistry {
	return &ConfigRegistry{base: base, store: store, logger: logger}
}

func (r *ConfigRegistry) loadCache(ctx context.Context) map[string]string {
	r.mu.RLock()
	if r.cacheLoaded {
		cache := r.cache
		r.mu.RUnlock()
		return cache
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cacheLoaded {
		return r.cache
	}

	cache := make(map[string]string)
	entries, err := r.store.All(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load config overrides, falling back to file defaults only")
	} else {
		for _, e := range entries {
			cache[e.Key] = e.Value
		}
	}
	r.cache = cache
	r.cacheLoaded = true
	return cache
}

func (r *ConfigRegistry) GetString(ctx context.Context, key, fallback string) string {
	if v, ok := r.loadCache(ctx)[key]; ok {
		return v
	}
	return fallback
}

func (r *ConfigRegistry) GetInt(ctx context.Context, key string, fallback int) int {
	if v, ok := r.loadCache(ctx)[key]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (r *ConfigRegistry) GetBool(ctx context.Context, key string, fallback bool) bool {
	if v, ok := r.loadCache(ctx)[key]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func (r *ConfigRegistry) GetFloat(ctx context.Context, key string, fallback float64) float64 {
	if v, ok := r.loadCache(ctx)[key]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// Set persists an override and invalidates the cache so the next read
// picks it up.
func (r *ConfigRegistry) Set(ctx context.Context, key, value, updatedBy string) error {
	entry := models.NewConfigEntry(key, value, updatedBy)
	if err := r.store.Set(ctx, entry); err != nil {
		return err
	}
	r.InvalidateCache()
	return nil
}

func (r *ConfigRegistry) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheLoaded = false
	r.cache = nil
}

// Base returns the underlying file-loaded config, for components that
// need the full typed struct rather than individual keyed overrides
// (e.g. Storage.Badger.Path, which is never an operator-tunable
// override).
func (r *ConfigRegistry) Base() *common.Config {
	return r.base
}
