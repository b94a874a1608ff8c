package scraper

import (
	"sync"

	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// Registry implements interfaces.ScraperRegistry, dispatching by
// models.SourceKind to whichever adapter (HTML, RSS, headless) was
// registered for it.
type Registry struct {
	mu       sync.RWMutex
	adapters map[models.SourceKind]interfaces.ScraperAdapter
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[models.SourceKind]interfaces.ScraperAdapter)}
}

func (r *Registry) Register(kind models.SourceKind, adapter interfaces.ScraperAdapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[kind] = adapter
}

func (r *Registry) Get(kind models.SourceKind) (interfaces.ScraperAdapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	return a, ok
}
