package processor

import (
	"sync"

	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

// Registry looks up the Processor responsible for an ItemType, the same
// kind-keyed-registry shape as scraper.Registry.
type Registry struct {
	mu         sync.RWMutex
	processors map[models.ItemType]interfaces.Processor
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{processors: make(map[models.ItemType]interfaces.Processor)}
}

var _ interfaces.ProcessorRegistry = (*Registry)(nil)

func (r *Registry) Register(p interfaces.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[p.Type()] = p
}

func (r *Registry) Get(itemType models.ItemType) (interfaces.Processor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.processors[itemType]
	return p, ok
}
