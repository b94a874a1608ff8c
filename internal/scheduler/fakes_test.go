package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

type fakeQueueManager struct {
	mu        sync.Mutex
	claimable []*models.QueueItem
	completed []*models.QueueItem
	failed    []*models.QueueItem
	reclaimed int
	reclaimErr error
}

func (m *fakeQueueManager) Submit(ctx context.Context, item *models.QueueItem) (bool, error) {
	return true, nil
}

func (m *fakeQueueManager) Claim(ctx context.Context, types []models.ItemType, workerID string) (*models.QueueItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.claimable {
		for _, t := range types {
			if item.Type == t {
				m.claimable = append(m.claimable[:i], m.claimable[i+1:]...)
				return item, nil
			}
		}
	}
	return nil, nil
}

func (m *fakeQueueManager) Complete(ctx context.Context, item *models.QueueItem, outcome interfaces.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completed = append(m.completed, item)
	return nil
}

func (m *fakeQueueManager) Fail(ctx context.Context, item *models.QueueItem, err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed = append(m.failed, item)
	return nil
}

func (m *fakeQueueManager) ReclaimStale(ctx context.Context) (int, error) {
	return m.reclaimed, m.reclaimErr
}

type fakeProcessorRegistry struct {
	processors map[models.ItemType]interfaces.Processor
}

func newFakeProcessorRegistry() *fakeProcessorRegistry {
	return &fakeProcessorRegistry{processors: make(map[models.ItemType]interfaces.Processor)}
}

func (r *fakeProcessorRegistry) Register(p interfaces.Processor) {
	r.processors[p.Type()] = p
}

func (r *fakeProcessorRegistry) Get(itemType models.ItemType) (interfaces.Processor, bool) {
	p, ok := r.processors[itemType]
	return p, ok
}

type fakeProcessor struct {
	itemType models.ItemType
	outcome  interfaces.Outcome
	err      error
	calls    int
}

func (p *fakeProcessor) Type() models.ItemType { return p.itemType }

func (p *fakeProcessor) Process(ctx context.Context, item *models.QueueItem) (interfaces.Outcome, error) {
	p.calls++
	return p.outcome, p.err
}

type fakeSourceStore struct {
	due    []*models.JobSource
	dueErr error
	saved  []*models.JobSource
}

func (s *fakeSourceStore) Save(ctx context.Context, source *models.JobSource) error {
	s.saved = append(s.saved, source)
	return nil
}
func (s *fakeSourceStore) Get(ctx context.Context, id string) (*models.JobSource, error) {
	return nil, nil
}
func (s *fakeSourceStore) GetByURL(ctx context.Context, url string) (*models.JobSource, error) {
	return nil, nil
}
func (s *fakeSourceStore) ListEnabled(ctx context.Context) ([]*models.JobSource, error) {
	return nil, nil
}
func (s *fakeSourceStore) ListDue(ctx context.Context, now time.Time) ([]*models.JobSource, error) {
	return s.due, s.dueErr
}

type fakeScrapeTrigger struct {
	mu        sync.Mutex
	triggered []*models.JobSource
	err       error
}

func (t *fakeScrapeTrigger) TriggerScrape(ctx context.Context, source *models.JobSource) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return "", t.err
	}
	t.triggered = append(t.triggered, source)
	return source.ID, nil
}
