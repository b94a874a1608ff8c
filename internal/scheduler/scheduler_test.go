package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func testConfig() *common.Config {
	cfg := &common.Config{}
	cfg.Worker.PollInterval = "5ms"
	cfg.Worker.ConcurrencyByType = map[string]int{string(models.ItemTypeJob): 1}
	cfg.Scheduler.ReclaimInterval = "10ms"
	return cfg
}

func TestScheduler_ClaimAndProcessOneCompletesOnSuccess(t *testing.T) {
	item := &models.QueueItem{ID: "item-1", Type: models.ItemTypeJob}
	queue := &fakeQueueManager{claimable: []*models.QueueItem{item}}
	registry := newFakeProcessorRegistry()
	registry.Register(&fakeProcessor{itemType: models.ItemTypeJob, outcome: interfaces.Outcome{Terminal: models.StatusSuccess}})

	s := &Scheduler{queue: queue, processors: registry, logger: arbor.NewLogger()}
	s.claimAndProcessOne(context.Background(), models.ItemTypeJob, "worker-1")

	assert.Len(t, queue.completed, 1)
	assert.Empty(t, queue.failed)
}

func TestScheduler_ClaimAndProcessOneFailsOnProcessorError(t *testing.T) {
	item := &models.QueueItem{ID: "item-1", Type: models.ItemTypeJob}
	queue := &fakeQueueManager{claimable: []*models.QueueItem{item}}
	registry := newFakeProcessorRegistry()
	registry.Register(&fakeProcessor{itemType: models.ItemTypeJob, err: assert.AnError})

	s := &Scheduler{queue: queue, processors: registry, logger: arbor.NewLogger()}
	s.claimAndProcessOne(context.Background(), models.ItemTypeJob, "worker-1")

	assert.Empty(t, queue.completed)
	assert.Len(t, queue.failed, 1)
}

func TestScheduler_ClaimAndProcessOneFailsWhenNoProcessorRegistered(t *testing.T) {
	item := &models.QueueItem{ID: "item-1", Type: models.ItemTypeCompany}
	queue := &fakeQueueManager{claimable: []*models.QueueItem{item}}
	registry := newFakeProcessorRegistry()

	s := &Scheduler{queue: queue, processors: registry, logger: arbor.NewLogger()}
	s.claimAndProcessOne(context.Background(), models.ItemTypeCompany, "worker-1")

	assert.Len(t, queue.failed, 1)
}

func TestScheduler_ClaimAndProcessOneNoopsWhenNothingClaimable(t *testing.T) {
	queue := &fakeQueueManager{}
	registry := newFakeProcessorRegistry()

	s := &Scheduler{queue: queue, processors: registry, logger: arbor.NewLogger()}
	s.claimAndProcessOne(context.Background(), models.ItemTypeJob, "worker-1")

	assert.Empty(t, queue.completed)
	assert.Empty(t, queue.failed)
}

func TestScheduler_StartAndStop(t *testing.T) {
	queue := &fakeQueueManager{}
	registry := newFakeProcessorRegistry()
	sources := &fakeSourceStore{}
	trigger := &fakeScrapeTrigger{}

	s := New(queue, registry, sources, trigger, testConfig(), arbor.NewLogger())
	require.NoError(t, s.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestParseDurationOrDefault_FallsBackOnBadInput(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseDurationOrDefault("not-a-duration", 3*time.Second))
	assert.Equal(t, 2*time.Second, parseDurationOrDefault("2s", time.Second))
}
