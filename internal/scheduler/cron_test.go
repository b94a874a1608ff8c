package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/models"
)

func TestCronTrigger_TickTriggersOnlyEnabledClosedSources(t *testing.T) {
	enabledSource := models.NewJobSource("enabled", "https://enabled.example.com/jobs", models.SourceKindHTML, 3600)
	enabledSource.ID = "src-enabled"

	openSource := models.NewJobSource("tripped", "https://tripped.example.com/jobs", models.SourceKindHTML, 3600)
	openSource.ID = "src-open"
	openSource.CircuitState = models.CircuitOpen

	disabledSource := models.NewJobSource("disabled", "https://disabled.example.com/jobs", models.SourceKindHTML, 3600)
	disabledSource.ID = "src-disabled"
	disabledSource.Enabled = false

	sources := &fakeSourceStore{due: []*models.JobSource{enabledSource, openSource, disabledSource}}
	trigger := &fakeScrapeTrigger{}

	ct := newCronTrigger(sources, trigger, &common.Config{}, arbor.NewLogger())
	ct.tick()

	require.Len(t, trigger.triggered, 1)
	assert.Equal(t, "src-enabled", trigger.triggered[0].ID)
}

func TestCronTrigger_TickToleratesListDueError(t *testing.T) {
	sources := &fakeSourceStore{dueErr: assert.AnError}
	trigger := &fakeScrapeTrigger{}

	ct := newCronTrigger(sources, trigger, &common.Config{}, arbor.NewLogger())
	assert.NotPanics(t, func() { ct.tick() })
	assert.Empty(t, trigger.triggered)
}

func TestCronTrigger_StartAndStop(t *testing.T) {
	sources := &fakeSourceStore{}
	trigger := &fakeScrapeTrigger{}

	ct := newCronTrigger(sources, trigger, &common.Config{}, arbor.NewLogger())
	require.NoError(t, ct.start())

	done := make(chan struct{})
	go func() {
		ct.stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cron trigger did not stop in time")
	}

	_ = context.Background()
}
