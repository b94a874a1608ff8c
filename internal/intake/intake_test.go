package intake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

type fakeQueueManager struct {
	submitted []*models.QueueItem
	submitOK  bool
	submitErr error
}

func (m *fakeQueueManager) Submit(ctx context.Context, item *models.QueueItem) (bool, error) {
	if m.submitErr != nil {
		return false, m.submitErr
	}
	m.submitted = append(m.submitted, item)
	if !m.submitOK {
		return true, nil
	}
	return m.submitOK, nil
}

func (m *fakeQueueManager) Claim(ctx context.Context, types []models.ItemType, workerID string) (*models.QueueItem, error) {
	return nil, nil
}
func (m *fakeQueueManager) Complete(ctx context.Context, item *models.QueueItem, outcome interfaces.Outcome) error {
	return nil
}
func (m *fakeQueueManager) Fail(ctx context.Context, item *models.QueueItem, err error) error { return nil }
func (m *fakeQueueManager) ReclaimStale(ctx context.Context) (int, error)                     { return 0, nil }

func newTestIntake() (*Intake, *fakeQueueManager) {
	mgr := &fakeQueueManager{submitOK: true}
	return New(mgr, arbor.NewLogger()), mgr
}

func TestIntake_SubmitURLEnqueuesRootJobItem(t *testing.T) {
	in, mgr := newTestIntake()
	id, err := in.SubmitURL(context.Background(), "https://example.com/jobs/1?utm_source=hn")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, mgr.submitted, 1)
	assert.Equal(t, models.ItemTypeJob, mgr.submitted[0].Type)
	assert.Equal(t, models.SourceUserSubmission, mgr.submitted[0].Source)
	assert.NotEmpty(t, mgr.submitted[0].IdempotencyKey)
}

func TestIntake_SubmitURLRejectsInvalidURL(t *testing.T) {
	in, _ := newTestIntake()
	_, err := in.SubmitURL(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestIntake_SubmitCompanyEnqueuesRootCompanyItem(t *testing.T) {
	in, mgr := newTestIntake()
	id, err := in.SubmitCompany(context.Background(), "Acme Inc")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, mgr.submitted, 1)
	assert.Equal(t, models.ItemTypeCompany, mgr.submitted[0].Type)
}

func TestIntake_SubmitSourceRequiresPersistedSource(t *testing.T) {
	in, _ := newTestIntake()
	_, err := in.SubmitSource(context.Background(), &models.JobSource{})
	assert.Error(t, err)
}

func TestIntake_SubmitSourceEnqueuesScrapeSourceItem(t *testing.T) {
	in, mgr := newTestIntake()
	source := models.NewJobSource("Acme careers", "https://example.com/jobs", models.SourceKindHTML, 3600)

	id, err := in.SubmitSource(context.Background(), source)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, mgr.submitted, 1)
	assert.Equal(t, models.ItemTypeScrapeSource, mgr.submitted[0].Type)
}
