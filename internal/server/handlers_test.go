package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/app"
	"github.com/ternarybob/jobpipeline/internal/common"
	"github.com/ternarybob/jobpipeline/internal/intake"
	"github.com/ternarybob/jobpipeline/internal/interfaces"
	"github.com/ternarybob/jobpipeline/internal/models"
)

type fakeQueueManager struct {
	submitted []*models.QueueItem
}

func (m *fakeQueueManager) Submit(ctx context.Context, item *models.QueueItem) (bool, error) {
	m.submitted = append(m.submitted, item)
	return true, nil
}
func (m *fakeQueueManager) Claim(ctx context.Context, types []models.ItemType, workerID string) (*models.QueueItem, error) {
	return nil, nil
}
func (m *fakeQueueManager) Complete(ctx context.Context, item *models.QueueItem, outcome interfaces.Outcome) error {
	return nil
}
func (m *fakeQueueManager) Fail(ctx context.Context, item *models.QueueItem, err error) error { return nil }
func (m *fakeQueueManager) ReclaimStale(ctx context.Context) (int, error)                     { return 0, nil }

func newTestServer() (*Server, *fakeStorageManager, *fakeQueueManager) {
	storage := newFakeStorageManager()
	queueMgr := &fakeQueueManager{}
	logger := arbor.NewLogger()

	application := &app.App{
		Config:   &common.Config{},
		Logger:   logger,
		Storage:  storage,
		Registry: newFakeConfigRegistry(),
		Intake:   intake.New(queueMgr, logger),
	}
	return New(application), storage, queueMgr
}

func TestHandleIntakeURL_EnqueuesJobItem(t *testing.T) {
	srv, _, queueMgr := newTestServer()

	body, _ := json.Marshal(map[string]string{"url": "https://example.com/jobs/1"})
	req := httptest.NewRequest(http.MethodPost, "/api/intake/url", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.handleIntakeURL(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, queueMgr.submitted, 1)
	assert.Equal(t, models.ItemTypeJob, queueMgr.submitted[0].Type)
}

func TestHandleIntakeURL_RejectsBadURL(t *testing.T) {
	srv, _, _ := newTestServer()

	body, _ := json.Marshal(map[string]string{"url": "not a url"})
	req := httptest.NewRequest(http.MethodPost, "/api/intake/url", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	srv.handleIntakeURL(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleListJobListings_ReturnsStoredListings(t *testing.T) {
	srv, storage, _ := newTestServer()
	storage.listings.listings = []*models.JobListing{{ID: "jl_1", Title: "Engineer"}}

	req := httptest.NewRequest(http.MethodGet, "/api/job-listings", nil)
	rec := httptest.NewRecorder()

	srv.handleListJobListings(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out []models.JobListing
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "Engineer", out[0].Title)
}

func TestHandleGetStats_CountsByStatus(t *testing.T) {
	srv, storage, _ := newTestServer()
	storage.queue.items["q1"] = &models.QueueItem{ID: "q1", Status: models.StatusPending}
	storage.queue.items["q2"] = &models.QueueItem{ID: "q2", Status: models.StatusSuccess}

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()

	srv.handleGetStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		QueueItemsByStatus map[string]int `json:"queueItemsByStatus"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 1, out.QueueItemsByStatus["PENDING"])
	assert.Equal(t, 1, out.QueueItemsByStatus["SUCCESS"])
}

func TestHandleConfig_SetThenGet(t *testing.T) {
	srv, _, _ := newTestServer()

	setBody, _ := json.Marshal(map[string]string{"key": "match_policy.enrich_on_save", "value": "true"})
	setReq := httptest.NewRequest(http.MethodPut, "/api/config", bytes.NewReader(setBody))
	setRec := httptest.NewRecorder()
	srv.handleConfig(setRec, setReq)
	require.Equal(t, http.StatusOK, setRec.Code)

	getReq := httptest.NewRequest(http.MethodGet, "/api/config?key=match_policy.enrich_on_save", nil)
	getRec := httptest.NewRecorder()
	srv.handleConfig(getRec, getReq)

	assert.Equal(t, http.StatusOK, getRec.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(getRec.Body).Decode(&out))
	assert.Equal(t, "true", out["value"])
}

func TestHandleHealth_ReportsPendingCount(t *testing.T) {
	srv, storage, _ := newTestServer()
	storage.queue.items["q1"] = &models.QueueItem{ID: "q1", Status: models.StatusPending}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	srv.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "ok", out["status"])
	assert.EqualValues(t, 1, out["pending"])
}
