package badger

import (
	"context"
	"io/ioutil"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jobpipeline/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestQueueStorage(t *testing.T) (*QueueStorage, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "queue-storage-test")
	require.NoError(t, err)

	opts := badgerhold.DefaultOptions
	opts.Dir = dir
	opts.ValueDir = dir
	opts.Logger = nil

	store, err := badgerhold.Open(opts)
	require.NoError(t, err)

	db := &BadgerDB{store: store}
	qs := NewQueueStorage(db, arbor.NewLogger()).(*QueueStorage)

	cleanup := func() {
		store.Close()
		os.RemoveAll(dir)
	}
	return qs, cleanup
}

func TestQueueStorage_EnqueueAndGet(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/1", nil, models.SourceUserSubmission, 5)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	got, err := qs.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.URL, got.URL)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestQueueStorage_ClaimNextIsExclusive(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/2", nil, models.SourceUserSubmission, 5)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	now := time.Now()
	claimed, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-1", now)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, models.StatusClaimed, claimed.Status)

	again, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-2", now)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestQueueStorage_ClaimNextIncrementsAttempts(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/attempts", nil, models.SourceUserSubmission, 5)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	claimed, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-1", time.Now())
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, 1, claimed.Attempts)

	got, err := qs.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts, "attempts increment must persist, not just the claimed return value")
}

func TestQueueStorage_ClaimNextRespectsNextAttemptAt(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/3", nil, models.SourceUserSubmission, 5)
	item.NextAttemptAt = time.Now().Add(1 * time.Hour)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	claimed, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, claimed)
}

func TestQueueStorage_ListStale(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/4", nil, models.SourceUserSubmission, 5)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	claimed, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-1", time.Now().Add(-1*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, claimed)

	stale, err := qs.ListStale(context.Background(), time.Now().Add(-30*time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, claimed.ID, stale[0].ID)
}

func TestQueueStorage_RequeueOrphaned(t *testing.T) {
	qs, cleanup := newTestQueueStorage(t)
	defer cleanup()

	item := models.NewRootQueueItem(models.ItemTypeJob, models.SubTypeFetch, "https://example.com/job/5", nil, models.SourceUserSubmission, 5)
	require.NoError(t, qs.Enqueue(context.Background(), item))

	_, err := qs.ClaimNext(context.Background(), []models.ItemType{models.ItemTypeJob}, "worker-1", time.Now())
	require.NoError(t, err)

	n, err := qs.RequeueOrphaned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := qs.Get(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.ClaimedBy)
}
