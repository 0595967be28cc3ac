package gormstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/config"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, *docstore.Feed) {
	t.Helper()

	cfg := config.DBConfig{
		DSN:    "file::memory:?cache=shared&_pragma=busy_timeout(2000)",
		Driver: config.DBDriverSQLite,
	}
	conn, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(conn) })

	feed := docstore.NewFeed()
	store := New(conn, feed, nil)
	require.NoError(t, store.AutoMigrate(context.Background()))
	// Each test gets its own schema state.
	require.NoError(t, conn.Exec("DELETE FROM documents").Error)
	return store, feed
}

func TestCreateGetRoundTrip(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "pending"})
	require.NoError(t, err)
	require.NotEmpty(t, doc.ID)
	require.NotZero(t, doc.Seq)

	got, err := store.Get(ctx, "pickups", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Fields["status"])
	assert.Equal(t, "u1", got.Fields["ownerId"])
}

func TestGetMiss(t *testing.T) {
	store, _ := openTestStore(t)
	_, err := store.Get(context.Background(), "pickups", "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestUpdateMergesIntoPayload(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	doc, err := store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "pending"})
	require.NoError(t, err)
	require.NoError(t, store.Update(ctx, "pickups", doc.ID, map[string]any{"status": "in-progress"}))

	got, err := store.Get(ctx, "pickups", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "in-progress", got.Fields["status"])
	assert.Equal(t, "u1", got.Fields["ownerId"], "partial update must keep other fields")
}

func TestSetUpsertsAndMerges(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "agencies", "agency-1", map[string]any{"name": "GreenFleet"}))
	require.NoError(t, store.Set(ctx, "agencies", "agency-1", map[string]any{"city": "Pune"}))

	got, err := store.Get(ctx, "agencies", "agency-1")
	require.NoError(t, err)
	assert.Equal(t, "GreenFleet", got.Fields["name"])
	assert.Equal(t, "Pune", got.Fields["city"])
}

func TestDeleteMissReturnsNotFound(t *testing.T) {
	store, _ := openTestStore(t)
	err := store.Delete(context.Background(), "pickups", "nope")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestQueryFiltersOnPayloadFields(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "pickups", map[string]any{"ownerId": "u1"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "pickups", map[string]any{"ownerId": "u2"})
	require.NoError(t, err)
	_, err = store.Create(ctx, "pickups", map[string]any{"ownerId": "u1"})
	require.NoError(t, err)

	docs, err := store.Query(ctx, docstore.Query{
		Collection: "pickups",
		Filters:    []docstore.Filter{{Field: "ownerId", Value: "u1"}},
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Greater(t, docs[0].Seq, docs[1].Seq, "expected newest-first ordering")
}

func TestSubscribeSeesWritesThroughFeed(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	var latest []docstore.Document
	snapshots := make(chan int, 8)
	stop, err := store.Subscribe(ctx, docstore.Query{Collection: "pickups"}, func(docs []docstore.Document) {
		mu.Lock()
		latest = docs
		mu.Unlock()
		snapshots <- len(docs)
	})
	require.NoError(t, err)
	defer stop()

	require.Equal(t, 0, <-snapshots, "expected empty initial snapshot")

	_, err = store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "pending"})
	require.NoError(t, err)

	select {
	case n := <-snapshots:
		require.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after create")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "pending", latest[0].Fields["status"])
}

func TestStopBlocksFurtherDelivery(t *testing.T) {
	store, feed := openTestStore(t)
	ctx := context.Background()

	var mu sync.Mutex
	calls := 0
	stop, err := store.Subscribe(ctx, docstore.Query{Collection: "pickups"}, func([]docstore.Document) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)

	stop()
	feed.Publish("pickups")
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls, "expected only the initial snapshot")
}
