package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
)

func TestCreateAssignsIdentityAndTimestamp(t *testing.T) {
	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	store := New().WithClock(func() time.Time { return at })

	doc, err := store.Create(context.Background(), "pickups", map[string]any{"status": "pending"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if doc.ID == "" {
		t.Fatal("expected generated id")
	}
	if !doc.CreatedAt.Equal(at) {
		t.Fatalf("expected createdAt %v, got %v", at, doc.CreatedAt)
	}

	got, err := store.Get(context.Background(), "pickups", doc.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Fields["status"] != "pending" {
		t.Fatalf("unexpected fields %v", got.Fields)
	}
}

func TestGetMissReturnsNotFound(t *testing.T) {
	store := New()
	if _, err := store.Get(context.Background(), "pickups", "nope"); err != docstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateMergesPartialFields(t *testing.T) {
	store := New()
	doc, _ := store.Create(context.Background(), "pickups", map[string]any{"status": "pending", "ownerId": "u1"})

	if err := store.Update(context.Background(), "pickups", doc.ID, map[string]any{"status": "in-progress"}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	got, _ := store.Get(context.Background(), "pickups", doc.ID)
	if got.Fields["status"] != "in-progress" {
		t.Fatalf("status not updated: %v", got.Fields)
	}
	if got.Fields["ownerId"] != "u1" {
		t.Fatal("untouched fields must survive a partial update")
	}
}

func TestUpdateMissingDocumentFails(t *testing.T) {
	store := New()
	if err := store.Update(context.Background(), "pickups", "nope", map[string]any{"status": "completed"}); err != docstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSetUpsertsByID(t *testing.T) {
	store := New()
	ctx := context.Background()

	if err := store.Set(ctx, "agencies", "agency-1", map[string]any{"name": "GreenFleet"}); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "agencies", "agency-1", map[string]any{"city": "Pune"}); err != nil {
		t.Fatalf("second set failed: %v", err)
	}
	got, err := store.Get(ctx, "agencies", "agency-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Fields["name"] != "GreenFleet" || got.Fields["city"] != "Pune" {
		t.Fatalf("expected merged fields, got %v", got.Fields)
	}
}

func TestDeleteRemovesDocument(t *testing.T) {
	store := New()
	ctx := context.Background()
	doc, _ := store.Create(ctx, "pickups", map[string]any{"status": "pending"})

	if err := store.Delete(ctx, "pickups", doc.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "pickups", doc.ID); err != docstore.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "pickups", doc.ID); err != docstore.ErrNotFound {
		t.Fatalf("double delete should miss, got %v", err)
	}
}

func TestQueryFiltersAndOrders(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store := New().WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	ctx := context.Background()

	store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "pending"})
	second, _ := store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "completed"})
	store.Create(ctx, "pickups", map[string]any{"ownerId": "u2", "status": "pending"})

	docs, err := store.Query(ctx, docstore.Query{
		Collection: "pickups",
		Filters:    []docstore.Filter{{Field: "ownerId", Value: "u1"}},
	})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].ID != second.ID {
		t.Fatal("expected newest document first")
	}
}

func TestSubscribeDeliversInitialSnapshot(t *testing.T) {
	store := New()
	ctx := context.Background()
	store.Create(ctx, "pickups", map[string]any{"ownerId": "u1"})

	var snapshots [][]docstore.Document
	stop, err := store.Subscribe(ctx, docstore.Query{Collection: "pickups"}, func(docs []docstore.Document) {
		snapshots = append(snapshots, docs)
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer stop()

	if len(snapshots) != 1 || len(snapshots[0]) != 1 {
		t.Fatalf("expected one initial snapshot with one doc, got %v", snapshots)
	}
}

func TestSubscribePushesFullSnapshotsOnChange(t *testing.T) {
	store := New()
	ctx := context.Background()

	var snapshots [][]docstore.Document
	stop, _ := store.Subscribe(ctx, docstore.Query{
		Collection: "pickups",
		Filters:    []docstore.Filter{{Field: "ownerId", Value: "u1"}},
	}, func(docs []docstore.Document) {
		snapshots = append(snapshots, docs)
	})
	defer stop()

	doc, _ := store.Create(ctx, "pickups", map[string]any{"ownerId": "u1", "status": "pending"})
	store.Create(ctx, "pickups", map[string]any{"ownerId": "u2", "status": "pending"})
	store.Delete(ctx, "pickups", doc.ID)

	// initial empty + create + other-owner create (still pushed, same
	// collection) + delete
	if len(snapshots) != 4 {
		t.Fatalf("expected 4 snapshots, got %d", len(snapshots))
	}
	if len(snapshots[1]) != 1 {
		t.Fatalf("expected snapshot with the owned doc, got %d docs", len(snapshots[1]))
	}
	if len(snapshots[3]) != 0 {
		t.Fatalf("expected empty final snapshot, got %d docs", len(snapshots[3]))
	}
}

func TestNoDeliveryAfterUnsubscribe(t *testing.T) {
	store := New()
	ctx := context.Background()

	calls := 0
	stop, _ := store.Subscribe(ctx, docstore.Query{Collection: "pickups"}, func([]docstore.Document) {
		calls++
	})
	if calls != 1 {
		t.Fatalf("expected initial delivery, got %d", calls)
	}

	stop()
	store.Create(ctx, "pickups", map[string]any{"status": "pending"})
	if calls != 1 {
		t.Fatalf("callback fired after unsubscribe: %d calls", calls)
	}
	stop()
}

func TestIndependentSubscriptionScopes(t *testing.T) {
	store := New()
	ctx := context.Background()

	var owned, all int
	stopOwned, _ := store.Subscribe(ctx, docstore.Query{
		Collection: "pickups",
		Filters:    []docstore.Filter{{Field: "ownerId", Value: "u1"}},
	}, func(docs []docstore.Document) { owned = len(docs) })
	defer stopOwned()
	stopAll, _ := store.Subscribe(ctx, docstore.Query{Collection: "pickups"}, func(docs []docstore.Document) { all = len(docs) })
	defer stopAll()

	store.Create(ctx, "pickups", map[string]any{"ownerId": "u1"})
	store.Create(ctx, "pickups", map[string]any{"ownerId": "u2"})

	if owned != 1 {
		t.Fatalf("owned scope expected 1 doc, got %d", owned)
	}
	if all != 2 {
		t.Fatalf("unscoped subscription expected 2 docs, got %d", all)
	}
}
