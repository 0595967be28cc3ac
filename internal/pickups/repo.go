package pickups

import (
	"context"

	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/enums"
)

// SnapshotHandler receives the full current record set of a watched scope.
type SnapshotHandler func(records []PickupRecord)

// Repository maps pickup records onto the document store.
type Repository struct {
	store docstore.Store
}

// NewRepository wires the repository to a document store.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Create persists a new record and returns it with assigned id and timestamp.
func (r *Repository) Create(ctx context.Context, rec PickupRecord) (PickupRecord, error) {
	doc, err := r.store.Create(ctx, Collection, rec.fields())
	if err != nil {
		return PickupRecord{}, err
	}
	return fromDocument(doc), nil
}

// Find loads a single record; docstore.ErrNotFound on a miss.
func (r *Repository) Find(ctx context.Context, id string) (PickupRecord, error) {
	doc, err := r.store.Get(ctx, Collection, id)
	if err != nil {
		return PickupRecord{}, err
	}
	return fromDocument(doc), nil
}

// UpdateStatus writes only the status field.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status enums.PickupStatus) error {
	return r.store.Update(ctx, Collection, id, map[string]any{"status": string(status)})
}

// Delete removes the record.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, Collection, id)
}

// ListOwned returns the owner's records, newest first.
func (r *Repository) ListOwned(ctx context.Context, ownerID string) ([]PickupRecord, error) {
	docs, err := r.store.Query(ctx, ownedQuery(ownerID))
	if err != nil {
		return nil, err
	}
	return fromDocuments(docs), nil
}

// ListAll returns every record, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]PickupRecord, error) {
	docs, err := r.store.Query(ctx, docstore.Query{Collection: Collection})
	if err != nil {
		return nil, err
	}
	return fromDocuments(docs), nil
}

// WatchOwned subscribes to the owner's records. Every change pushes the full
// snapshot; the returned stop function ends delivery.
func (r *Repository) WatchOwned(ctx context.Context, ownerID string, fn SnapshotHandler) (func(), error) {
	return r.store.Subscribe(ctx, ownedQuery(ownerID), func(docs []docstore.Document) {
		fn(fromDocuments(docs))
	})
}

// WatchAll subscribes to the whole collection.
func (r *Repository) WatchAll(ctx context.Context, fn SnapshotHandler) (func(), error) {
	return r.store.Subscribe(ctx, docstore.Query{Collection: Collection}, func(docs []docstore.Document) {
		fn(fromDocuments(docs))
	})
}

func ownedQuery(ownerID string) docstore.Query {
	return docstore.Query{
		Collection: Collection,
		Filters:    []docstore.Filter{{Field: "ownerId", Value: ownerID}},
	}
}
