// Package docstore defines the collection-oriented document store contract the
// portals are built against. The hosted provider owns storage, query
// execution, and change notification; backends in the subpackages implement
// the same contract for local deployments and tests.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a point lookup misses.
var ErrNotFound = errors.New("document not found")

// Document is one stored record. ID, Seq, and CreatedAt are assigned by the
// store on creation and never by clients.
type Document struct {
	ID        string
	Seq       int64
	CreatedAt time.Time
	Fields    map[string]any
}

// Filter is an equality predicate on a top-level string field.
type Filter struct {
	Field string
	Value string
}

// Query scopes a read or subscription to a collection. Filters compose by
// AND. Results are always ordered by creation time descending, newest first.
type Query struct {
	Collection string
	Filters    []Filter
}

// SnapshotFunc receives the full current result set of a subscribed query.
// Each invocation replaces prior state wholesale; consumers must not merge.
type SnapshotFunc func(docs []Document)

// Store is the document store surface used by the repositories.
type Store interface {
	// Create inserts a new document and returns it with store-assigned
	// ID and CreatedAt.
	Create(ctx context.Context, collection string, fields map[string]any) (Document, error)
	// Get performs a point lookup, returning ErrNotFound on a miss.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Set merge-upserts the document with the given id.
	Set(ctx context.Context, collection, id string, fields map[string]any) error
	// Update merges the partial fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// Delete removes the document. Deleting a missing document is an error.
	Delete(ctx context.Context, collection, id string) error
	// Query returns the matching documents, newest first.
	Query(ctx context.Context, q Query) ([]Document, error)
	// Subscribe delivers the full matching snapshot immediately and again
	// after every store-side change to the collection. The returned stop
	// function releases the subscription; no snapshot is delivered after it
	// returns.
	Subscribe(ctx context.Context, q Query, fn SnapshotFunc) (func(), error)
}

// Clone returns a deep-enough copy of the document for handing to consumers;
// field maps are copied so callbacks cannot alias store internals.
func (d Document) Clone() Document {
	fields := make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		fields[k] = v
	}
	return Document{ID: d.ID, Seq: d.Seq, CreatedAt: d.CreatedAt, Fields: fields}
}
