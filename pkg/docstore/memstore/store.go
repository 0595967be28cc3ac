// Package memstore is an in-memory docstore backend. It is the development
// and test backend; snapshot delivery is synchronous with the mutating call,
// which makes subscription tests deterministic.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
)

// Store keeps documents per collection behind a single mutex.
type Store struct {
	mu      sync.Mutex
	seq     int64
	data    map[string]map[string]docstore.Document
	subs    map[int]*subscription
	nextSub int
	now     func() time.Time
}

type subscription struct {
	query docstore.Query
	fn    docstore.SnapshotFunc

	mu     sync.Mutex
	closed bool
}

func (s *subscription) deliver(docs []docstore.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(docs)
}

func (s *subscription) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// New returns an empty store.
func New() *Store {
	return &Store{
		data: make(map[string]map[string]docstore.Document),
		subs: make(map[int]*subscription),
		now:  time.Now,
	}
}

// WithClock overrides the creation timestamp source. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Create inserts a document with a generated id and current timestamp.
func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	s.mu.Lock()
	s.seq++
	doc := docstore.Document{
		ID:        uuid.NewString(),
		Seq:       s.seq,
		CreatedAt: s.now().UTC(),
		Fields:    copyFields(fields),
	}
	coll := s.collection(collection)
	coll[doc.ID] = doc
	subs := s.snapshotTargets(collection)
	s.mu.Unlock()

	s.notify(subs)
	return doc.Clone(), nil
}

// Get returns the document or docstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.collection(collection)[id]
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return doc.Clone(), nil
}

// Set merge-upserts the document with the given id.
func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	coll := s.collection(collection)
	doc, ok := coll[id]
	if !ok {
		s.seq++
		doc = docstore.Document{
			ID:        id,
			Seq:       s.seq,
			CreatedAt: s.now().UTC(),
			Fields:    make(map[string]any),
		}
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	coll[id] = doc
	subs := s.snapshotTargets(collection)
	s.mu.Unlock()

	s.notify(subs)
	return nil
}

// Update merges partial fields into an existing document.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	s.mu.Lock()
	coll := s.collection(collection)
	doc, ok := coll[id]
	if !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	for k, v := range fields {
		doc.Fields[k] = v
	}
	coll[id] = doc
	subs := s.snapshotTargets(collection)
	s.mu.Unlock()

	s.notify(subs)
	return nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	coll := s.collection(collection)
	if _, ok := coll[id]; !ok {
		s.mu.Unlock()
		return docstore.ErrNotFound
	}
	delete(coll, id)
	subs := s.snapshotTargets(collection)
	s.mu.Unlock()

	s.notify(subs)
	return nil
}

// Query returns matching documents newest first.
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectLocked(q), nil
}

// Subscribe registers the callback and delivers the initial snapshot before
// returning. Later snapshots are delivered synchronously from the mutating
// call. The stop function guarantees no invocation after it returns.
func (s *Store) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotFunc) (func(), error) {
	sub := &subscription{query: q, fn: fn}

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	initial := s.selectLocked(q)
	s.mu.Unlock()

	sub.deliver(initial)

	stop := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.close()
	}
	return stop, nil
}

type pendingSnapshot struct {
	sub  *subscription
	docs []docstore.Document
}

// snapshotTargets computes, under the store lock, the snapshot each live
// subscription on the collection should receive.
func (s *Store) snapshotTargets(collection string) []pendingSnapshot {
	var out []pendingSnapshot
	for _, sub := range s.subs {
		if sub.query.Collection != collection {
			continue
		}
		out = append(out, pendingSnapshot{sub: sub, docs: s.selectLocked(sub.query)})
	}
	return out
}

func (s *Store) notify(targets []pendingSnapshot) {
	for _, t := range targets {
		t.sub.deliver(t.docs)
	}
}

func (s *Store) selectLocked(q docstore.Query) []docstore.Document {
	coll := s.data[q.Collection]
	docs := make([]docstore.Document, 0, len(coll))
	for _, doc := range coll {
		docs = append(docs, doc)
	}
	return docstore.Select(docs, q)
}

func (s *Store) collection(name string) map[string]docstore.Document {
	coll, ok := s.data[name]
	if !ok {
		coll = make(map[string]docstore.Document)
		s.data[name] = coll
	}
	return coll
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
