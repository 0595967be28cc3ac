package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"gorm.io/gorm"
)

type documentRow struct {
	Seq        int64     `gorm:"primaryKey;autoIncrement"`
	Collection string    `gorm:"size:64;uniqueIndex:idx_documents_coll_doc;not null"`
	DocID      string    `gorm:"size:64;uniqueIndex:idx_documents_coll_doc;not null"`
	Fields     string    `gorm:"type:text;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (documentRow) TableName() string { return "documents" }

// Store implements docstore.Store on a single documents table. Every write
// publishes the collection name to the feed; subscriptions re-run their query
// per signal and push the resulting snapshot.
type Store struct {
	db       *gorm.DB
	feed     *docstore.Feed
	notifier docstore.Notifier
	logg     *logger.Logger
	now      func() time.Time
}

// New wires the store to an open connection and a change feed. Writes notify
// the feed directly; WithNotifier reroutes them, e.g. through the redisfeed
// bridge so other instances see them too.
func New(db *gorm.DB, feed *docstore.Feed, logg *logger.Logger) *Store {
	return &Store{db: db, feed: feed, notifier: feed, logg: logg, now: time.Now}
}

// WithNotifier redirects write-side change signals.
func (s *Store) WithNotifier(n docstore.Notifier) *Store {
	s.notifier = n
	return s
}

// WithClock overrides the creation timestamp source. Test hook.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Ping verifies the datasource is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// AutoMigrate creates the documents table.
func (s *Store) AutoMigrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&documentRow{})
}

func (s *Store) Create(ctx context.Context, collection string, fields map[string]any) (docstore.Document, error) {
	payload, err := json.Marshal(fields)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("encoding document fields: %w", err)
	}

	row := documentRow{
		Collection: collection,
		DocID:      uuid.NewString(),
		Fields:     string(payload),
		CreatedAt:  s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return docstore.Document{}, fmt.Errorf("inserting document: %w", err)
	}

	s.notifier.Publish(collection)
	return s.toDocument(row)
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("loading document: %w", err)
	}
	return s.toDocument(row)
}

func (s *Store) Set(ctx context.Context, collection, id string, fields map[string]any) error {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		payload, merr := json.Marshal(fields)
		if merr != nil {
			return fmt.Errorf("encoding document fields: %w", merr)
		}
		row = documentRow{
			Collection: collection,
			DocID:      id,
			Fields:     string(payload),
			CreatedAt:  s.now().UTC(),
		}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return fmt.Errorf("inserting document: %w", err)
		}
	case err != nil:
		return fmt.Errorf("loading document: %w", err)
	default:
		if err := s.mergeRow(ctx, &row, fields); err != nil {
			return err
		}
	}

	s.notifier.Publish(collection)
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	var row documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return docstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}

	if err := s.mergeRow(ctx, &row, fields); err != nil {
		return err
	}
	s.notifier.Publish(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&documentRow{})
	if res.Error != nil {
		return fmt.Errorf("deleting document: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return docstore.ErrNotFound
	}

	s.notifier.Publish(collection)
	return nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	var rows []documentRow
	err := s.db.WithContext(ctx).
		Where("collection = ?", q.Collection).
		Order("created_at DESC, seq DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}

	// Equality filters apply to JSON payload fields, so they run here
	// rather than in SQL.
	docs := make([]docstore.Document, 0, len(rows))
	for _, row := range rows {
		doc, derr := s.toDocument(row)
		if derr != nil {
			return nil, derr
		}
		if docstore.Matches(doc, q.Filters) {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// Subscribe delivers the initial snapshot synchronously, then re-queries on
// every feed signal for the collection. Stop blocks until the pump goroutine
// has exited, after which no snapshot is delivered.
func (s *Store) Subscribe(ctx context.Context, q docstore.Query, fn docstore.SnapshotFunc) (func(), error) {
	initial, err := s.Query(ctx, q)
	if err != nil {
		return nil, err
	}

	var deliverMu sync.Mutex
	closed := false
	deliver := func(docs []docstore.Document) {
		deliverMu.Lock()
		defer deliverMu.Unlock()
		if closed {
			return
		}
		fn(docs)
	}
	deliver(initial)

	signals, release := s.feed.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for collection := range signals {
			if collection != q.Collection {
				continue
			}
			docs, qerr := s.Query(context.Background(), q)
			if qerr != nil {
				if s.logg != nil {
					s.logg.Error(context.Background(), "subscription re-query failed", qerr)
				}
				continue
			}
			deliver(docs)
		}
	}()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			release()
			<-done
			deliverMu.Lock()
			closed = true
			deliverMu.Unlock()
		})
	}
	return stop, nil
}

func (s *Store) mergeRow(ctx context.Context, row *documentRow, fields map[string]any) error {
	merged := make(map[string]any)
	if err := json.Unmarshal([]byte(row.Fields), &merged); err != nil {
		return fmt.Errorf("decoding document fields: %w", err)
	}
	for k, v := range fields {
		merged[k] = v
	}
	payload, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("encoding document fields: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&documentRow{}).
		Where("collection = ? AND doc_id = ?", row.Collection, row.DocID).
		Update("fields", string(payload)).Error
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	return nil
}

func (s *Store) toDocument(row documentRow) (docstore.Document, error) {
	fields := make(map[string]any)
	if err := json.Unmarshal([]byte(row.Fields), &fields); err != nil {
		return docstore.Document{}, fmt.Errorf("decoding document fields: %w", err)
	}
	return docstore.Document{
		ID:        row.DocID,
		Seq:       row.Seq,
		CreatedAt: row.CreatedAt,
		Fields:    fields,
	}, nil
}
