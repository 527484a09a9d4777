// Package memory is a Store backed by an in-process go-cache instance. It is
// the default for tests and for the CLI when no database is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/store"
)

// Store keeps records in memory for the lifetime of the process.
type Store struct {
	mu    sync.Mutex
	items *gocache.Cache
}

var _ store.Store = (*Store)(nil)

// New returns an empty store. Records never expire.
func New() *Store {
	return &Store{items: gocache.New(gocache.NoExpiration, 0)}
}

func key(id uuid.UUID) string {
	return id.String()
}

// Insert stores a copy of record.
func (s *Store) Insert(ctx context.Context, record answers.AnswerRecord) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap("insert", record.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.items.Add(key(record.ID), record.Clone(), gocache.NoExpiration); err != nil {
		return store.Wrap("insert", record.ID, fmt.Errorf("%w: %v", store.ErrDuplicate, err))
	}
	return nil
}

// Replace overwrites the values of an existing record; CreatedAt and FormID
// are preserved.
func (s *Store) Replace(ctx context.Context, record answers.AnswerRecord) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap("replace", record.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookup(record.ID)
	if !ok {
		return store.Wrap("replace", record.ID, store.ErrNotFound)
	}
	next := record.Clone()
	next.CreatedAt = current.CreatedAt
	next.FormID = current.FormID
	s.items.Set(key(record.ID), next, gocache.NoExpiration)
	return nil
}

// Delete removes the record with id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return store.Wrap("delete", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(id); !ok {
		return store.Wrap("delete", id, store.ErrNotFound)
	}
	s.items.Delete(key(id))
	return nil
}

// Get returns a copy of the record with id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (answers.AnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return answers.AnswerRecord{}, store.Wrap("get", id, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.lookup(id)
	if !ok {
		return answers.AnswerRecord{}, store.Wrap("get", id, store.ErrNotFound)
	}
	return record.Clone(), nil
}

// Query returns copies of the records of formID, newest first.
func (s *Store) Query(ctx context.Context, formID string) ([]answers.AnswerRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.Wrap("query", uuid.Nil, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []answers.AnswerRecord
	for _, item := range s.items.Items() {
		record, ok := item.Object.(answers.AnswerRecord)
		if !ok || record.FormID != formID {
			continue
		}
		out = append(out, record.Clone())
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return s.items.ItemCount()
}

// Close drops every record.
func (s *Store) Close() error {
	s.items.Flush()
	return nil
}

func (s *Store) lookup(id uuid.UUID) (answers.AnswerRecord, bool) {
	value, ok := s.items.Get(key(id))
	if !ok {
		return answers.AnswerRecord{}, false
	}
	record, ok := value.(answers.AnswerRecord)
	return record, ok
}
