// Package store defines the persistence contract for answer records. Adapters
// live in sub-packages (memory, sqlstore, pgstore); the core only depends on
// the Store interface and is handed a constructed instance.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/goliatone/go-formcloud/pkg/answers"
)

// Store persists answer records. Query returns the records of one form sorted
// by CreatedAt, newest first.
type Store interface {
	Insert(ctx context.Context, record answers.AnswerRecord) error
	Replace(ctx context.Context, record answers.AnswerRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (answers.AnswerRecord, error)
	Query(ctx context.Context, formID string) ([]answers.AnswerRecord, error)
	Close() error
}

var (
	// ErrStore matches every *StoreError via errors.Is.
	ErrStore = errors.New("store: operation failed")
	// ErrNotFound is wrapped when a record id does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrDuplicate is wrapped when inserting an id that already exists.
	ErrDuplicate = errors.New("store: duplicate record")
)

// RetryMessage is what users see when persistence fails.
const RetryMessage = "Error, try later"

// StoreError wraps adapter failures. It is transient from the user's point of
// view: nothing is retried automatically.
type StoreError struct {
	Op       string
	RecordID string
	Err      error
}

func (e *StoreError) Error() string {
	if e.RecordID != "" {
		return fmt.Sprintf("store: %s %s: %v", e.Op, e.RecordID, e.Err)
	}
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStore) match any StoreError.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

// UserMessage returns the retry message.
func (e *StoreError) UserMessage() string {
	return RetryMessage
}

// Wrap returns nil for a nil err, otherwise a *StoreError. Existing
// StoreErrors are returned unchanged.
func Wrap(op string, id uuid.UUID, err error) error {
	if err == nil {
		return nil
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}
	recordID := ""
	if id != uuid.Nil {
		recordID = id.String()
	}
	return &StoreError{Op: op, RecordID: recordID, Err: err}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// SortNewestFirst orders records by CreatedAt descending. Ties are broken by
// id so results are deterministic.
func SortNewestFirst(records []answers.AnswerRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
}
