// Package pgstore is a Store backed by PostgreSQL through a pgx connection
// pool.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/store"
)

const uniqueViolation = "23505"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS form_submissions (
	id           uuid PRIMARY KEY,
	form_id      text NOT NULL,
	field_values jsonb NOT NULL DEFAULT '{}'::jsonb,
	created_at   timestamptz NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_form_submissions_form_created
	ON form_submissions (form_id, created_at DESC);
`

// Store persists records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New wraps an existing pool. Call EnsureSchema before first use.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Connect opens a pool for dsn and creates the table when missing.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	s := New(pool)
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the form_submissions table and its index.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("pgstore: ensure schema: %w", err)
	}
	return nil
}

// Insert creates a row for record.
func (s *Store) Insert(ctx context.Context, record answers.AnswerRecord) error {
	payload, err := json.Marshal(nonNil(record.Values))
	if err != nil {
		return store.Wrap("insert", record.ID, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO form_submissions (id, form_id, field_values, created_at) VALUES ($1, $2, $3, $4)`,
		record.ID.String(), record.FormID, string(payload), record.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			err = fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		return store.Wrap("insert", record.ID, err)
	}
	return nil
}

// Replace overwrites the answers of an existing record.
func (s *Store) Replace(ctx context.Context, record answers.AnswerRecord) error {
	payload, err := json.Marshal(nonNil(record.Values))
	if err != nil {
		return store.Wrap("replace", record.ID, err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE form_submissions SET field_values = $2 WHERE id = $1`,
		record.ID.String(), string(payload))
	if err != nil {
		return store.Wrap("replace", record.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.Wrap("replace", record.ID, store.ErrNotFound)
	}
	return nil
}

// Delete removes the row with id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM form_submissions WHERE id = $1`, id.String())
	if err != nil {
		return store.Wrap("delete", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.Wrap("delete", id, store.ErrNotFound)
	}
	return nil
}

// Get loads one record.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (answers.AnswerRecord, error) {
	row := s.pool.QueryRow(ctx, `
SELECT id::text, form_id, field_values, created_at
FROM form_submissions
WHERE id = $1
`, id.String())
	record, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return answers.AnswerRecord{}, store.Wrap("get", id, store.ErrNotFound)
	}
	if err != nil {
		return answers.AnswerRecord{}, store.Wrap("get", id, err)
	}
	return record, nil
}

// Query returns the records of formID, newest first.
func (s *Store) Query(ctx context.Context, formID string) ([]answers.AnswerRecord, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id::text, form_id, field_values, created_at
FROM form_submissions
WHERE form_id = $1
ORDER BY created_at DESC
`, formID)
	if err != nil {
		return nil, store.Wrap("query", uuid.Nil, err)
	}
	defer rows.Close()

	var out []answers.AnswerRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, store.Wrap("query", uuid.Nil, err)
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Wrap("query", uuid.Nil, err)
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func scanRecord(row pgx.Row) (answers.AnswerRecord, error) {
	var (
		rawID     string
		formID    string
		payload   []byte
		createdAt time.Time
	)
	if err := row.Scan(&rawID, &formID, &payload, &createdAt); err != nil {
		return answers.AnswerRecord{}, err
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return answers.AnswerRecord{}, fmt.Errorf("pgstore: invalid id %q: %w", rawID, err)
	}
	values := map[string]string{}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &values); err != nil {
			return answers.AnswerRecord{}, fmt.Errorf("pgstore: decode values: %w", err)
		}
	}
	return answers.AnswerRecord{ID: id, FormID: formID, Values: values, CreatedAt: createdAt}, nil
}

func nonNil(values map[string]string) map[string]string {
	if values == nil {
		return map[string]string{}
	}
	return values
}

// Truncate deletes every row. Intended for tests.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE form_submissions`); err != nil {
		return fmt.Errorf("pgstore: truncate: %w", err)
	}
	return nil
}
