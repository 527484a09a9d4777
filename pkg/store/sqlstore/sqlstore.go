// Package sqlstore is a Store backed by gorm. Open uses the pure-Go SQLite
// driver so a single file holds every form's submissions; New accepts any
// gorm connection for other dialects.
package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/store"
)

// Store persists records in the form_submissions table.
type Store struct {
	db *gorm.DB
}

var _ store.Store = (*Store)(nil)

// Option configures Open.
type Option func(*gorm.Config)

// WithLogger routes gorm's SQL logging to l.
func WithLogger(l logger.Interface) Option {
	return func(cfg *gorm.Config) {
		cfg.Logger = l
	}
}

// Open connects to the SQLite database at path and migrates the schema. Use
// ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	if path == ":memory:" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlstore: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return New(db)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is nil")
	}
	if err := db.AutoMigrate(&submission{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert creates a row for record.
func (s *Store) Insert(ctx context.Context, record answers.AnswerRecord) error {
	row := fromRecord(record)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			err = fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		return store.Wrap("insert", record.ID, err)
	}
	return nil
}

// Replace overwrites the answers of an existing record.
func (s *Store) Replace(ctx context.Context, record answers.AnswerRecord) error {
	result := s.db.WithContext(ctx).
		Model(&submission{}).
		Where("id = ?", record.ID.String()).
		Update("field_values", toJSONMap(record.Values))
	if result.Error != nil {
		return store.Wrap("replace", record.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return store.Wrap("replace", record.ID, store.ErrNotFound)
	}
	return nil
}

// Delete removes the row with id.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&submission{}, "id = ?", id.String())
	if result.Error != nil {
		return store.Wrap("delete", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return store.Wrap("delete", id, store.ErrNotFound)
	}
	return nil
}

// Get loads one record.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (answers.AnswerRecord, error) {
	var row submission
	err := s.db.WithContext(ctx).First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return answers.AnswerRecord{}, store.Wrap("get", id, store.ErrNotFound)
	}
	if err != nil {
		return answers.AnswerRecord{}, store.Wrap("get", id, err)
	}
	record, err := row.record()
	if err != nil {
		return answers.AnswerRecord{}, store.Wrap("get", id, err)
	}
	return record, nil
}

// Query returns the records of formID, newest first.
func (s *Store) Query(ctx context.Context, formID string) ([]answers.AnswerRecord, error) {
	var rows []submission
	err := s.db.WithContext(ctx).
		Where("form_id = ?", formID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, store.Wrap("query", uuid.Nil, err)
	}

	out := make([]answers.AnswerRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.record()
		if err != nil {
			return nil, store.Wrap("query", uuid.Nil, err)
		}
		out = append(out, record)
	}
	store.SortNewestFirst(out)
	return out, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
