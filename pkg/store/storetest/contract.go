// Package storetest holds the behaviour suite shared by Store adapters.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/store"
)

// RunContract exercises the Store behaviour every adapter must honour. newStore
// must return an empty store.
func RunContract(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 8, 10, 9, 0, 0, 0, time.UTC)

	record := func(form string, offset time.Duration, values map[string]string) answers.AnswerRecord {
		return answers.AnswerRecord{
			ID:        uuid.New(),
			FormID:    form,
			Values:    values,
			CreatedAt: base.Add(offset),
		}
	}

	t.Run("query sorts newest first and filters by form", func(t *testing.T) {
		s := newStore(t)
		oldest := record("All Fields", 0, map[string]string{"first_name": "Ada"})
		newest := record("All Fields", 2*time.Hour, map[string]string{"first_name": "Grace"})
		middle := record("All Fields", time.Hour, map[string]string{"first_name": "Edsger"})
		other := record("Contact", 3*time.Hour, map[string]string{"name": "Alan"})
		for _, r := range []answers.AnswerRecord{oldest, newest, middle, other} {
			require.NoError(t, s.Insert(ctx, r))
		}

		got, err := s.Query(ctx, "All Fields")
		require.NoError(t, err)
		require.Len(t, got, 3)
		require.Equal(t, []uuid.UUID{newest.ID, middle.ID, oldest.ID}, ids(got))
		require.Equal(t, "Grace", got[0].Values["first_name"])

		empty, err := s.Query(ctx, "Missing")
		require.NoError(t, err)
		require.Empty(t, empty)
	})

	t.Run("delete removes the record from query", func(t *testing.T) {
		s := newStore(t)
		keep := record("All Fields", 0, map[string]string{"a": "1"})
		drop := record("All Fields", time.Minute, map[string]string{"a": "2"})
		require.NoError(t, s.Insert(ctx, keep))
		require.NoError(t, s.Insert(ctx, drop))

		require.NoError(t, s.Delete(ctx, drop.ID))

		got, err := s.Query(ctx, "All Fields")
		require.NoError(t, err)
		require.Equal(t, []uuid.UUID{keep.ID}, ids(got))

		_, err = s.Get(ctx, drop.ID)
		require.True(t, store.IsNotFound(err), "expected not found, got %v", err)

		err = s.Delete(ctx, drop.ID)
		require.True(t, store.IsNotFound(err), "expected not found on second delete, got %v", err)
		require.True(t, errors.Is(err, store.ErrStore))
	})

	t.Run("replace keeps id and created at", func(t *testing.T) {
		s := newStore(t)
		original := record("All Fields", 0, map[string]string{"a": "1", "b": "2"})
		require.NoError(t, s.Insert(ctx, original))

		updated := original.Clone()
		updated.Values = map[string]string{"a": "changed"}
		updated.CreatedAt = base.Add(48 * time.Hour)
		require.NoError(t, s.Replace(ctx, updated))

		got, err := s.Get(ctx, original.ID)
		require.NoError(t, err)
		require.Equal(t, map[string]string{"a": "changed"}, got.Values)
		require.True(t, got.CreatedAt.Equal(original.CreatedAt), "created at must not change")

		missing := record("All Fields", 0, nil)
		require.True(t, store.IsNotFound(s.Replace(ctx, missing)))
	})

	t.Run("insert rejects duplicate ids", func(t *testing.T) {
		s := newStore(t)
		r := record("All Fields", 0, map[string]string{})
		require.NoError(t, s.Insert(ctx, r))
		err := s.Insert(ctx, r)
		require.Error(t, err)
		require.True(t, errors.Is(err, store.ErrStore))
	})

	t.Run("stored values are isolated from callers", func(t *testing.T) {
		s := newStore(t)
		values := map[string]string{"a": "1"}
		r := record("All Fields", 0, values)
		require.NoError(t, s.Insert(ctx, r))
		values["a"] = "mutated"

		got, err := s.Get(ctx, r.ID)
		require.NoError(t, err)
		require.Equal(t, "1", got.Values["a"])
	})
}

func ids(records []answers.AnswerRecord) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
