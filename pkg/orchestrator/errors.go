package orchestrator

import (
	"errors"

	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

var (
	// ErrFormNotFound is returned when a form id matches no catalog entry.
	ErrFormNotFound = errors.New("orchestrator: form not found")
	// ErrRecordNotFound is returned when a record does not exist or belongs to
	// another form.
	ErrRecordNotFound = errors.New("orchestrator: record not found")
)

// UserMessage returns the text to show for err, "" when err carries none.
func UserMessage(err error) string {
	var failure *validation.ValidationFailure
	if errors.As(err, &failure) {
		return failure.UserMessage()
	}
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return storeErr.UserMessage()
	}
	return ""
}
