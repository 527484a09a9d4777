package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

// RequiredMessage is attached to each unanswered required field.
const RequiredMessage = "This field is required"

// FieldErrors maps a validation failure onto per-field messages. Keys that no
// longer match a field are dropped. Errors other than ValidationFailure yield
// nil.
func FieldErrors(form model.FormSchema, err error) map[string][]string {
	var failure *validation.ValidationFailure
	if !errors.As(err, &failure) {
		return nil
	}
	out := make(map[string][]string, len(failure.Missing))
	for _, key := range failure.Missing {
		if _, ok := form.FieldByKey(key); ok {
			out[key] = append(out[key], RequiredMessage)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// MergeErrors appends extra messages per key, trimming blanks and dropping
// duplicates while preserving order.
func MergeErrors(base map[string][]string, extra map[string][]string) map[string][]string {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(map[string][]string, len(base)+len(extra))
	for _, src := range []map[string][]string{base, extra} {
		for key, messages := range src {
			out[key] = normalizeMessages(append(out[key], messages...))
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
