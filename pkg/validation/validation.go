// Package validation decides whether a set of answers satisfies a form's
// required fields.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/model"
)

// ErrIncomplete matches every *ValidationFailure via errors.Is.
var ErrIncomplete = errors.New("validation: required fields missing")

// Message is the user-facing text for an incomplete submission.
const Message = "Fill in all required fields (*)"

// ValidationFailure reports that required fields are unanswered. The result is
// aggregate: callers surface Message, Missing is kept for logs and APIs.
type ValidationFailure struct {
	Form    string
	Missing []string
}

func (e *ValidationFailure) Error() string {
	return fmt.Sprintf("validation: form %q missing %d required field(s): %s",
		e.Form, len(e.Missing), strings.Join(e.Missing, ", "))
}

// Is lets errors.Is(err, ErrIncomplete) match.
func (e *ValidationFailure) Is(target error) bool {
	return target == ErrIncomplete
}

// UserMessage returns the text shown to the person filling the form.
func (e *ValidationFailure) UserMessage() string {
	return Message
}

// Satisfied reports whether value answers a required field. A checkbox
// without options must be exactly "true"; anything else must be non-blank.
func Satisfied(field model.Field, value string, present bool) bool {
	if field.IsToggle() {
		return present && value == "true"
	}
	return present && strings.TrimSpace(value) != ""
}

// IsComplete reports whether every required field of schema is satisfied by
// answers. Answers are keyed by Field.Key; extra keys are ignored.
func IsComplete(schema model.FormSchema, answers map[string]string) bool {
	for _, field := range schema.Fields {
		if !field.Required {
			continue
		}
		value, ok := answers[field.Key()]
		if !Satisfied(field, value, ok) {
			return false
		}
	}
	return true
}

// Missing lists the keys of required fields that are not satisfied, in field
// order.
func Missing(schema model.FormSchema, answers map[string]string) []string {
	var out []string
	for _, field := range schema.Fields {
		if !field.Required {
			continue
		}
		value, ok := answers[field.Key()]
		if !Satisfied(field, value, ok) {
			out = append(out, field.Key())
		}
	}
	return out
}

// Check returns a *ValidationFailure when answers are incomplete.
func Check(schema model.FormSchema, answers map[string]string) error {
	missing := Missing(schema, answers)
	if len(missing) == 0 {
		return nil
	}
	return &ValidationFailure{Form: schema.ID(), Missing: missing}
}
