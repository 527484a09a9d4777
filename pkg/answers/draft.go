package answers

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

// Draft is the in-progress answer state for one form. Only fields that were
// touched end up in the record; a toggled single checkbox always holds "true"
// or "false".
type Draft struct {
	schema model.FormSchema
	values map[string]string
}

// NewDraft returns an empty draft for schema.
func NewDraft(schema model.FormSchema) *Draft {
	return &Draft{schema: schema, values: make(map[string]string)}
}

// EditDraft seeds a draft from a stored record so it can be revised. Legacy
// uuid keys are migrated to field names; keys matching no field are dropped.
func EditDraft(schema model.FormSchema, record AnswerRecord) *Draft {
	d := NewDraft(schema)
	for key, value := range model.MigrateLegacyKeys(schema, record.Values) {
		if field, ok := schema.FieldByKey(key); ok && field.Type.IsInput() {
			d.values[key] = value
		}
	}
	return d
}

// Schema returns the form being filled.
func (d *Draft) Schema() model.FormSchema {
	return d.schema
}

func (d *Draft) field(key string) (model.Field, error) {
	field, ok := d.schema.FieldByKey(key)
	if !ok {
		return model.Field{}, fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if !field.Type.IsInput() {
		return model.Field{}, fmt.Errorf("%w: %q", ErrDisplayOnly, key)
	}
	return field, nil
}

// Set stores the value for key. A single checkbox takes "true" or "false"; a
// checkbox with options takes comma separated option values, kept once each
// in first-seen order.
func (d *Draft) Set(key, value string) error {
	field, err := d.field(key)
	if err != nil {
		return err
	}
	switch {
	case field.IsToggle():
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %q on %q wants true or false", ErrInvalidValue, value, key)
		}
	case field.Type == model.FieldTypeCheckbox:
		tokens, err := optionTokens(field, value)
		if err != nil {
			return err
		}
		value = JoinTokens(tokens)
	}
	d.values[key] = value
	return nil
}

// Unset forgets the answer for key.
func (d *Draft) Unset(key string) {
	delete(d.values, key)
}

func optionTokens(field model.Field, value string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, token := range SplitTokens(value) {
		if !field.HasOption(token) {
			return nil, fmt.Errorf("%w: %q on %q", ErrUnknownOption, token, field.Key())
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		out = append(out, token)
	}
	return out, nil
}

// SetChecked sets a single checkbox.
func (d *Draft) SetChecked(key string, checked bool) error {
	field, err := d.field(key)
	if err != nil {
		return err
	}
	if !field.IsToggle() {
		return fmt.Errorf("%w: %q is %s", ErrNotCheckbox, key, field.TypeName())
	}
	d.values[key] = fmt.Sprintf("%t", checked)
	return nil
}

// ToggleOption flips option membership on a checkbox with options: a selected
// value is removed, otherwise it is appended after the current selection.
func (d *Draft) ToggleOption(key, option string) error {
	field, err := d.field(key)
	if err != nil {
		return err
	}
	if field.Type != model.FieldTypeCheckbox || !field.HasOptions() {
		return fmt.Errorf("%w: %q has no options", ErrNotCheckbox, key)
	}
	if !field.HasOption(option) {
		return fmt.Errorf("%w: %q on %q", ErrUnknownOption, option, key)
	}

	selected := SplitTokens(d.values[key])
	next := selected[:0:0]
	removed := false
	for _, token := range selected {
		if token == option {
			removed = true
			continue
		}
		next = append(next, token)
	}
	if !removed {
		next = append(next, option)
	}
	d.values[key] = JoinTokens(next)
	return nil
}

// Selected returns the selected option values of a checkbox, in selection
// order.
func (d *Draft) Selected(key string) []string {
	return SplitTokens(d.values[key])
}

// Value returns the current raw value for key.
func (d *Draft) Value(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Values returns a copy of the touched answers.
func (d *Draft) Values() map[string]string {
	return cloneValues(d.values)
}

// Complete re-runs required-field validation against the current state.
func (d *Draft) Complete() bool {
	return validation.IsComplete(d.schema, d.values)
}

// Missing lists unanswered required keys.
func (d *Draft) Missing() []string {
	return validation.Missing(d.schema, d.values)
}

// Reset clears every answer.
func (d *Draft) Reset() {
	d.values = make(map[string]string)
}

// Build validates the draft and produces a record stamped with now. An
// incomplete draft returns a *validation.ValidationFailure.
func (d *Draft) Build(now time.Time) (AnswerRecord, error) {
	if err := validation.Check(d.schema, d.values); err != nil {
		return AnswerRecord{}, err
	}
	return NewRecord(d.schema.ID(), d.values, now), nil
}

// SplitTokens splits a stored multi-option value. Empty tokens are dropped.
func SplitTokens(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinTokens is the inverse of SplitTokens.
func JoinTokens(tokens []string) string {
	return strings.Join(tokens, ",")
}
