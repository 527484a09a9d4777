package display

import (
	"strings"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/model"
)

const (
	// Blank is shown for fields without an answer.
	Blank = "Blank"
	// PasswordMask replaces password answers regardless of their length.
	PasswordMask = "••••••••"
	// DateLayout is the layout date answers are captured in (dd/MM/yyyy).
	DateLayout = "02/01/2006"
	// Yes and No render single checkbox answers.
	Yes = "Yes"
	No  = "No"
)

// FormatValue renders a raw stored value for field.
//
// Checkboxes with options map each token to its option label, dropping tokens
// that match no option, and join them with ", ". Radios and dropdowns show the
// option label or fall back to the raw value.
func FormatValue(field model.Field, value string) string {
	switch field.Type {
	case model.FieldTypeCheckbox:
		if !field.HasOptions() {
			if value == "true" {
				return Yes
			}
			return No
		}
		var labels []string
		for _, token := range answers.SplitTokens(value) {
			if label, ok := field.OptionLabel(token); ok {
				labels = append(labels, label)
			}
		}
		return strings.Join(labels, ", ")
	case model.FieldTypeRadio, model.FieldTypeDropdown:
		if label, ok := field.OptionLabel(value); ok {
			return label
		}
		return value
	case model.FieldTypePassword:
		if value == "" {
			return ""
		}
		return PasswordMask
	case model.FieldTypeFile:
		return FileName(value)
	case model.FieldTypeDescription:
		return PlainText(field.Label)
	case model.FieldTypeText, model.FieldTypeEmail, model.FieldTypeNumber,
		model.FieldTypeDate, model.FieldTypeTextarea, model.FieldTypeUnsupported:
		return value
	default:
		return value
	}
}

// Answer looks value up in values under the field key and formats it. Missing
// or empty answers render as Blank.
func Answer(field model.Field, values map[string]string) string {
	value, ok := values[field.Key()]
	if !ok || value == "" {
		return Blank
	}
	formatted := FormatValue(field, value)
	if formatted == "" {
		return Blank
	}
	return formatted
}
