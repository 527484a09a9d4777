package display

import (
	"strings"
	"time"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/model"
)

const (
	NoName  = "N/A"
	NoEmail = "No email provided"
	// SubmittedLayout formats record timestamps in lists.
	SubmittedLayout = DateLayout
)

// Summary is the card shown for a record in a list.
type Summary struct {
	ID          string `json:"id"`
	SubmittedOn string `json:"submittedOn"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
}

// Summarize builds the card for record: the title joins the first two text
// answers, the subtitle is the first email answer.
func Summarize(schema model.FormSchema, record answers.AnswerRecord, loc *time.Location) Summary {
	values := model.MigrateLegacyKeys(schema, record.Values)
	if loc == nil {
		loc = time.Local
	}

	title := NoName
	if names := schema.FirstOfType(model.FieldTypeText, 2); len(names) > 0 {
		first := strings.TrimSpace(values[names[0].Key()])
		if first == "" {
			first = NoName
		}
		last := ""
		if len(names) > 1 {
			last = strings.TrimSpace(values[names[1].Key()])
		}
		title = strings.TrimSpace(first + " " + last)
	}

	subtitle := NoEmail
	if emails := schema.FirstOfType(model.FieldTypeEmail, 1); len(emails) == 1 {
		if v := strings.TrimSpace(values[emails[0].Key()]); v != "" {
			subtitle = v
		}
	}

	return Summary{
		ID:          record.ID.String(),
		SubmittedOn: "Submitted on: " + record.CreatedAt.In(loc).Format(SubmittedLayout),
		Title:       title,
		Subtitle:    subtitle,
	}
}

// Entry is one row of a submission detail view.
type Entry struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Type    string    `json:"type"`
	Value   string    `json:"value"`
	Present bool      `json:"present"`
	File    *FileView `json:"file,omitempty"`
}

// Detail lists every answerable field of schema with its formatted answer.
// Description fields are skipped and answer keys matching no field are
// ignored.
func Detail(schema model.FormSchema, record answers.AnswerRecord) []Entry {
	values := model.MigrateLegacyKeys(schema, record.Values)
	out := make([]Entry, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		if field.Type == model.FieldTypeDescription {
			continue
		}
		raw, ok := values[field.Key()]
		entry := Entry{
			Key:     field.Key(),
			Label:   PlainText(field.Label),
			Type:    field.TypeName(),
			Value:   Answer(field, values),
			Present: ok && raw != "",
		}
		if field.Type == model.FieldTypeFile && entry.Present {
			view := File(raw)
			entry.File = &view
		}
		out = append(out, entry)
	}
	return out
}

// FieldCard is the schema inspection view of one field.
type FieldCard struct {
	Label    string `json:"label"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Required string `json:"required"`
	UUID     string `json:"uuid"`
}

// Card builds the inspection view of field.
func Card(field model.Field) FieldCard {
	required := No
	if field.Required {
		required = Yes
	}
	return FieldCard{
		Label:    PlainText(field.Label),
		Type:     field.TypeName(),
		Name:     field.Name,
		Required: required,
		UUID:     field.UUID,
	}
}
