package vanilla

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
	theme "github.com/goliatone/go-theme"
)

// Texts of the entry list empty state and the delete confirmation.
const (
	EmptyTitle    = "No Forms"
	EmptyBody     = "Tap on '+' to add the first entry for this form."
	ConfirmDelete = "Are you sure you want to delete this form?"
)

// PageOptions configure the entry list and entry detail pages.
type PageOptions struct {
	// NewURL is the "+" link of the entry list.
	NewURL string
	// EntryURL builds the link of one record; nil disables links.
	EntryURL func(recordID string) string
	// DeleteURL is the delete action of the detail page, "" hides it.
	DeleteURL string
	Message   string
	Location  *time.Location
	Theme     *theme.RendererConfig
}

type listView struct {
	Title      string      `json:"title"`
	NewURL     string      `json:"newURL"`
	Message    string      `json:"message,omitempty"`
	Entries    []entryCard `json:"entries"`
	EmptyTitle string      `json:"emptyTitle"`
	EmptyBody  string      `json:"emptyBody"`
}

type entryCard struct {
	URL     string          `json:"url"`
	Summary display.Summary `json:"summary"`
}

type entryView struct {
	Title     string          `json:"title"`
	Summary   display.Summary `json:"summary"`
	Rows      []display.Entry `json:"rows"`
	DeleteURL string          `json:"deleteURL,omitempty"`
	Confirm   string          `json:"confirm"`
}

// RenderEntries produces the submission list of form. Records are shown in
// the order given.
func (r *Renderer) RenderEntries(_ context.Context, form model.FormSchema, records []answers.AnswerRecord, options PageOptions) ([]byte, error) {
	view := listView{
		Title:      display.PlainText(form.Title),
		NewURL:     options.NewURL,
		Message:    options.Message,
		Entries:    make([]entryCard, 0, len(records)),
		EmptyTitle: EmptyTitle,
		EmptyBody:  EmptyBody,
	}
	for _, record := range records {
		summary := display.Summarize(form, record, options.Location)
		card := entryCard{Summary: summary}
		if options.EntryURL != nil {
			card.URL = options.EntryURL(summary.ID)
		}
		view.Entries = append(view.Entries, card)
	}

	content, err := r.templates.RenderTemplate(pick(themePartials(options.Theme), "forms.entries", entriesTemplate), map[string]any{
		"list": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render entries: %w", err)
	}
	return r.page(view.Title, content, options.Theme, nil)
}

// RenderEntry produces the read-only detail page of one record.
func (r *Renderer) RenderEntry(_ context.Context, form model.FormSchema, record answers.AnswerRecord, options PageOptions) ([]byte, error) {
	view := entryView{
		Title:     display.PlainText(form.Title),
		Summary:   display.Summarize(form, record, options.Location),
		Rows:      display.Detail(form, record),
		DeleteURL: options.DeleteURL,
		Confirm:   ConfirmDelete,
	}

	content, err := r.templates.RenderTemplate(pick(themePartials(options.Theme), "forms.entry", entryTemplate), map[string]any{
		"entry": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render entry: %w", err)
	}
	return r.page(view.Title, content, options.Theme, nil)
}
