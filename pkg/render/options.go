package render

import theme "github.com/goliatone/go-theme"

// RenderOptions carry per-request data without mutating the schema.
type RenderOptions struct {
	// Action is the URL the form posts to. Method defaults to POST.
	Action string
	Method string
	// Values pre-populates controls, keyed like answer records.
	Values map[string]string
	// Errors holds field-level messages keyed by field key.
	Errors map[string][]string
	// Message is the transient banner ("Fill in all required fields (*)").
	Message string
	// Hidden adds hidden inputs, e.g. a record id when editing.
	Hidden map[string]string
	// Theme is the resolved theme, nil for the unstyled default.
	Theme *theme.RendererConfig
}
