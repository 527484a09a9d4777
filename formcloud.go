// Package formcloud is the top-level entry point: it loads form schemas,
// renders them, and wires the orchestrator that stores answers.
package formcloud

import (
	"context"
	"fmt"

	"github.com/goliatone/go-formcloud/internal/loader"
	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/schema"
	theme "github.com/goliatone/go-theme"
)

// FormSchema is a parsed form definition.
type FormSchema = model.FormSchema

// AnswerRecord is one stored submission.
type AnswerRecord = answers.AnswerRecord

// RenderOptions describes per-request overrides that renderers can use to
// prefill values or surface server-side validation errors.
type RenderOptions = render.RenderOptions

// Request describes a form page render.
type Request = orchestrator.Request

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// NewLoader returns the default schema loader. Files and fs.FS entries are
// always readable; URLs require WithHTTPClient or WithHTTPFallback.
func NewLoader(options ...schema.LoaderOption) schema.Loader {
	return loader.New(schema.NewLoaderOptions(options...))
}

// LoadCatalog loads every schema file in dir. Forms that fail to load are
// reported by Catalog.Skipped.
func LoadCatalog(ctx context.Context, dir string, options ...catalog.Option) (*catalog.Catalog, error) {
	return catalog.LoadDir(ctx, dir, options...)
}

// LoadForm loads a single form from a file path or http(s) URL.
func LoadForm(ctx context.Context, location string, options ...schema.LoaderOption) (FormSchema, error) {
	src, err := schema.ParseSource(location)
	if err != nil {
		return FormSchema{}, err
	}

	c := catalog.Load(ctx, NewLoader(options...), []schema.Source{src})
	if skipped := c.Skipped(); len(skipped) > 0 {
		return FormSchema{}, skipped[0]
	}
	forms := c.Forms()
	if len(forms) == 0 {
		return FormSchema{}, fmt.Errorf("formcloud: no form loaded from %q", location)
	}
	return forms[0], nil
}

// RenderHTML renders a single form with the default renderer. It is the
// simplest entry point for callers that just want HTML output.
func RenderHTML(ctx context.Context, form FormSchema, opts RenderOptions, options ...orchestrator.Option) ([]byte, error) {
	options = append([]orchestrator.Option{orchestrator.WithCatalog(catalog.New(form))}, options...)
	return orchestrator.New(options...).Render(ctx, Request{
		FormID:        form.ID(),
		RenderOptions: opts,
	})
}

// WithThemeSelector passes a go-theme selector through to the orchestrator so
// theme/variant choices can be resolved ahead of rendering.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector, name, variant)
}

// WithThemeFallbacks forwards fallback partials used when deriving renderer
// configuration from a theme selection.
func WithThemeFallbacks(fallbacks map[string]string) orchestrator.Option {
	return orchestrator.WithThemeFallbacks(fallbacks)
}
