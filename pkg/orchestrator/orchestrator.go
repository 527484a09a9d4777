package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/flash"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/store/memory"
	theme "github.com/goliatone/go-theme"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithCatalog sets the forms the orchestrator serves.
func WithCatalog(c *catalog.Catalog) Option {
	return func(o *Orchestrator) {
		o.catalog = c
	}
}

// WithStore injects the answer store. Defaults to an in-memory store.
func WithStore(s store.Store) Option {
	return func(o *Orchestrator) {
		o.store = s
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithThemeSelector resolves themes through selector. name and variant are
// used when a request does not pick a theme.
func WithThemeSelector(selector theme.ThemeSelector, name, variant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.defaultTheme = name
		o.defaultVariant = variant
	}
}

// WithThemeFallbacks sets the partials applied when the theme does not
// override them. Defaults to vanilla.DefaultPartials.
func WithThemeFallbacks(partials map[string]string) Option {
	return func(o *Orchestrator) {
		o.themeFallbacks = partials
	}
}

// WithFlash shows validation and storage failures on msg.
func WithFlash(msg *flash.Message) Option {
	return func(o *Orchestrator) {
		o.flash = msg
	}
}

// WithPasswordHashing bcrypt-hashes password answers before they are stored.
// A cost of 0 uses bcrypt.DefaultCost.
func WithPasswordHashing(cost int) Option {
	return func(o *Orchestrator) {
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		o.hashCost = cost
	}
}

// WithClock overrides the time source used to stamp records.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator coordinates forms, answers and renderers. Defaults: an empty
// catalog, an in-memory store and the vanilla HTML renderer.
type Orchestrator struct {
	catalog         *catalog.Catalog
	store           store.Store
	registry        *render.Registry
	defaultRenderer string
	themeSelector   theme.ThemeSelector
	defaultTheme    string
	defaultVariant  string
	themeFallbacks  map[string]string
	flash           *flash.Message
	hashCost        int
	now             func() time.Time
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies are initialised with the built-in implementations.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		now:             time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.catalog == nil {
		o.catalog = catalog.New()
	}
	if o.store == nil {
		o.store = memory.New()
	}
	if o.themeFallbacks == nil {
		o.themeFallbacks = vanilla.DefaultPartials()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
	}
	if !o.registry.Has(defaultRendererName) && o.defaultRenderer == defaultRendererName {
		renderer, err := vanilla.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: initialise vanilla renderer: %w", err)
			return
		}
		if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register vanilla renderer: %w", err)
		}
	}
}

// Catalog exposes the served forms.
func (o *Orchestrator) Catalog() *catalog.Catalog {
	return o.catalog
}

// Store exposes the answer store.
func (o *Orchestrator) Store() store.Store {
	return o.store
}

// Flash returns the configured flash message, nil when none.
func (o *Orchestrator) Flash() *flash.Message {
	return o.flash
}

// Form resolves a form by title or catalog name.
func (o *Orchestrator) Form(id string) (model.FormSchema, error) {
	form, ok := o.catalog.Lookup(id)
	if !ok {
		return model.FormSchema{}, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	return form, nil
}

// Request describes a form page render.
type Request struct {
	// FormID is the form title or catalog name.
	FormID string

	// Renderer names the renderer to use. If empty, the first renderer
	// producing ContentType is used, then the configured default.
	Renderer    string
	ContentType string

	// ThemeName and ThemeVariant override the default theme selection.
	ThemeName    string
	ThemeVariant string

	// RenderOptions carries values, errors and messages for the renderer.
	// RenderOptions.Theme is filled from the theme selector when nil.
	RenderOptions render.RenderOptions
}

// Render renders the form named by req.
func (o *Orchestrator) Render(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	form, err := o.Form(req.FormID)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer, req.ContentType)
	if err != nil {
		return nil, err
	}

	opts := req.RenderOptions
	if opts.Theme == nil {
		cfg, err := o.ThemeConfig(req.ThemeName, req.ThemeVariant)
		if err != nil {
			return nil, err
		}
		opts.Theme = cfg
	}
	if opts.Message == "" && o.flash != nil {
		if text, visible := o.flash.Current(); visible {
			opts.Message = text
		}
	}

	output, err := renderer.Render(ctx, form, opts)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render form %q: %w", form.ID(), err)
	}
	return output, nil
}

func (o *Orchestrator) rendererFor(name, contentType string) (render.Renderer, error) {
	if name == "" && contentType != "" {
		if renderer, ok := o.registry.ForContentType(contentType); ok {
			return renderer, nil
		}
	}
	if name == "" {
		name = o.defaultRenderer
	}
	renderer, err := o.registry.Get(name)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) log(ctx context.Context) *zerolog.Logger {
	return logging.FromContext(ctx)
}
