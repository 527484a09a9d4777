package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/render"
	rendertemplate "github.com/goliatone/go-formcloud/pkg/render/template"
	gotemplate "github.com/goliatone/go-formcloud/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla/components"
	"github.com/goliatone/go-formcloud/pkg/widgets"
	"github.com/goliatone/go-template/templatehooks"
	theme "github.com/goliatone/go-theme"
)

// Template paths inside TemplatesFS, overridable through theme partials.
const (
	layoutTemplate  = "templates/layout.tmpl"
	formTemplate    = "templates/form.tmpl"
	entriesTemplate = "templates/entries.tmpl"
	entryTemplate   = "templates/entry.tmpl"
)

// DefaultPartials maps every theme partial key the renderer understands to
// its bundled template.
func DefaultPartials() map[string]string {
	out := components.DefaultPartials()
	out["forms.layout"] = layoutTemplate
	out["forms.form"] = formTemplate
	out["forms.entries"] = entriesTemplate
	out["forms.entry"] = entryTemplate
	return out
}

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	widgets          *widgets.Registry
	stylesheets      []string
	inlineStyles     bool
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default component registry.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithWidgetRegistry replaces the default field to widget resolution.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithStylesheet links an additional stylesheet on every page.
func WithStylesheet(href string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(href); trimmed != "" {
			cfg.stylesheets = append(cfg.stylesheets, trimmed)
		}
	}
}

// WithDefaultStyles inlines the bundled stylesheet into every page.
func WithDefaultStyles() Option {
	return func(cfg *config) {
		cfg.inlineStyles = true
	}
}

// Renderer produces HTML pages for forms and their submissions.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	components   *components.Registry
	widgets      *widgets.Registry
	stylesheets  []string
	inlineStyles string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithPostHooks(templatehooks.NewCommonHooks().RemoveTrailingWhitespaceHook()),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	r := &Renderer{
		templates:   renderer,
		components:  cfg.components,
		widgets:     cfg.widgets,
		stylesheets: slices.Clone(cfg.stylesheets),
	}
	if cfg.inlineStyles {
		r.inlineStyles = defaultStylesheet()
	}
	return r, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

type pageView struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Stylesheets  []string `json:"stylesheets,omitempty"`
	InlineStyles string   `json:"inlineStyles,omitempty"`
	Theme        string   `json:"theme,omitempty"`
	Variant      string   `json:"variant,omitempty"`
	Style        string   `json:"style,omitempty"`
}

type formView struct {
	Title    string               `json:"title"`
	Action   string               `json:"action"`
	Method   string               `json:"method"`
	Message  string               `json:"message,omitempty"`
	Hidden   []render.HiddenField `json:"hidden,omitempty"`
	Sections []sectionView        `json:"sections"`
}

type sectionView struct {
	TitleHTML string      `json:"titleHTML,omitempty"`
	Fields    []fieldView `json:"fields"`
}

type fieldView struct {
	ID        string   `json:"id"`
	Label     string   `json:"label"`
	Required  bool     `json:"required"`
	ShowLabel bool     `json:"showLabel"`
	Widget    string   `json:"widget"`
	Control   string   `json:"control"`
	Errors    []string `json:"errors,omitempty"`
}

// Render produces the fill page for form. Fields are laid out by section,
// values and errors come from options.
func (r *Renderer) Render(_ context.Context, form model.FormSchema, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	partials := themePartials(options.Theme)
	method := strings.ToUpper(strings.TrimSpace(options.Method))
	if method == "" {
		method = "POST"
	}

	view := formView{
		Title:   display.PlainText(form.Title),
		Action:  options.Action,
		Method:  method,
		Message: options.Message,
		Hidden:  render.SortedHiddenFields(options.Hidden),
	}

	used := make(map[string]struct{})
	for _, group := range form.Groups() {
		section := sectionView{Fields: make([]fieldView, 0, len(group.Fields))}
		if !group.Implicit {
			section.TitleHTML = display.SafeHTML(group.Title)
		}
		for _, field := range group.Fields {
			fv, err := r.renderField(field, options, partials)
			if err != nil {
				return nil, err
			}
			used[fv.Widget] = struct{}{}
			section.Fields = append(section.Fields, fv)
		}
		view.Sections = append(view.Sections, section)
	}

	content, err := r.templates.RenderTemplate(pick(partials, "forms.form", formTemplate), map[string]any{
		"form": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return r.page(view.Title, content, options.Theme, r.components.Stylesheets(sortedKeys(used)))
}

func (r *Renderer) renderField(field model.Field, options render.RenderOptions, partials map[string]string) (fieldView, error) {
	widget := r.widgets.Resolve(field)
	descriptor, ok := r.components.Descriptor(widget)
	if !ok {
		widget = widgets.WidgetUnsupported
		if descriptor, ok = r.components.Descriptor(widget); !ok {
			return fieldView{}, fmt.Errorf("vanilla renderer: component %q not registered for field %q", widget, field.Key())
		}
	}

	key := field.Key()
	errs := options.Errors[key]
	var control bytes.Buffer
	if err := descriptor.Renderer(&control, field, components.ComponentData{
		Template: r.templates,
		Value:    options.Values[key],
		Invalid:  len(errs) > 0,
		Partials: partials,
	}); err != nil {
		return fieldView{}, fmt.Errorf("vanilla renderer: render component %q for field %q: %w", widget, key, err)
	}

	return fieldView{
		ID:        components.ControlID(key),
		Label:     display.PlainText(field.Label),
		Required:  field.Required,
		ShowLabel: showLabel(field, widget),
		Widget:    widget,
		Control:   control.String(),
		Errors:    errs,
	}, nil
}

func (r *Renderer) page(title, content string, cfg *theme.RendererConfig, stylesheets []string) ([]byte, error) {
	view := pageView{
		Title:        title,
		Content:      content,
		InlineStyles: r.inlineStyles,
	}
	view.Stylesheets = append(view.Stylesheets, r.stylesheets...)
	if cfg != nil {
		view.Theme = cfg.Theme
		view.Variant = cfg.Variant
		view.Style = cssVarStyle(cfg.CSSVars)
		if cfg.AssetURL != nil {
			if href := cfg.AssetURL(StylesheetAsset); href != "" {
				view.Stylesheets = append(view.Stylesheets, href)
			}
		}
	}
	view.Stylesheets = append(view.Stylesheets, stylesheets...)

	out, err := r.templates.RenderTemplate(pick(themePartials(cfg), "forms.layout", layoutTemplate), map[string]any{
		"page": view,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render layout: %w", err)
	}
	return []byte(out), nil
}

func showLabel(field model.Field, widget string) bool {
	if strings.TrimSpace(field.Label) == "" {
		return false
	}
	switch widget {
	case widgets.WidgetDescription, widgets.WidgetUnsupported:
		return false
	}
	return true
}

func themePartials(cfg *theme.RendererConfig) map[string]string {
	if cfg == nil {
		return nil
	}
	return cfg.Partials
}

func pick(partials map[string]string, key, fallback string) string {
	if candidate := strings.TrimSpace(partials[key]); candidate != "" {
		return candidate
	}
	return fallback
}

// cssVarStyle renders CSS custom properties as an inline style, sorted by
// name.
func cssVarStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		value := strings.TrimSpace(vars[name])
		if value == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		parts = append(parts, name+": "+value)
	}
	return strings.Join(parts, "; ")
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
