// Package gotemplate implements template.TemplateRenderer on a pongo2
// template set. View data is normalised through JSON so structs render with
// their json tag names. Pre and post render hooks use the go-template hook
// types, so hooks from its templatehooks package plug in directly.
package gotemplate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-formcloud/pkg/render/template"
)

const defaultExtension = ".tmpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	files     fs.FS
	extension string
	funcs     map[string]any
	globals   map[string]any
	pre       []gotemplatepkg.PreHook
	post      []gotemplatepkg.PostHook
}

// WithBaseDir loads templates from a directory on disk. Combined with WithFS
// the directory is searched first.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from an fs.FS.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension sets the suffix appended to template names that lack it.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		cfg.extension = "." + strings.TrimPrefix(ext, ".")
	}
}

// WithTemplateFunc registers pongo2.FilterFunction values as filters and any
// other function as a global.
func WithTemplateFunc(funcs map[string]any) Option {
	return func(cfg *config) {
		cfg.funcs = mergeInto(cfg.funcs, funcs)
	}
}

// WithGlobalData seeds values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		cfg.globals = mergeInto(cfg.globals, data)
	}
}

// WithPreHooks runs hooks before every render. A hook may replace the data
// or, for RenderTemplate, the template name.
func WithPreHooks(hooks ...gotemplatepkg.PreHook) Option {
	return func(cfg *config) {
		cfg.pre = append(cfg.pre, hooks...)
	}
}

// WithPostHooks runs hooks over the rendered output, in order.
func WithPostHooks(hooks ...gotemplatepkg.PostHook) Option {
	return func(cfg *config) {
		cfg.post = append(cfg.post, hooks...)
	}
}

// Engine renders templates from a pongo2 set, caching parsed files.
type Engine struct {
	set   *pongo2.TemplateSet
	ext   string
	cache sync.Map // path -> *pongo2.Template
	hooks *gotemplatepkg.HookManager

	// mu guards set.Globals, which templates read while executing.
	mu sync.RWMutex
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. WithBaseDir or WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: defaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		local, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: template dir %q: %w", cfg.baseDir, err)
		}
		loaders = append(loaders, local)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}
	if len(loaders) == 0 {
		return nil, errors.New("gotemplate: a template dir or fs.FS is required")
	}

	e := &Engine{
		set:   pongo2.NewSet("formcloud", loaders...),
		ext:   cfg.extension,
		hooks: gotemplatepkg.NewHooksManager(),
	}
	for _, hook := range cfg.pre {
		e.RegisterPreHook(hook)
	}
	for _, hook := range cfg.post {
		e.RegisterPostHook(hook)
	}
	e.set.Globals = pongo2.Context{}
	ensureFilter("trim", filterTrim)

	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, fmt.Errorf("gotemplate: global data: %w", err)
	}
	for name, fn := range cfg.funcs {
		if err := e.addFunc(name, fn); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// RenderTemplate executes the named template. The configured extension is
// appended when name lacks it.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	hc := &gotemplatepkg.HookContext{TemplateName: name, Data: data, Metadata: map[string]any{"ext": e.ext}}
	if err := e.before(hc); err != nil {
		return "", err
	}
	path := hc.TemplateName
	if !strings.HasSuffix(path, e.ext) {
		path += e.ext
	}
	tmpl, err := e.template(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, hc, out)
}

// RenderString parses and executes an inline template.
func (e *Engine) RenderString(content string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	hc := &gotemplatepkg.HookContext{Template: content, Data: data, Metadata: map[string]any{}}
	if err := e.before(hc); err != nil {
		return "", err
	}
	tmpl, err := e.set.FromString(hc.Template)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute(tmpl, "inline template", hc, out)
}

// RegisterPreHook adds a hook run before every render.
func (e *Engine) RegisterPreHook(hook gotemplatepkg.PreHook) {
	if hook != nil {
		e.hooks.AddPreHook(hook)
	}
}

// RegisterPostHook adds a hook run over every rendered output.
func (e *Engine) RegisterPostHook(hook gotemplatepkg.PostHook) {
	if hook != nil {
		e.hooks.AddPostHook(hook)
	}
}

// RegisterFilter adds a pongo2 filter. Filters are process wide, so a name
// that already exists is rejected.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals visible to every template. Top
// level keys replace existing ones.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}
	globals, err := toContext(data)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.set.Globals.Update(globals)
	e.mu.Unlock()
	return nil
}

func (e *Engine) template(path string) (*pongo2.Template, error) {
	if cached, ok := e.cache.Load(path); ok {
		return cached.(*pongo2.Template), nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %q: %w", path, err)
	}
	actual, _ := e.cache.LoadOrStore(path, tmpl)
	return actual.(*pongo2.Template), nil
}

func (e *Engine) before(hc *gotemplatepkg.HookContext) error {
	hc.IsPreHook = true
	for _, hook := range e.hooks.PreHooks() {
		if err := hook(hc); err != nil {
			return fmt.Errorf("gotemplate: pre hook: %w", err)
		}
	}
	hc.IsPreHook = false
	return nil
}

func (e *Engine) execute(tmpl *pongo2.Template, label string, hc *gotemplatepkg.HookContext, out []io.Writer) (string, error) {
	ctx, err := toContext(hc.Data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: %s: view data: %w", label, err)
	}

	var buf strings.Builder
	e.mu.RLock()
	err = tmpl.ExecuteWriter(ctx, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", label, err)
	}

	hc.Output = buf.String()
	for _, hook := range e.hooks.PostHooks() {
		if hc.Output, err = hook(hc); err != nil {
			return "", fmt.Errorf("gotemplate: %s: post hook: %w", label, err)
		}
	}

	if len(out) > 0 {
		if _, err := io.WriteString(io.MultiWriter(out...), hc.Output); err != nil {
			return "", fmt.Errorf("gotemplate: write %s: %w", label, err)
		}
	}
	return hc.Output, nil
}

func (e *Engine) addFunc(name string, fn any) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return nil
	}
	if filter, ok := fn.(pongo2.FilterFunction); ok {
		ensureFilter(name, filter)
		return nil
	}
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return fmt.Errorf("gotemplate: template func %q is %T, not a function", name, fn)
	}
	e.mu.Lock()
	e.set.Globals[name] = fn
	e.mu.Unlock()
	return nil
}

// ensureFilter registers filter unless a filter with that name exists.
func ensureFilter(name string, filter pongo2.FilterFunction) {
	if !pongo2.FilterExists(name) {
		_ = pongo2.RegisterFilter(name, filter)
	}
}

func filterTrim(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

func mergeInto(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, value := range src {
		if key = strings.TrimSpace(key); key != "" {
			dst[key] = value
		}
	}
	return dst
}
