// Package catalog loads every form schema of a bundle. A form that fails to
// load is skipped and reported; the rest stay usable. Titles and bundle names
// identify forms, so a second form reusing either is skipped as well.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-formcloud/internal/loader"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/schema"
)

var (
	// ErrDuplicateTitle is wrapped by the SchemaLoadError of a form whose
	// title is already taken.
	ErrDuplicateTitle = errors.New("catalog: duplicate form title")
	// ErrDuplicateName is wrapped when two files share a bundle name, such as
	// contact.json and contact.yaml.
	ErrDuplicateName = errors.New("catalog: duplicate form name")
)

// Catalog is an immutable set of loaded forms.
type Catalog struct {
	forms   []model.FormSchema
	byID    map[string]int
	byName  map[string]int
	skipped []*model.SchemaLoadError
}

type options struct {
	parse  []model.ParseOption
	names  []string
	logger *zerolog.Logger
}

// Option configures loading.
type Option func(*options)

// WithStrictTypes rejects forms declaring unknown field types.
func WithStrictTypes() Option {
	return func(o *options) {
		o.parse = append(o.parse, model.WithStrictTypes())
	}
}

// WithNames restricts loading to the given bundle names, in that order
// ("all-fields", "200-form"). Names that have no file are reported as skipped.
func WithNames(names ...string) Option {
	return func(o *options) {
		o.names = append(o.names, names...)
	}
}

// WithLogger sets the logger used to report skipped forms.
func WithLogger(l *zerolog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// LoadDir loads the forms stored in dir.
func LoadDir(ctx context.Context, dir string, opts ...Option) (*Catalog, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("catalog: forms directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog: %s is not a directory", dir)
	}
	return LoadFS(ctx, os.DirFS(dir), opts...)
}

// LoadFS loads every .json/.yaml/.yml schema at the root of files.
func LoadFS(ctx context.Context, files fs.FS, opts ...Option) (*Catalog, error) {
	cfg := resolve(opts)
	l := loader.New(schema.NewLoaderOptions(schema.WithFileSystem(files)))

	available, err := l.List()
	if err != nil {
		return nil, fmt.Errorf("catalog: list forms: %w", err)
	}

	var sources []schema.Source
	if len(cfg.names) == 0 {
		for _, file := range available {
			sources = append(sources, schema.SourceFromFS(file))
		}
	} else {
		byName := make(map[string]string, len(available))
		for _, file := range available {
			byName[schema.BaseName(schema.SourceFromFS(file))] = file
		}
		for _, name := range cfg.names {
			file, ok := byName[name]
			if !ok {
				file = name + ".json"
			}
			sources = append(sources, schema.SourceFromFS(file))
		}
	}

	return load(ctx, l, sources, cfg), nil
}

// Load reads the given sources through l.
func Load(ctx context.Context, l schema.Loader, sources []schema.Source, opts ...Option) *Catalog {
	return load(ctx, l, sources, resolve(opts))
}

func resolve(opts []Option) options {
	var cfg options
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func load(ctx context.Context, l schema.Loader, sources []schema.Source, cfg options) *Catalog {
	log := cfg.logger
	if log == nil {
		log = logging.FromContext(ctx)
	}

	c := &Catalog{byID: map[string]int{}, byName: map[string]int{}}
	for _, src := range sources {
		form, err := loadOne(ctx, l, src, cfg.parse)
		if err == nil {
			err = c.add(form, src.Location())
		}
		if err != nil {
			var loadErr *model.SchemaLoadError
			errors.As(err, &loadErr)
			c.skipped = append(c.skipped, loadErr)
			log.Warn().Err(loadErr.Err).Str("form", loadErr.Form).Str("location", loadErr.Location).Msg("skipping form")
			continue
		}
		log.Debug().Str("form", form.ID()).Str("name", form.Name).Int("fields", len(form.Fields)).Msg("form loaded")
	}
	return c
}

func loadOne(ctx context.Context, l schema.Loader, src schema.Source, parse []model.ParseOption) (model.FormSchema, error) {
	fail := func(err error) error {
		return &model.SchemaLoadError{Form: schema.BaseName(src), Location: src.Location(), Err: err}
	}

	doc, err := l.Load(ctx, src)
	if err != nil {
		return model.FormSchema{}, fail(err)
	}

	format := model.FormatJSON
	if doc.Format() == schema.FormatYAML {
		format = model.FormatYAML
	}
	form, err := model.Parse(doc.Raw(), append([]model.ParseOption{model.WithFormat(format)}, parse...)...)
	if err != nil {
		return model.FormSchema{}, fail(err)
	}
	form.Name = doc.Name()
	return form, nil
}

// Forms returns the loaded forms in load order.
func (c *Catalog) Forms() []model.FormSchema {
	return append([]model.FormSchema(nil), c.forms...)
}

// Get returns the form whose title is id.
func (c *Catalog) Get(id string) (model.FormSchema, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.FormSchema{}, false
	}
	return c.forms[i], true
}

// ByName returns the form loaded from the bundle name.
func (c *Catalog) ByName(name string) (model.FormSchema, bool) {
	i, ok := c.byName[name]
	if !ok {
		return model.FormSchema{}, false
	}
	return c.forms[i], true
}

// Lookup resolves either a title or a bundle name.
func (c *Catalog) Lookup(ref string) (model.FormSchema, bool) {
	if form, ok := c.Get(ref); ok {
		return form, true
	}
	return c.ByName(ref)
}

// Skipped returns the load failures.
func (c *Catalog) Skipped() []*model.SchemaLoadError {
	return append([]*model.SchemaLoadError(nil), c.skipped...)
}

// Len returns the number of loaded forms.
func (c *Catalog) Len() int {
	return len(c.forms)
}

// Titles returns the form ids sorted alphabetically.
func (c *Catalog) Titles() []string {
	out := make([]string, 0, len(c.forms))
	for _, f := range c.forms {
		out = append(out, f.ID())
	}
	sort.Strings(out)
	return out
}

// New builds a catalog from already parsed forms. Duplicates are skipped like
// in LoadFS.
func New(forms ...model.FormSchema) *Catalog {
	c := &Catalog{byID: map[string]int{}, byName: map[string]int{}}
	for _, form := range forms {
		if err := c.add(form, ""); err != nil {
			var loadErr *model.SchemaLoadError
			errors.As(err, &loadErr)
			c.skipped = append(c.skipped, loadErr)
		}
	}
	return c
}

// add indexes form unless its title or bundle name is taken.
func (c *Catalog) add(form model.FormSchema, location string) error {
	var err error
	if _, taken := c.byID[form.ID()]; taken {
		err = fmt.Errorf("%w: %q", ErrDuplicateTitle, form.ID())
	} else if _, taken := c.byName[form.Name]; taken && form.Name != "" {
		err = fmt.Errorf("%w: %q", ErrDuplicateName, form.Name)
	}
	if err != nil {
		return &model.SchemaLoadError{Form: form.Name, Location: location, Err: err}
	}

	c.byID[form.ID()] = len(c.forms)
	if form.Name != "" {
		c.byName[form.Name] = len(c.forms)
	}
	c.forms = append(c.forms, form)
	return nil
}
