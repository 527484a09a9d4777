// Package loader reads raw form documents from disk, an fs.FS or a remote
// URL. Parsing happens later in pkg/model.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/schema"
)

var (
	// ErrNoSource is returned for a nil source or an empty location.
	ErrNoSource = errors.New("loader: source is empty")
	// ErrSourceDisabled is returned when the strategy for a source kind was
	// not configured, such as URL sources without an HTTP client.
	ErrSourceDisabled = errors.New("loader: source kind not enabled")
)

// fetchFunc reads the bytes behind a location.
type fetchFunc func(ctx context.Context, location string) ([]byte, error)

// Loader implements schema.Loader with one fetch strategy per source kind.
type Loader struct {
	files      fs.FS
	strategies map[schema.SourceKind]fetchFunc
}

var _ schema.Loader = (*Loader)(nil)

// New builds a Loader. File sources are always enabled, fs.FS sources need
// a FileSystem and URL sources need AllowHTTP or an HTTPClient.
func New(options schema.LoaderOptions) *Loader {
	l := &Loader{
		files:      options.FileSystem,
		strategies: map[schema.SourceKind]fetchFunc{schema.SourceKindFile: readFile},
	}
	if options.FileSystem != nil {
		l.strategies[schema.SourceKindFS] = func(ctx context.Context, name string) ([]byte, error) {
			return fs.ReadFile(options.FileSystem, name)
		}
	}
	if client := httpClient(options); client != nil {
		remote := &remote{client: client, timeout: options.RequestTimeout}
		l.strategies[schema.SourceKindURL] = remote.fetch
	}
	return l
}

func httpClient(options schema.LoaderOptions) *http.Client {
	if options.HTTPClient != nil {
		client := *options.HTTPClient
		if client.Timeout == 0 {
			client.Timeout = options.RequestTimeout
		}
		return &client
	}
	if options.AllowHTTP {
		return &http.Client{Timeout: options.RequestTimeout}
	}
	return nil
}

// Load fetches the document behind src.
func (l *Loader) Load(ctx context.Context, src schema.Source) (schema.Document, error) {
	if src == nil || src.Location() == "" {
		return schema.Document{}, ErrNoSource
	}
	fetch, ok := l.strategies[src.Kind()]
	if !ok {
		return schema.Document{}, fmt.Errorf("%w: %s", ErrSourceDisabled, src.Kind())
	}
	if err := ctx.Err(); err != nil {
		return schema.Document{}, err
	}

	data, err := fetch(ctx, src.Location())
	if err != nil {
		return schema.Document{}, fmt.Errorf("loader: %s %q: %w", src.Kind(), src.Location(), err)
	}
	return schema.NewDocument(src, data)
}

// List returns the form documents at the root of the configured fs.FS,
// sorted by name. Directories and files that are not JSON or YAML are skipped.
func (l *Loader) List() ([]string, error) {
	if l.files == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceDisabled, schema.SourceKindFS)
	}
	entries, err := fs.ReadDir(l.files, ".")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() && IsFormFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// IsFormFile reports whether name carries a .json, .yaml or .yml extension.
func IsFormFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func readFile(_ context.Context, location string) ([]byte, error) {
	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs)
}
