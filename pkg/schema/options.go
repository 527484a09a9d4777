package schema

import (
	"io/fs"
	"net/http"
	"time"
)

// LoaderOptions configures the loader strategies.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups, typically the bundled forms
	// directory.
	FileSystem fs.FS
	// HTTPClient is used for URL sources. When nil and AllowHTTP is set a
	// client with RequestTimeout is created.
	HTTPClient     *http.Client
	AllowHTTP      bool
	RequestTimeout time.Duration
}

// LoaderOption mutates LoaderOptions.
type LoaderOption func(*LoaderOptions)

// WithFileSystem sets the fs.FS used for SourceKindFS.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(o *LoaderOptions) {
		o.FileSystem = files
	}
}

// WithHTTPClient enables URL sources using the supplied client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(o *LoaderOptions) {
		o.HTTPClient = client
		o.AllowHTTP = client != nil
	}
}

// WithHTTPFallback enables URL sources with a default client.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(o *LoaderOptions) {
		o.AllowHTTP = true
		o.RequestTimeout = timeout
	}
}

// NewLoaderOptions applies options over the defaults.
func NewLoaderOptions(options ...LoaderOption) LoaderOptions {
	cfg := LoaderOptions{RequestTimeout: 10 * time.Second}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
