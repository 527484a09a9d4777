package schema

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Source identifies where a form schema document came from so loaders can read
// files, fs.FS entries, or URLs without the model knowing which.
type Source interface {
	Kind() SourceKind
	Location() string
}

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

type fileSource struct {
	path string
}

func (s fileSource) Location() string { return s.path }
func (s fileSource) Kind() SourceKind { return SourceKindFile }

// SourceFromFile returns a Source pointing to a schema file on disk.
func SourceFromFile(p string) Source {
	return fileSource{path: filepath.Clean(p)}
}

type fsSource struct {
	name string
}

func (s fsSource) Location() string { return s.name }
func (s fsSource) Kind() SourceKind { return SourceKindFS }

// SourceFromFS returns a Source identifying a schema inside an fs.FS, such as
// a bundled resource directory.
func SourceFromFS(name string) Source {
	return fsSource{name: path.Clean(name)}
}

type urlSource struct {
	raw string
}

func (s urlSource) Location() string { return s.raw }
func (s urlSource) Kind() SourceKind { return SourceKindURL }

// SourceFromURL parses the supplied URL string and returns a Source. It panics
// on invalid input to surface configuration mistakes early; use ParseSource
// for user-provided values.
func SourceFromURL(raw string) Source {
	src, err := urlSourceFrom(raw)
	if err != nil {
		panic(err.Error())
	}
	return src
}

// ParseSource turns a CLI or config value into a Source: http(s) URLs become
// URL sources, anything else is treated as a file path.
func ParseSource(raw string) (Source, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("schema: empty source")
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return urlSourceFrom(trimmed)
	}
	return SourceFromFile(trimmed), nil
}

func urlSourceFrom(raw string) (Source, error) {
	if raw == "" {
		return nil, fmt.Errorf("schema: empty URL source")
	}
	if _, err := url.ParseRequestURI(raw); err != nil {
		return nil, fmt.Errorf("schema: invalid URL %q: %w", raw, err)
	}
	return urlSource{raw: raw}, nil
}

// BaseName returns the schema's file name without directory or extension, the
// name a form is bundled under ("all-fields" for "forms/all-fields.json").
func BaseName(src Source) string {
	if src == nil {
		return ""
	}
	loc := src.Location()
	if src.Kind() == SourceKindURL {
		if parsed, err := url.Parse(loc); err == nil {
			loc = parsed.Path
		}
	}
	base := path.Base(filepath.ToSlash(loc))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}

// Format reports the document encoding implied by the source extension.
// Unknown extensions default to JSON.
func Format(src Source) string {
	if src == nil {
		return FormatJSON
	}
	switch strings.ToLower(path.Ext(src.Location())) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)
