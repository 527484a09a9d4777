package testsupport

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcloud/pkg/model"
)

//go:embed forms/*
var formFiles embed.FS

// Forms returns the bundled fixture forms rooted at the forms directory:
// all-fields.json (every field type, two sections) and contact.yaml (no
// sections, legacy "select" tag).
func Forms() fs.FS {
	sub, err := fs.Sub(formFiles, "forms")
	if err != nil {
		panic(err)
	}
	return sub
}

// AllFields parses the all-fields fixture.
func AllFields(t testing.TB) model.FormSchema {
	t.Helper()
	return MustLoadForm(t, "all-fields.json")
}

// Contact parses the contact fixture.
func Contact(t testing.TB) model.FormSchema {
	t.Helper()
	return MustLoadForm(t, "contact.yaml")
}

// MustLoadForm parses a bundled fixture, choosing the decoder by extension.
func MustLoadForm(t testing.TB, name string) model.FormSchema {
	t.Helper()

	data, err := fs.ReadFile(Forms(), name)
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	format := model.FormatJSON
	if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
		format = model.FormatYAML
	}
	form, err := model.Parse(data, model.WithFormat(format))
	if err != nil {
		t.Fatalf("parse fixture %s: %v", name, err)
	}
	form.Name = name[:len(name)-len(filepath.Ext(name))]
	return form
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	WriteMaybeGolden(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureOutput runs render against a buffer and returns what it wrote.
func CaptureOutput(t *testing.T, render func(io.Writer) error) string {
	t.Helper()

	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}
