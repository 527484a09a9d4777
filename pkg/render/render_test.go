package render_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

type stubRenderer struct {
	name        string
	contentType string
}

func (s stubRenderer) Name() string { return s.name }
func (s stubRenderer) ContentType() string {
	if s.contentType == "" {
		return "text/plain"
	}
	return s.contentType
}
func (s stubRenderer) Render(context.Context, model.FormSchema, render.RenderOptions) ([]byte, error) {
	return []byte(s.name), nil
}

func TestRegistry(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "b"})
	reg.MustRegister(stubRenderer{name: "a"})

	if err := reg.Register(stubRenderer{name: "a"}); !errors.Is(err, render.ErrDuplicateRenderer) {
		t.Fatalf("expected duplicate registration error, got %v", err)
	}
	if err := reg.Register(stubRenderer{name: "  "}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if diff := cmp.Diff([]string{"a", "b"}, reg.Names()); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}

	_, err := reg.Get("missing")
	if !errors.Is(err, render.ErrUnknownRenderer) {
		t.Fatalf("expected unknown renderer, got %v", err)
	}
	if !strings.Contains(err.Error(), "available: a, b") {
		t.Fatalf("expected available names in %q", err)
	}
	if !reg.Has("b") {
		t.Fatalf("expected b registered")
	}
}

func TestRegistry_ForContentType(t *testing.T) {
	reg := render.NewRegistry()
	reg.MustRegister(stubRenderer{name: "terminal"})
	reg.MustRegister(stubRenderer{name: "html", contentType: "text/html; charset=utf-8"})
	reg.MustRegister(stubRenderer{name: "html-alt", contentType: "text/html"})

	got, ok := reg.ForContentType("TEXT/HTML")
	if !ok || got.Name() != "html" {
		t.Fatalf("expected first html renderer, got %v %v", got, ok)
	}
	if _, ok := reg.ForContentType("application/pdf"); ok {
		t.Fatalf("expected no pdf renderer")
	}
}

func TestFieldErrors(t *testing.T) {
	form := testsupport.AllFields(t)
	err := validation.Check(form, map[string]string{"first_name": "Ada"})

	got := render.FieldErrors(form, err)
	want := map[string][]string{
		"email":     {render.RequiredMessage},
		"gender":    {render.RequiredMessage},
		"interests": {render.RequiredMessage},
		"terms":     {render.RequiredMessage},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if render.FieldErrors(form, nil) != nil {
		t.Fatalf("nil error should map to nil")
	}
}

func TestMergeErrors(t *testing.T) {
	got := render.MergeErrors(
		map[string][]string{"email": {"bad", " "}},
		map[string][]string{"email": {"bad", "worse"}, "name": {"x"}},
	)
	want := map[string][]string{"email": {"bad", "worse"}, "name": {"x"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedHiddenFields(t *testing.T) {
	got := render.SortedHiddenFields(map[string]string{"record_id": "1", "_method": "DELETE", " ": "x"})
	want := []render.HiddenField{{Name: "_method", Value: "DELETE"}, {Name: "record_id", Value: "1"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("hidden mismatch (-want +got):\n%s", diff)
	}
}
