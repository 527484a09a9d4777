package gotemplate_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"testing"

	"github.com/goliatone/go-formcloud/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
	gotemplatepkg "github.com/goliatone/go-template"
	"github.com/goliatone/go-template/templatehooks"
	"github.com/google/go-cmp/cmp"
)

//go:embed testdata/templates/*.tmpl
var embeddedTemplates embed.FS

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	templatesFS, err := fs.Sub(embeddedTemplates, "testdata/templates")
	if err != nil {
		t.Fatalf("sub fs: %v", err)
	}
	engine, err := gotemplate.New(append([]gotemplate.Option{gotemplate.WithFS(templatesFS)}, opts...)...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestRenderTemplateWritesToWriters(t *testing.T) {
	engine := newEngine(t)

	var result string
	written := testsupport.CaptureOutput(t, func(w io.Writer) error {
		var err error
		result, err = engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, w)
		return err
	})

	if result != "Hello Ada!\n" {
		t.Fatalf("unexpected result %q", result)
	}
	if written != result {
		t.Fatalf("writer mismatch\nwant: %q\n got: %q", result, written)
	}
}

func TestGlobalContext(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"app": map[string]any{"name": "formcloud"},
	}))
	if err := engine.GlobalContext(map[string]any{
		"app": map[string]any{"name": "formcloud", "env": "staging"},
	}); err != nil {
		t.Fatalf("global context: %v", err)
	}

	result, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "formcloud on staging\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout", func(any, any) (any, error) { return nil, nil }); err == nil {
		t.Fatalf("expected duplicate filter error")
	}

	result, err := engine.RenderTemplate("use-filter.tmpl", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "ADA!\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

type viewField struct {
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

func TestStructsUseJSONNames(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Fields []viewField `json:"fields"`
	}{Fields: []viewField{{Label: "Email", Required: true}, {Label: "Notes"}}}

	result, err := engine.RenderTemplate("fields", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "Email=True;Notes=False;\n" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestRenderString(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderString("{{ a|trim }}-{{ b }}", map[string]any{"a": "  x ", "b": 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result != "x-2" {
		t.Fatalf("unexpected result %q", result)
	}
}

func TestNewRequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}

func TestHooksWrapRender(t *testing.T) {
	engine := newEngine(t,
		gotemplate.WithPreHooks(func(hc *gotemplatepkg.HookContext) error {
			hc.Data = map[string]any{"name": strings.ToUpper(hc.Data.(map[string]any)["name"].(string))}
			return nil
		}),
		gotemplate.WithPostHooks(templatehooks.NewCommonHooks().RemoveTrailingWhitespaceHook()),
	)

	var seen []string
	engine.RegisterPostHook(func(hc *gotemplatepkg.HookContext) (string, error) {
		seen = append(seen, hc.TemplateName+"|"+fmt.Sprint(hc.Metadata["ext"]))
		return hc.Output + "!", nil
	})

	got, err := engine.RenderString("Hi {{ name }}   \nbye\t", map[string]any{"name": "ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if diff := cmp.Diff("Hi ADA\nbye!", got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}

	if _, err := engine.RenderTemplate("hello", map[string]any{"name": "ada"}); err != nil {
		t.Fatalf("render template: %v", err)
	}
	if diff := cmp.Diff([]string{"|<nil>", "hello|.tmpl"}, seen); diff != "" {
		t.Fatalf("hook contexts mismatch (-want +got):\n%s", diff)
	}
}

func TestPreHookErrorStopsRender(t *testing.T) {
	engine := newEngine(t, gotemplate.WithPreHooks(
		templatehooks.NewCommonHooks().ValidateDataHook([]string{"name"}),
	))

	if _, err := engine.RenderTemplate("hello", map[string]any{}); err == nil {
		t.Fatal("expected pre hook error")
	}
	if _, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}); err != nil {
		t.Fatalf("render: %v", err)
	}
}
