package orchestrator

import (
	"errors"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
		Templates: map[string]string{
			"forms.input": "themes/acme/input.tmpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets/themes/acme",
			Files: map[string]string{
				vanilla.StylesheetAsset: "theme.css",
				"logo":                  "https://cdn.example.com/logo.svg",
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"brand": "#654321",
				},
				Templates: map[string]string{
					"forms.checkbox-group": "themes/acme/dark/checkbox.tmpl",
				},
				Assets: theme.Assets{
					Files: map[string]string{
						"vendor": "vendor.dark.js",
					},
				},
			},
		},
	}
}

func themedOrchestrator(t *testing.T, selector theme.ThemeSelector, name, variant string) (*Orchestrator, *captureRenderer) {
	t.Helper()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(
		WithCatalog(catalog.New(testsupport.Contact(t))),
		WithRegistry(registry),
		WithDefaultRenderer(renderer.Name()),
		WithThemeSelector(selector, name, variant),
	)
	return orch, renderer
}

func TestOrchestrator_PassesThemeConfigToRenderer(t *testing.T) {
	manifest := &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand": "#123456",
		},
	}
	selection := &theme.Selection{
		Theme:    "acme",
		Variant:  "custom-variant",
		Manifest: manifest,
	}
	selector := &stubThemeSelector{selection: selection}

	orch, renderer := themedOrchestrator(t, selector, "", "")
	_, err := orch.Render(testsupport.Context(), Request{
		FormID:       "contact",
		ThemeName:    "custom-theme",
		ThemeVariant: "custom-variant",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if len(selector.calls) != 1 {
		t.Fatalf("expected selector called once, got %d", len(selector.calls))
	}
	if selector.calls[0].name != "custom-theme" || selector.calls[0].variant != "custom-variant" {
		t.Fatalf("unexpected selector args: %+v", selector.calls[0])
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != selection.Theme {
		t.Fatalf("theme name mismatch: want %s, got %s", selection.Theme, cfg.Theme)
	}
	if cfg.Variant != selection.Variant {
		t.Fatalf("theme variant mismatch: want %s, got %s", selection.Variant, cfg.Variant)
	}
	if got := cfg.Partials["forms.input"]; got != vanilla.DefaultPartials()["forms.input"] {
		t.Fatalf("partials not merged with fallbacks: got %s", got)
	}
	if cfg.CSSVars["--brand"] != "#123456" {
		t.Fatalf("css vars not derived from tokens")
	}
}

func TestOrchestrator_ManifestSelectorUsesDefaults(t *testing.T) {
	selector, err := NewManifestSelector(acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	orch, renderer := themedOrchestrator(t, selector, "acme", "dark")
	if _, err := orch.Render(testsupport.Context(), Request{FormID: "Contact"}); err != nil {
		t.Fatalf("render: %v", err)
	}

	cfg := renderer.options.Theme
	if cfg == nil {
		t.Fatalf("expected theme config passed to renderer")
	}
	if cfg.Theme != "acme" || cfg.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", cfg.Theme, cfg.Variant)
	}
	if cfg.Partials["forms.input"] != "themes/acme/input.tmpl" {
		t.Fatalf("expected base template override, got %s", cfg.Partials["forms.input"])
	}
	if cfg.Partials["forms.checkbox-group"] != "themes/acme/dark/checkbox.tmpl" {
		t.Fatalf("expected variant template override, got %s", cfg.Partials["forms.checkbox-group"])
	}
	if cfg.Partials["forms.textarea"] != vanilla.DefaultPartials()["forms.textarea"] {
		t.Fatalf("fallback partial not applied for textarea")
	}
	if cfg.Tokens["brand"] != "#654321" {
		t.Fatalf("tokens not merged with variant override, got %s", cfg.Tokens["brand"])
	}
	if cfg.CSSVars["--brand"] != "#654321" {
		t.Fatalf("css vars not derived from variant tokens, got %s", cfg.CSSVars["--brand"])
	}
	if got := cfg.AssetURL("vendor"); got != "/assets/themes/acme/vendor.dark.js" {
		t.Fatalf("unexpected vendor asset url: %s", got)
	}
	if got := cfg.AssetURL(vanilla.StylesheetAsset); got != "/assets/themes/acme/theme.css" {
		t.Fatalf("unexpected stylesheet asset url: %s", got)
	}
	if got := cfg.AssetURL("logo"); got != "https://cdn.example.com/logo.svg" {
		t.Fatalf("absolute asset rewritten: %s", got)
	}
	if got := cfg.AssetURL("missing"); got != "" {
		t.Fatalf("expected empty url for unknown asset, got %s", got)
	}
}

func TestManifestSelector_Select(t *testing.T) {
	other := &theme.Manifest{Name: "zen", Version: "0.1.0"}
	selector, err := NewManifestSelector(other, acmeManifest())
	if err != nil {
		t.Fatalf("selector: %v", err)
	}

	selection, err := selector.Select("", "")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if selection.Theme != "acme" {
		t.Fatalf("expected first theme by name, got %s", selection.Theme)
	}

	if _, err := selector.Select("missing", ""); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	if _, err := selector.Select("zen", "dark"); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func TestOrchestrator_ThemeSelectionError(t *testing.T) {
	selector := &stubThemeSelector{err: errors.New("boom")}
	orch, _ := themedOrchestrator(t, selector, "acme", "")

	if _, err := orch.Render(testsupport.Context(), Request{FormID: "contact"}); err == nil {
		t.Fatalf("expected selection error")
	}
}

type selectorCall struct {
	name    string
	variant string
}

type stubThemeSelector struct {
	selection *theme.Selection
	err       error
	calls     []selectorCall
}

func (s *stubThemeSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	s.calls = append(s.calls, selectorCall{name: name, variant: variant})
	return s.selection, s.err
}
