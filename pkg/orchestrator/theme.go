package orchestrator

import (
	"fmt"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ManifestSelector implements theme.ThemeSelector over a fixed set of
// manifests. An empty name selects the first manifest by name.
type ManifestSelector struct {
	manifests map[string]*theme.Manifest
	names     []string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector validates manifests through a go-theme registry and
// indexes them by name.
func NewManifestSelector(manifests ...*theme.Manifest) (*ManifestSelector, error) {
	registry := theme.NewRegistry()
	s := &ManifestSelector{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("orchestrator: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
		s.names = append(s.names, manifest.Name)
	}
	sort.Strings(s.names)
	return s, nil
}

// Select resolves name and variant. Unknown themes and variants are errors.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if len(s.names) == 0 {
			return nil, fmt.Errorf("orchestrator: no themes registered")
		}
		name = s.names[0]
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("orchestrator: theme %q not registered", name)
	}
	variant = strings.TrimSpace(variant)
	if variant != "" {
		if _, ok := manifest.Variants[variant]; !ok {
			return nil, fmt.Errorf("orchestrator: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ThemeConfig resolves the renderer configuration for name and variant,
// falling back to the configured defaults. It returns nil when no selector is
// configured.
func (o *Orchestrator) ThemeConfig(name, variant string) (*theme.RendererConfig, error) {
	if o.themeSelector == nil {
		return nil, nil
	}
	if name == "" {
		name = o.defaultTheme
	}
	if variant == "" {
		variant = o.defaultVariant
	}

	selection, err := o.themeSelector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: select theme: %w", err)
	}
	if selection == nil || selection.Manifest == nil {
		return nil, fmt.Errorf("orchestrator: theme %q resolved without a manifest", name)
	}
	return rendererConfig(selection, o.themeFallbacks), nil
}

// rendererConfig flattens a selection: variant tokens, templates and assets
// override the manifest's, fallbacks fill partials the theme leaves out.
func rendererConfig(selection *theme.Selection, fallbacks map[string]string) *theme.RendererConfig {
	manifest := selection.Manifest
	variant, hasVariant := manifest.Variants[selection.Variant]

	partials := make(map[string]string, len(fallbacks)+len(manifest.Templates))
	merge(partials, fallbacks)
	merge(partials, manifest.Templates)

	tokens := make(map[string]string, len(manifest.Tokens))
	merge(tokens, manifest.Tokens)

	prefix := manifest.Assets.Prefix
	files := make(map[string]string, len(manifest.Assets.Files))
	merge(files, manifest.Assets.Files)

	if hasVariant {
		merge(partials, variant.Templates)
		merge(tokens, variant.Tokens)
		merge(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+strings.TrimPrefix(key, "--")] = value
	}

	prefix = strings.TrimRight(prefix, "/")
	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: partials,
		Tokens:   tokens,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file := strings.TrimSpace(files[key])
			if file == "" {
				return ""
			}
			if strings.Contains(file, "://") || strings.HasPrefix(file, "/") {
				return file
			}
			return prefix + "/" + file
		},
	}
}

func merge(dst, src map[string]string) {
	for key, value := range src {
		if strings.TrimSpace(value) == "" {
			continue
		}
		dst[key] = value
	}
}
