package components

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-formcloud/pkg/model"
	rendertemplate "github.com/goliatone/go-formcloud/pkg/render/template"
)

// Renderer writes the control markup for one field into buf.
type Renderer func(buf *bytes.Buffer, field model.Field, data ComponentData) error

// ComponentData carries the per-field state and helpers a component renderer
// needs.
type ComponentData struct {
	Template rendertemplate.TemplateRenderer
	// Value is the current answer for the field, "" when unanswered.
	Value string
	// Invalid marks the control as failing validation.
	Invalid bool
	// Partials maps partial keys ("forms.input") to theme template overrides.
	Partials map[string]string
}

// Descriptor describes how one widget is drawn. A descriptor backed by a
// template sets Template, and PartialKey when themes may override it; its
// Renderer is derived on registration. Code-drawn widgets set Renderer.
type Descriptor struct {
	Name        string
	PartialKey  string
	Template    string
	Renderer    Renderer
	Stylesheets []string
}

// Registry maps widget names to descriptors. Names are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	byKey map[string]Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byKey: make(map[string]Descriptor)}
}

// Register stores descriptor under widget, replacing any previous entry.
func (r *Registry) Register(widget string, descriptor Descriptor) error {
	name := normalize(widget)
	if name == "" {
		return errors.New("components: widget name is required")
	}
	descriptor.Template = strings.TrimSpace(descriptor.Template)
	if descriptor.Renderer == nil && descriptor.Template != "" {
		descriptor.Renderer = templateRenderer(descriptor.PartialKey, descriptor.Template)
	}
	if descriptor.Renderer == nil {
		return fmt.Errorf("components: %q needs a renderer or a template", name)
	}
	descriptor.Name = name
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)

	r.mu.Lock()
	r.byKey[name] = descriptor
	r.mu.Unlock()
	return nil
}

// MustRegister is Register for static wiring.
func (r *Registry) MustRegister(widget string, descriptor Descriptor) {
	if err := r.Register(widget, descriptor); err != nil {
		panic(err)
	}
}

// Descriptor returns a copy of the descriptor registered for widget.
func (r *Registry) Descriptor(widget string) (Descriptor, bool) {
	r.mu.RLock()
	descriptor, ok := r.byKey[normalize(widget)]
	r.mu.RUnlock()
	if !ok {
		return Descriptor{}, false
	}
	descriptor.Stylesheets = slices.Clone(descriptor.Stylesheets)
	return descriptor, true
}

// Names returns the registered widget names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byKey))
}

// Partials maps the partial key of every overridable descriptor to its
// template.
func (r *Registry) Partials() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string)
	for _, descriptor := range r.byKey {
		if descriptor.PartialKey != "" && descriptor.Template != "" {
			out[descriptor.PartialKey] = descriptor.Template
		}
	}
	return out
}

// Stylesheets collects the stylesheets of the named widgets, first seen
// first, without duplicates.
func (r *Registry) Stylesheets(widgets []string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for _, widget := range widgets {
		for _, href := range r.byKey[normalize(widget)].Stylesheets {
			if href != "" && !slices.Contains(out, href) {
				out = append(out, href)
			}
		}
	}
	return out
}

// templateRenderer draws a control from a template, preferring the theme
// partial registered under partialKey.
func templateRenderer(partialKey, name string) Renderer {
	return func(buf *bytes.Buffer, field model.Field, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: no template renderer for %q", name)
		}
		resolved := name
		if override := strings.TrimSpace(data.Partials[partialKey]); partialKey != "" && override != "" {
			resolved = override
		}
		_, err := data.Template.RenderTemplate(resolved, map[string]any{
			"control": NewControlView(field, data),
		}, buf)
		if err != nil {
			return fmt.Errorf("components: render %q: %w", resolved, err)
		}
		return nil
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
