// Package widgets maps form fields onto the widget a renderer should draw.
// Renderers share the registry so the HTML page and the terminal prompts agree
// on how each field type is presented.
package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formcloud/pkg/model"
)

// Built-in widget identifiers.
const (
	WidgetInput         = "input"
	WidgetPassword      = "password"
	WidgetDate          = "date"
	WidgetTextarea      = "textarea"
	WidgetSelect        = "select"
	WidgetRadioGroup    = "radio-group"
	WidgetCheckboxGroup = "checkbox-group"
	WidgetToggle        = "toggle"
	WidgetFile          = "file"
	WidgetDescription   = "description"
	// WidgetUnsupported is the fallback for fields no matcher handles.
	WidgetUnsupported = "unsupported"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry selects widgets for fields. Higher priority wins; ties fall back
// to registration order.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in matchers registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a matcher with the provided name and priority.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget for field, WidgetUnsupported when nothing
// matches.
func (r *Registry) Resolve(field model.Field) string {
	if r == nil {
		return WidgetUnsupported
	}
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(field) {
			return entry.name
		}
	}
	return WidgetUnsupported
}

func ofType(types ...model.FieldType) Matcher {
	return func(field model.Field) bool {
		for _, t := range types {
			if field.Type == t {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetToggle, 90, func(field model.Field) bool {
		return field.IsToggle()
	})
	r.Register(WidgetCheckboxGroup, 80, func(field model.Field) bool {
		return field.Type == model.FieldTypeCheckbox && field.HasOptions()
	})
	r.Register(WidgetRadioGroup, 70, ofType(model.FieldTypeRadio))
	r.Register(WidgetSelect, 70, ofType(model.FieldTypeDropdown))
	r.Register(WidgetDate, 60, ofType(model.FieldTypeDate))
	r.Register(WidgetPassword, 60, ofType(model.FieldTypePassword))
	r.Register(WidgetTextarea, 60, ofType(model.FieldTypeTextarea))
	r.Register(WidgetFile, 60, ofType(model.FieldTypeFile))
	r.Register(WidgetDescription, 50, ofType(model.FieldTypeDescription))
	r.Register(WidgetInput, 10, ofType(model.FieldTypeText, model.FieldTypeEmail, model.FieldTypeNumber))
}

// InputType is the HTML input type for WidgetInput fields.
func InputType(field model.Field) string {
	switch field.Type {
	case model.FieldTypeEmail:
		return "email"
	case model.FieldTypeNumber:
		return "number"
	case model.FieldTypePassword:
		return "password"
	case model.FieldTypeDate:
		return "date"
	default:
		return "text"
	}
}
