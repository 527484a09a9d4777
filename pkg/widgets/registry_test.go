package widgets

import (
	"testing"

	"github.com/goliatone/go-formcloud/pkg/model"
)

func TestResolve_Builtins(t *testing.T) {
	reg := NewRegistry()
	options := []model.Option{{Label: "A", Value: "a"}}

	cases := []struct {
		name   string
		field  model.Field
		expect string
	}{
		{"text", model.Field{Type: model.FieldTypeText}, WidgetInput},
		{"email", model.Field{Type: model.FieldTypeEmail}, WidgetInput},
		{"number", model.Field{Type: model.FieldTypeNumber}, WidgetInput},
		{"password", model.Field{Type: model.FieldTypePassword}, WidgetPassword},
		{"date", model.Field{Type: model.FieldTypeDate}, WidgetDate},
		{"radio", model.Field{Type: model.FieldTypeRadio, Options: options}, WidgetRadioGroup},
		{"dropdown", model.Field{Type: model.FieldTypeDropdown, Options: options}, WidgetSelect},
		{"checkbox options", model.Field{Type: model.FieldTypeCheckbox, Options: options}, WidgetCheckboxGroup},
		{"checkbox single", model.Field{Type: model.FieldTypeCheckbox}, WidgetToggle},
		{"textarea", model.Field{Type: model.FieldTypeTextarea}, WidgetTextarea},
		{"file", model.Field{Type: model.FieldTypeFile}, WidgetFile},
		{"description", model.Field{Type: model.FieldTypeDescription}, WidgetDescription},
		{"unsupported", model.Field{Type: model.FieldTypeUnsupported, RawType: "signature"}, WidgetUnsupported},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reg.Resolve(tc.field); got != tc.expect {
				t.Fatalf("expected %q, got %q", tc.expect, got)
			}
		})
	}
}

func TestResolve_PriorityAndOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register("rating", 100, func(field model.Field) bool {
		return field.Type == model.FieldTypeNumber && field.Name == "score"
	})

	if got := reg.Resolve(model.Field{Type: model.FieldTypeNumber, Name: "score"}); got != "rating" {
		t.Fatalf("expected higher priority custom widget, got %q", got)
	}
	if got := reg.Resolve(model.Field{Type: model.FieldTypeNumber, Name: "age"}); got != WidgetInput {
		t.Fatalf("expected builtin for other numbers, got %q", got)
	}

	reg.Register("first", 5, func(model.Field) bool { return true })
	reg.Register("second", 5, func(model.Field) bool { return true })
	if got := reg.Resolve(model.Field{Type: model.FieldTypeUnsupported}); got != "first" {
		t.Fatalf("ties should keep registration order, got %q", got)
	}
}

func TestResolve_EmptyRegistry(t *testing.T) {
	var reg *Registry
	if got := reg.Resolve(model.Field{Type: model.FieldTypeText}); got != WidgetUnsupported {
		t.Fatalf("nil registry should fall back, got %q", got)
	}
	if got := (&Registry{}).Resolve(model.Field{Type: model.FieldTypeText}); got != WidgetUnsupported {
		t.Fatalf("empty registry should fall back, got %q", got)
	}
}

func TestInputType(t *testing.T) {
	if InputType(model.Field{Type: model.FieldTypeEmail}) != "email" {
		t.Fatalf("email input type")
	}
	if InputType(model.Field{Type: model.FieldTypeText}) != "text" {
		t.Fatalf("text input type")
	}
}
