package components

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/widgets"
)

const templatePrefix = "templates/components/"

// Placeholders shown by empty controls.
const (
	SelectPlaceholder   = "Select an option..."
	TextareaPlaceholder = "Enter details here..."
	DatePlaceholder     = "dd/mm/yyyy"
	DatePattern         = `\d{2}/\d{2}/\d{4}`
	NoFileSelected      = "No file selected"
	SelectFile          = "Select File"
)

// templateWidgets lists the template-backed widgets with their theme
// partial key and bundled template.
var templateWidgets = []struct {
	widget, partialKey, file string
}{
	{widgets.WidgetInput, "forms.input", "input.tmpl"},
	{widgets.WidgetPassword, "forms.password", "password.tmpl"},
	{widgets.WidgetDate, "forms.date", "date.tmpl"},
	{widgets.WidgetTextarea, "forms.textarea", "textarea.tmpl"},
	{widgets.WidgetSelect, "forms.select", "select.tmpl"},
	{widgets.WidgetRadioGroup, "forms.radio-group", "radio_group.tmpl"},
	{widgets.WidgetCheckboxGroup, "forms.checkbox-group", "checkbox_group.tmpl"},
	{widgets.WidgetToggle, "forms.toggle", "toggle.tmpl"},
	{widgets.WidgetFile, "forms.file", "file.tmpl"},
}

// NewDefaultRegistry returns a registry drawing every built-in widget.
func NewDefaultRegistry() *Registry {
	registry := New()
	for _, w := range templateWidgets {
		registry.MustRegister(w.widget, Descriptor{
			PartialKey: w.partialKey,
			Template:   templatePrefix + w.file,
		})
	}
	registry.MustRegister(widgets.WidgetDescription, Descriptor{Renderer: descriptionRenderer})
	registry.MustRegister(widgets.WidgetUnsupported, Descriptor{Renderer: unsupportedRenderer})
	return registry
}

// DefaultPartials maps the partial key of every built-in widget to its
// bundled template.
func DefaultPartials() map[string]string {
	return NewDefaultRegistry().Partials()
}

// ControlView is the data passed to component templates.
type ControlView struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Label       string            `json:"label"`
	Type        string            `json:"type"`
	InputType   string            `json:"inputType"`
	Value       string            `json:"value"`
	Placeholder string            `json:"placeholder"`
	Pattern     string            `json:"pattern,omitempty"`
	Required    bool              `json:"required"`
	Invalid     bool              `json:"invalid"`
	Checked     bool              `json:"checked"`
	Options     []OptionView      `json:"options,omitempty"`
	File        *display.FileView `json:"file,omitempty"`
	EmptyFile   string            `json:"emptyFile,omitempty"`
	FileButton  string            `json:"fileButton,omitempty"`
}

// OptionView is one choice of a select, radio or checkbox group.
type OptionView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// NewControlView builds the template data for field with its current value.
func NewControlView(field model.Field, data ComponentData) ControlView {
	id := ControlID(field.Key())
	view := ControlView{
		ID:        id,
		Name:      field.Key(),
		Label:     display.PlainText(field.Label),
		Type:      field.TypeName(),
		InputType: widgets.InputType(field),
		Value:     data.Value,
		Required:  field.Required,
		Invalid:   data.Invalid,
	}

	switch field.Type {
	case model.FieldTypeDropdown:
		view.Placeholder = SelectPlaceholder
	case model.FieldTypeTextarea:
		view.Placeholder = TextareaPlaceholder
	case model.FieldTypeDate:
		view.Placeholder = DatePlaceholder
		view.Pattern = DatePattern
	case model.FieldTypeFile:
		view.EmptyFile = NoFileSelected
		view.FileButton = SelectFile
		if strings.TrimSpace(data.Value) != "" {
			file := display.File(data.Value)
			view.File = &file
		}
	case model.FieldTypeCheckbox:
		view.Checked = field.IsToggle() && data.Value == "true"
	}

	if field.HasOptions() {
		var selected map[string]struct{}
		if field.Type == model.FieldTypeCheckbox {
			selected = make(map[string]struct{})
			for _, token := range answers.SplitTokens(data.Value) {
				selected[token] = struct{}{}
			}
		}
		view.Options = make([]OptionView, 0, len(field.Options))
		for idx, opt := range field.Options {
			isSelected := opt.Value == data.Value
			if selected != nil {
				_, isSelected = selected[opt.Value]
			}
			view.Options = append(view.Options, OptionView{
				ID:       fmt.Sprintf("%s-%d", id, idx),
				Label:    opt.Label,
				Value:    opt.Value,
				Selected: isSelected,
			})
		}
	}
	return view
}

// ControlID is the DOM id of a field control.
func ControlID(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	return "fc-" + trimmed
}

func descriptionRenderer(buf *bytes.Buffer, field model.Field, _ ComponentData) error {
	buf.WriteString(`<div class="formcloud-description">`)
	buf.WriteString(display.SafeHTML(field.Label))
	buf.WriteString("</div>\n")
	return nil
}

func unsupportedRenderer(buf *bytes.Buffer, field model.Field, _ ComponentData) error {
	buf.WriteString(`<p class="formcloud-unsupported">Unsupported field type: `)
	buf.WriteString(html.EscapeString(field.TypeName()))
	buf.WriteString("</p>\n")
	return nil
}
