package model

import "strings"

// FieldType is the closed set of field kinds a form can declare.
type FieldType string

const (
	FieldTypeText        FieldType = "text"
	FieldTypeEmail       FieldType = "email"
	FieldTypePassword    FieldType = "password"
	FieldTypeNumber      FieldType = "number"
	FieldTypeDate        FieldType = "date"
	FieldTypeRadio       FieldType = "radio"
	FieldTypeDropdown    FieldType = "dropdown"
	FieldTypeCheckbox    FieldType = "checkbox"
	FieldTypeTextarea    FieldType = "textarea"
	FieldTypeFile        FieldType = "file"
	FieldTypeDescription FieldType = "description"

	// FieldTypeUnsupported marks a tag the engine does not know. The raw tag
	// is preserved in Field.RawType.
	FieldTypeUnsupported FieldType = "unsupported"
)

// FieldTypes lists every supported type in declaration order.
var FieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePassword,
	FieldTypeNumber,
	FieldTypeDate,
	FieldTypeRadio,
	FieldTypeDropdown,
	FieldTypeCheckbox,
	FieldTypeTextarea,
	FieldTypeFile,
	FieldTypeDescription,
}

var typeAliases = map[string]FieldType{
	"select": FieldTypeDropdown,
}

// ParseFieldType maps a schema tag onto a FieldType. Tags are matched
// case-insensitively; the legacy "select" tag is an alias for dropdown.
// Unknown tags return FieldTypeUnsupported and false.
func ParseFieldType(tag string) (FieldType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if alias, ok := typeAliases[normalized]; ok {
		return alias, true
	}
	for _, t := range FieldTypes {
		if string(t) == normalized {
			return t, true
		}
	}
	return FieldTypeUnsupported, false
}

// IsInput reports whether the type collects an answer.
func (t FieldType) IsInput() bool {
	return t != FieldTypeDescription && t != FieldTypeUnsupported
}

// Choice reports whether values come from the field's options.
func (t FieldType) Choice() bool {
	switch t {
	case FieldTypeRadio, FieldTypeDropdown, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// Option is a selectable choice. Value is what gets stored, Label is what
// users see.
type Option struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// Field is one entry of a form.
type Field struct {
	Type     FieldType `json:"type"`
	RawType  string    `json:"rawType,omitempty"`
	Label    string    `json:"label"`
	Name     string    `json:"name"`
	Required bool      `json:"required"`
	Options  []Option  `json:"options,omitempty"`
	UUID     string    `json:"uuid"`
}

// Key is the answer key for the field: its name, or its uuid when the name is
// blank.
func (f Field) Key() string {
	if name := strings.TrimSpace(f.Name); name != "" {
		return f.Name
	}
	return f.UUID
}

// HasOptions reports whether the field declares at least one option.
func (f Field) HasOptions() bool {
	return len(f.Options) > 0
}

// IsToggle reports whether the field is a single boolean checkbox.
func (f Field) IsToggle() bool {
	return f.Type == FieldTypeCheckbox && !f.HasOptions()
}

// OptionLabel returns the label of the option whose value equals value.
func (f Field) OptionLabel(value string) (string, bool) {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}

// HasOption reports whether value is one of the declared option values.
func (f Field) HasOption(value string) bool {
	_, ok := f.OptionLabel(value)
	return ok
}

// TypeName is the tag shown to users; unsupported fields report their raw
// tag.
func (f Field) TypeName() string {
	if f.Type == FieldTypeUnsupported && f.RawType != "" {
		return f.RawType
	}
	return string(f.Type)
}

// Section groups an inclusive range of fields under an HTML title.
type Section struct {
	Title string `json:"title"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	Index int    `json:"index"`
	UUID  string `json:"uuid"`
}

// FormSchema is a parsed form definition. The title doubles as the form id.
type FormSchema struct {
	Title    string    `json:"title"`
	Fields   []Field   `json:"fields"`
	Sections []Section `json:"sections,omitempty"`
	// Name is the bundle name the schema was loaded under, e.g. "all-fields".
	Name string `json:"-"`
}

// ID returns the form identity.
func (s FormSchema) ID() string {
	return s.Title
}

// FieldByName returns the field whose name matches.
func (s FormSchema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByUUID returns the field whose uuid matches.
func (s FormSchema) FieldByUUID(id string) (Field, bool) {
	for _, f := range s.Fields {
		if f.UUID == id {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByKey resolves an answer key (see Field.Key).
func (s FormSchema) FieldByKey(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key() == key {
			return f, true
		}
	}
	return Field{}, false
}

// InputFields returns every field that collects an answer, in order.
func (s FormSchema) InputFields() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Type.IsInput() {
			out = append(out, f)
		}
	}
	return out
}

// FirstOfType returns the first n fields with the given type.
func (s FormSchema) FirstOfType(t FieldType, n int) []Field {
	var out []Field
	for _, f := range s.Fields {
		if len(out) == n {
			break
		}
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}
