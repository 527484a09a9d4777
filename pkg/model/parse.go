package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects the document decoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type parseConfig struct {
	format      Format
	strictTypes bool
	labeler     Labeler
}

// ParseOption customises Parse.
type ParseOption func(*parseConfig)

// WithFormat selects the decoder. JSON is the default.
func WithFormat(format Format) ParseOption {
	return func(c *parseConfig) {
		if format != "" {
			c.format = format
		}
	}
}

// WithStrictTypes makes unknown field type tags a SchemaError instead of
// producing FieldTypeUnsupported fields.
func WithStrictTypes() ParseOption {
	return func(c *parseConfig) {
		c.strictTypes = true
	}
}

// WithLabeler overrides how blank labels are derived from field names.
func WithLabeler(labeler Labeler) ParseOption {
	return func(c *parseConfig) {
		if labeler != nil {
			c.labeler = labeler
		}
	}
}

// Parse decodes a schema document. Missing required keys and mismatched value
// types are reported as *SchemaError.
func Parse(raw []byte, opts ...ParseOption) (FormSchema, error) {
	cfg := parseConfig{format: FormatJSON, labeler: DefaultLabeler}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return FormSchema{}, &SchemaError{Reason: "empty document"}
	}

	var doc rawForm
	switch cfg.format {
	case FormatYAML:
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return FormSchema{}, yamlSchemaError(err)
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return FormSchema{}, jsonSchemaError(err)
		}
	}

	return doc.build(cfg)
}

// MustParse panics on error. Useful for tests and bundled forms.
func MustParse(raw []byte, opts ...ParseOption) FormSchema {
	schema, err := Parse(raw, opts...)
	if err != nil {
		panic(err)
	}
	return schema
}

type rawForm struct {
	Title    *string      `json:"title" yaml:"title"`
	Fields   *[]rawField  `json:"fields" yaml:"fields"`
	Sections []rawSection `json:"sections" yaml:"sections"`
}

type rawField struct {
	Type     *string     `json:"type" yaml:"type"`
	Label    *string     `json:"label" yaml:"label"`
	Name     *string     `json:"name" yaml:"name"`
	Required *bool       `json:"required" yaml:"required"`
	Options  []rawOption `json:"options" yaml:"options"`
	UUID     *string     `json:"uuid" yaml:"uuid"`
}

type rawOption struct {
	Label *string `json:"label" yaml:"label"`
	Value *string `json:"value" yaml:"value"`
}

type rawSection struct {
	Title *string `json:"title" yaml:"title"`
	From  *int    `json:"from" yaml:"from"`
	To    *int    `json:"to" yaml:"to"`
	Index *int    `json:"index" yaml:"index"`
	UUID  *string `json:"uuid" yaml:"uuid"`
}

func (r rawForm) build(cfg parseConfig) (FormSchema, error) {
	if r.Title == nil {
		return FormSchema{}, missingKey("title")
	}
	if r.Fields == nil {
		return FormSchema{}, missingKey("fields")
	}

	out := FormSchema{Title: *r.Title}
	out.Fields = make([]Field, 0, len(*r.Fields))
	for i, rf := range *r.Fields {
		field, err := rf.build(fmt.Sprintf("fields[%d]", i), cfg)
		if err != nil {
			return FormSchema{}, err
		}
		out.Fields = append(out.Fields, field)
	}

	if len(r.Sections) > 0 {
		out.Sections = make([]Section, 0, len(r.Sections))
		for i, rs := range r.Sections {
			section, err := rs.build(fmt.Sprintf("sections[%d]", i))
			if err != nil {
				return FormSchema{}, err
			}
			out.Sections = append(out.Sections, section)
		}
	}
	return out, nil
}

func (r rawField) build(path string, cfg parseConfig) (Field, error) {
	switch {
	case r.Type == nil:
		return Field{}, missingKey(path + ".type")
	case r.Label == nil:
		return Field{}, missingKey(path + ".label")
	case r.Name == nil:
		return Field{}, missingKey(path + ".name")
	case r.UUID == nil:
		return Field{}, missingKey(path + ".uuid")
	}

	fieldType, known := ParseFieldType(*r.Type)
	if !known && cfg.strictTypes {
		return Field{}, &SchemaError{Path: path + ".type", Reason: fmt.Sprintf("unsupported field type %q", *r.Type)}
	}

	field := Field{
		Type:  fieldType,
		Label: *r.Label,
		Name:  *r.Name,
		UUID:  *r.UUID,
	}
	if !known {
		field.RawType = *r.Type
	}
	if r.Required != nil {
		field.Required = *r.Required
	}
	if strings.TrimSpace(field.Label) == "" && fieldType != FieldTypeDescription {
		field.Label = cfg.labeler(field.Key())
	}

	if r.Options != nil {
		field.Options = make([]Option, 0, len(r.Options))
		for i, ro := range r.Options {
			optPath := fmt.Sprintf("%s.options[%d]", path, i)
			if ro.Label == nil {
				return Field{}, missingKey(optPath + ".label")
			}
			if ro.Value == nil {
				return Field{}, missingKey(optPath + ".value")
			}
			field.Options = append(field.Options, Option{Label: *ro.Label, Value: *ro.Value})
		}
	}
	return field, nil
}

func (r rawSection) build(path string) (Section, error) {
	switch {
	case r.Title == nil:
		return Section{}, missingKey(path + ".title")
	case r.From == nil:
		return Section{}, missingKey(path + ".from")
	case r.To == nil:
		return Section{}, missingKey(path + ".to")
	case r.Index == nil:
		return Section{}, missingKey(path + ".index")
	case r.UUID == nil:
		return Section{}, missingKey(path + ".uuid")
	}
	return Section{
		Title: *r.Title,
		From:  *r.From,
		To:    *r.To,
		Index: *r.Index,
		UUID:  *r.UUID,
	}, nil
}

func jsonSchemaError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &SchemaError{
			Path:   typeErr.Field,
			Reason: fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SchemaError{Reason: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)}
	}
	return &SchemaError{Reason: err.Error()}
}

func yamlSchemaError(err error) error {
	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) && len(typeErr.Errors) > 0 {
		return &SchemaError{Reason: strings.Join(typeErr.Errors, "; ")}
	}
	return &SchemaError{Reason: err.Error()}
}
