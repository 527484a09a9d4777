package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
)

const (
	Version        = "3.0.3"
	datePattern    = `^\d{2}/\d{2}/\d{4}$`
	numberPattern  = `^-?\d+(\.\d+)?$`
	optionsPattern = `^[^,]+(,[^,]+)*$`
)

// Options tune the generated document.
type Options struct {
	Title      string
	APIVersion string
	ServerURL  string
}

// PathID is the path segment identifying form: its catalog name when known,
// otherwise its escaped title.
func PathID(form model.FormSchema) string {
	if name := strings.TrimSpace(form.Name); name != "" {
		return name
	}
	return url.PathEscape(form.ID())
}

// SubmissionPath is the collection path submissions of form are posted to.
func SubmissionPath(form model.FormSchema) string {
	return "/forms/" + PathID(form) + "/submissions"
}

// Build produces a validated document describing POST submissions for every
// form.
func Build(ctx context.Context, forms []model.FormSchema, opts Options) (*openapi3.T, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "formcloud"
		if len(forms) == 1 {
			title = display.PlainText(forms[0].Title)
		}
	}
	apiVersion := opts.APIVersion
	if apiVersion == "" {
		apiVersion = "1.0.0"
	}

	doc := &openapi3.T{
		OpenAPI: Version,
		Info:    &openapi3.Info{Title: title, Version: apiVersion},
		Paths:   openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
		},
	}
	if opts.ServerURL != "" {
		doc.Servers = openapi3.Servers{{URL: opts.ServerURL}}
	}

	for _, form := range forms {
		name := componentName(form)
		if _, exists := doc.Components.Schemas[name]; exists {
			return nil, fmt.Errorf("openapi: duplicate form %q", PathID(form))
		}
		doc.Components.Schemas[name] = openapi3.NewSchemaRef("", SubmissionSchema(form))
		doc.Paths.Set(SubmissionPath(form), submissionPathItem(form, name))
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("openapi: invalid document: %w", err)
	}
	return doc, nil
}

func submissionPathItem(form model.FormSchema, component string) *openapi3.PathItem {
	ref := "#/components/schemas/" + component
	body := openapi3.NewRequestBody().
		WithRequired(true).
		WithDescription("Answers keyed by field name.").
		WithJSONSchemaRef(openapi3.NewSchemaRef(ref, nil))

	created := openapi3.NewResponse().WithDescription("Submission stored.")
	invalid := openapi3.NewResponse().WithDescription("Required fields are missing.")
	failed := openapi3.NewResponse().WithDescription("The submission could not be stored.")

	op := openapi3.NewOperation()
	op.OperationID = "submit" + component
	op.Summary = "Submit " + display.PlainText(form.Title)
	op.Tags = []string{"submissions"}
	op.RequestBody = &openapi3.RequestBodyRef{Value: body}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(201, &openapi3.ResponseRef{Value: created}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: invalid}),
		openapi3.WithStatus(500, &openapi3.ResponseRef{Value: failed}),
	)
	return &openapi3.PathItem{Post: op}
}

// SubmissionSchema is the object schema of one submission: a string property
// per input field and the required list. Other properties are allowed and
// ignored on submit.
func SubmissionSchema(form model.FormSchema) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	schema.Title = display.PlainText(form.Title)

	for _, field := range form.InputFields() {
		schema.WithProperty(field.Key(), fieldSchema(field))
		if field.Required {
			schema.Required = append(schema.Required, field.Key())
		}
	}
	return schema
}

func fieldSchema(field model.Field) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Title = display.PlainText(field.Label)

	switch field.Type {
	case model.FieldTypeEmail:
		s.WithFormat("email")
	case model.FieldTypePassword:
		s.WithFormat("password")
	case model.FieldTypeFile:
		s.WithFormat("uri")
	case model.FieldTypeDate:
		s.WithPattern(datePattern)
		s.Description = "Date as dd/MM/yyyy."
	case model.FieldTypeNumber:
		s.WithPattern(numberPattern)
	case model.FieldTypeRadio, model.FieldTypeDropdown:
		s.WithEnum(optionValues(field)...)
	case model.FieldTypeCheckbox:
		if field.IsToggle() {
			if field.Required {
				s.WithEnum("true")
			} else {
				s.WithEnum("true", "false")
			}
			break
		}
		s.WithPattern(optionsPattern)
		s.Description = "Comma separated option values: " + strings.Join(stringValues(field), ", ") + "."
	}
	return s
}

// Validate checks values against the submission schema of form. Blank values
// count as absent.
func Validate(form model.FormSchema, values map[string]string) error {
	payload := make(map[string]any, len(values))
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			continue
		}
		payload[key] = value
	}
	schema := SubmissionSchema(form)
	if err := schema.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("openapi: submission does not match %q: %w", form.ID(), err)
	}
	for _, field := range form.Fields {
		if field.Type != model.FieldTypeCheckbox || field.IsToggle() {
			continue
		}
		for _, token := range answers.SplitTokens(values[field.Key()]) {
			if !field.HasOption(token) {
				return fmt.Errorf("openapi: submission does not match %q: %w", form.ID(), &OptionError{Field: field.Key(), Token: token})
			}
		}
	}
	return nil
}

var nonWord = regexp.MustCompile(`[^A-Za-z0-9]+`)

func componentName(form model.FormSchema) string {
	base := PathID(form)
	if unescaped, err := url.PathUnescape(base); err == nil {
		base = unescaped
	}
	var b strings.Builder
	for _, part := range nonWord.Split(base, -1) {
		if part == "" {
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	if b.Len() == 0 {
		b.WriteString("Form")
	}
	b.WriteString("Submission")
	return b.String()
}

func optionValues(field model.Field) []any {
	out := make([]any, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, opt.Value)
	}
	return out
}

func stringValues(field model.Field) []string {
	out := make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		out = append(out, opt.Value)
	}
	return out
}

// OptionError reports a checkbox token that is not one of the field's
// option values. It matches answers.ErrUnknownOption.
type OptionError struct {
	Field string
	Token string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("%v: %q on %q", answers.ErrUnknownOption, e.Token, e.Field)
}

func (e *OptionError) Unwrap() error { return answers.ErrUnknownOption }

// Reason is the client-facing text of the violation.
func (e *OptionError) Reason() string {
	return fmt.Sprintf("value %q is not one of the allowed options", e.Token)
}

func violations(err error) []error {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		return multi
	}
	return []error{err}
}

// FieldErrors groups the property violations reported by Validate by answer
// key. Violations of the object itself, such as a missing required property,
// are not included.
func FieldErrors(err error) map[string][]string {
	out := make(map[string][]string)
	for _, violation := range violations(err) {
		var optionErr *OptionError
		if errors.As(violation, &optionErr) {
			out[optionErr.Field] = append(out[optionErr.Field], optionErr.Reason())
			continue
		}
		var schemaErr *openapi3.SchemaError
		if !errors.As(violation, &schemaErr) {
			continue
		}
		pointer := schemaErr.JSONPointer()
		if len(pointer) == 0 || schemaErr.SchemaField == "required" {
			continue
		}
		out[pointer[0]] = append(out[pointer[0]], schemaErr.Reason)
	}
	return out
}

// Reasons lists the violations reported by Validate as short "key: reason"
// lines, without the schema or value dumps of the underlying errors.
func Reasons(err error) []string {
	var out []string
	for _, violation := range violations(err) {
		var optionErr *OptionError
		if errors.As(violation, &optionErr) {
			out = append(out, optionErr.Field+": "+optionErr.Reason())
			continue
		}
		var schemaErr *openapi3.SchemaError
		if !errors.As(violation, &schemaErr) {
			continue
		}
		if pointer := schemaErr.JSONPointer(); len(pointer) > 0 {
			out = append(out, strings.Join(pointer, ".")+": "+schemaErr.Reason)
			continue
		}
		out = append(out, schemaErr.Reason)
	}
	return out
}
