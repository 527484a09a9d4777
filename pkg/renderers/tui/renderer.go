package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/validation"
	"github.com/goliatone/go-formcloud/pkg/widgets"
)

// Prompt texts.
const (
	SelectPlaceholder = "Select an option..."
	TextareaHelp      = "Enter details here..."
	DateHelp          = "dd/mm/yyyy"
	FileHelp          = "No file selected. Enter a URL or path."
	RequiredError     = "this field is required"
)

// ErrIncomplete is returned by Fill when the round limit is reached with
// required fields still unanswered.
var ErrIncomplete = errors.New("tui: required fields still missing")

// Renderer fills forms interactively in a terminal.
type Renderer struct {
	driver       PromptDriver
	out          io.Writer
	outputFormat OutputFormat
	theme        Theme
	maxRounds    int
	now          func() time.Time
	widgets      *widgets.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		now:          time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(r.out)
	}
	if r.widgets == nil {
		r.widgets = widgets.NewRegistry()
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	if r.outputFormat == OutputFormatPrettyText {
		return "text/plain; charset=utf-8"
	}
	return "application/json"
}

// Render prompts for every field, seeded with opts.Values, and serializes the
// answers once the form is complete.
func (r *Renderer) Render(ctx context.Context, form model.FormSchema, opts render.RenderOptions) ([]byte, error) {
	draft := answers.NewDraft(form)
	seed(draft, opts.Values)
	if err := r.Fill(ctx, draft); err != nil {
		return nil, err
	}
	return r.serialize(form, draft.Values())
}

// Collect fills a fresh draft seeded with values and builds the record.
func (r *Renderer) Collect(ctx context.Context, form model.FormSchema, values map[string]string) (answers.AnswerRecord, error) {
	draft := answers.NewDraft(form)
	seed(draft, values)
	if err := r.Fill(ctx, draft); err != nil {
		return answers.AnswerRecord{}, err
	}
	return draft.Build(r.now())
}

// Fill walks the form section by section, then asks again for required
// fields that are still unanswered.
func (r *Renderer) Fill(ctx context.Context, draft *answers.Draft) error {
	if ctx == nil {
		return errors.New("tui: context is required")
	}
	if r.driver == nil {
		return errors.New("tui: prompt driver is nil")
	}
	form := draft.Schema()

	if title := display.PlainText(form.Title); title != "" {
		if err := r.info(ctx, r.theme.SectionPrefix, title); err != nil {
			return err
		}
	}
	for _, group := range form.Groups() {
		if !group.Implicit {
			if err := r.info(ctx, r.theme.SectionPrefix, display.PlainText(group.Title)); err != nil {
				return err
			}
		}
		for _, field := range group.Fields {
			if err := r.promptField(ctx, draft, field); err != nil {
				return err
			}
		}
	}

	for round := 1; !draft.Complete(); round++ {
		if r.maxRounds > 0 && round > r.maxRounds {
			return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(draft.Missing(), ", "))
		}
		if err := r.info(ctx, r.theme.ErrorPrefix, validation.Message); err != nil {
			return err
		}
		for _, key := range draft.Missing() {
			field, _ := form.FieldByKey(key)
			if err := r.promptField(ctx, draft, field); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) promptField(ctx context.Context, draft *answers.Draft, field model.Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := field.Key()
	current, _ := draft.Value(key)
	label := promptLabel(field)

	switch widget := r.widgets.Resolve(field); widget {
	case widgets.WidgetDescription:
		return r.info(ctx, r.theme.InfoPrefix, display.PlainText(field.Label))
	case widgets.WidgetToggle:
		checked, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current == "true"})
		if err != nil {
			return err
		}
		return draft.SetChecked(key, checked)
	case widgets.WidgetCheckboxGroup:
		return r.promptOptions(ctx, draft, field, label)
	case widgets.WidgetRadioGroup, widgets.WidgetSelect:
		return r.promptChoice(ctx, draft, field, label, current)
	case widgets.WidgetPassword:
		value, err := r.driver.Password(ctx, InputConfig{Message: label, Validator: requiredValidator(field)})
		if err != nil {
			return err
		}
		if value == "" && current != "" {
			return nil
		}
		return answer(draft, key, value)
	case widgets.WidgetTextarea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{Message: label, Default: current, Help: TextareaHelp})
		if err != nil {
			return err
		}
		return answer(draft, key, value)
	case widgets.WidgetInput, widgets.WidgetDate, widgets.WidgetFile:
		cfg := InputConfig{Message: label, Default: current, Validator: inputValidator(field)}
		switch widget {
		case widgets.WidgetDate:
			cfg.Help = DateHelp
		case widgets.WidgetFile:
			cfg.Help = FileHelp
		}
		value, err := r.driver.Input(ctx, cfg)
		if err != nil {
			return err
		}
		return answer(draft, key, strings.TrimSpace(value))
	default:
		return r.info(ctx, r.theme.InfoPrefix, "Unsupported field type: "+field.TypeName())
	}
}

func (r *Renderer) promptChoice(ctx context.Context, draft *answers.Draft, field model.Field, label, current string) error {
	options := make([]string, 0, len(field.Options)+1)
	offset := 0
	if !field.Required || field.Type == model.FieldTypeDropdown {
		options = append(options, SelectPlaceholder)
		offset = 1
	}
	defaultIdx := 0
	for idx, opt := range field.Options {
		options = append(options, opt.Label)
		if opt.Value == current {
			defaultIdx = idx + offset
		}
	}

	idx, err := r.driver.Select(ctx, SelectConfig{Message: label, Options: options, DefaultIndex: defaultIdx})
	if err != nil {
		return err
	}
	idx -= offset
	if idx < 0 || idx >= len(field.Options) {
		draft.Unset(field.Key())
		return nil
	}
	return draft.Set(field.Key(), field.Options[idx].Value)
}

// promptOptions applies the multi-select result through ToggleOption so the
// stored order stays the order of selection.
func (r *Renderer) promptOptions(ctx context.Context, draft *answers.Draft, field model.Field, label string) error {
	key := field.Key()
	current := draft.Selected(key)
	selected := make(map[string]bool, len(current))
	for _, token := range current {
		selected[token] = true
	}

	labels := make([]string, len(field.Options))
	var defaults []int
	for idx, opt := range field.Options {
		labels[idx] = opt.Label
		if selected[opt.Value] {
			defaults = append(defaults, idx)
		}
	}

	chosenIdx, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Defaults: defaults})
	if err != nil {
		return err
	}
	chosen := make(map[string]bool, len(chosenIdx))
	for _, idx := range chosenIdx {
		if idx >= 0 && idx < len(field.Options) {
			chosen[field.Options[idx].Value] = true
		}
	}

	for _, token := range current {
		if !chosen[token] && field.HasOption(token) {
			if err := draft.ToggleOption(key, token); err != nil {
				return err
			}
		}
	}
	for _, opt := range field.Options {
		if chosen[opt.Value] && !selected[opt.Value] {
			if err := draft.ToggleOption(key, opt.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

// answer records value, or forgets the field when the prompt was left blank.
func answer(draft *answers.Draft, key, value string) error {
	if strings.TrimSpace(value) == "" {
		draft.Unset(key)
		return nil
	}
	return draft.Set(key, value)
}

func (r *Renderer) info(ctx context.Context, prefix, msg string) error {
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	return r.driver.Info(ctx, prefix+msg)
}

func (r *Renderer) serialize(form model.FormSchema, values map[string]string) ([]byte, error) {
	if r.outputFormat == OutputFormatPrettyText {
		var buf bytes.Buffer
		for _, entry := range display.Detail(form, answers.AnswerRecord{Values: values}) {
			fmt.Fprintf(&buf, "%s: %s\n", entry.Label, entry.Value)
		}
		return buf.Bytes(), nil
	}
	out, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("tui: encode answers: %w", err)
	}
	return out, nil
}

func seed(draft *answers.Draft, values map[string]string) {
	for key, value := range model.MigrateLegacyKeys(draft.Schema(), values) {
		// unknown keys are dropped
		_ = draft.Set(key, value)
	}
}

func promptLabel(field model.Field) string {
	label := display.PlainText(field.Label)
	if field.Required {
		label += " *"
	}
	return label
}

func requiredValidator(field model.Field) func(string) error {
	if !field.Required {
		return nil
	}
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.New(RequiredError)
		}
		return nil
	}
}

func inputValidator(field model.Field) func(string) error {
	required := requiredValidator(field)
	return func(value string) error {
		if required != nil {
			if err := required(value); err != nil {
				return err
			}
		}
		value = strings.TrimSpace(value)
		if value == "" {
			return nil
		}
		switch field.Type {
		case model.FieldTypeNumber:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return fmt.Errorf("%q is not a number", value)
			}
		case model.FieldTypeDate:
			if _, err := time.Parse(display.DateLayout, value); err != nil {
				return fmt.Errorf("%q is not a date (%s)", value, DateHelp)
			}
		}
		return nil
	}
}
