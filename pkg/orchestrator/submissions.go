package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/store"
)

// ConfirmFunc asks the user to confirm a destructive action.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// DeletePrompt is the confirmation shown before a record is deleted.
const DeletePrompt = "Are you sure you want to delete this form?"

// NewDraft starts an empty draft for the form.
func (o *Orchestrator) NewDraft(formID string) (*answers.Draft, error) {
	form, err := o.Form(formID)
	if err != nil {
		return nil, err
	}
	return answers.NewDraft(form), nil
}

// EditDraft loads a stored record into a draft so it can be revised.
func (o *Orchestrator) EditDraft(ctx context.Context, formID string, id uuid.UUID) (*answers.Draft, error) {
	form, record, err := o.entry(ctx, formID, id)
	if err != nil {
		return nil, err
	}
	return answers.EditDraft(form, record), nil
}

// Submit stores the answers in values as a new record of the form.
func (o *Orchestrator) Submit(ctx context.Context, formID string, values map[string]string) (answers.AnswerRecord, error) {
	form, err := o.Form(formID)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	draft, err := fill(form, values)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	return o.SubmitDraft(ctx, draft)
}

// SubmitDraft validates draft and inserts the resulting record.
func (o *Orchestrator) SubmitDraft(ctx context.Context, draft *answers.Draft) (answers.AnswerRecord, error) {
	form := draft.Schema()
	record, err := o.build(ctx, draft)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	if err := o.store.Insert(ctx, record); err != nil {
		return answers.AnswerRecord{}, o.fail(ctx, "insert", form, record.ID, err)
	}
	o.log(ctx).Info().Str("form", form.ID()).Str("record", record.ID.String()).Msg("submission stored")
	return record, nil
}

// Update replaces the answers of an existing record. The record keeps its id,
// form and creation time.
func (o *Orchestrator) Update(ctx context.Context, formID string, id uuid.UUID, values map[string]string) (answers.AnswerRecord, error) {
	form, existing, err := o.entry(ctx, formID, id)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	draft, err := fill(form, values)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	record, err := o.build(ctx, draft)
	if err != nil {
		return answers.AnswerRecord{}, err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt

	if err := o.store.Replace(ctx, record); err != nil {
		return answers.AnswerRecord{}, o.fail(ctx, "replace", form, id, err)
	}
	o.log(ctx).Info().Str("form", form.ID()).Str("record", id.String()).Msg("submission updated")
	return record, nil
}

// Entries lists the records of the form, newest first.
func (o *Orchestrator) Entries(ctx context.Context, formID string) ([]answers.AnswerRecord, error) {
	form, err := o.Form(formID)
	if err != nil {
		return nil, err
	}
	records, err := o.store.Query(ctx, form.ID())
	if err != nil {
		return nil, o.fail(ctx, "query", form, uuid.Nil, err)
	}
	store.SortNewestFirst(records)
	return records, nil
}

// Entry returns one record of the form.
func (o *Orchestrator) Entry(ctx context.Context, formID string, id uuid.UUID) (answers.AnswerRecord, error) {
	_, record, err := o.entry(ctx, formID, id)
	return record, err
}

// Delete removes a record after confirm approves DeletePrompt. It reports
// whether the record was deleted; a declined confirmation leaves it
// untouched. A nil confirm deletes without asking.
func (o *Orchestrator) Delete(ctx context.Context, formID string, id uuid.UUID, confirm ConfirmFunc) (bool, error) {
	form, _, err := o.entry(ctx, formID, id)
	if err != nil {
		return false, err
	}
	if confirm != nil {
		ok, err := confirm(ctx, DeletePrompt)
		if err != nil {
			return false, err
		}
		if !ok {
			o.log(ctx).Debug().Str("form", form.ID()).Str("record", id.String()).Msg("delete cancelled")
			return false, nil
		}
	}
	if err := o.store.Delete(ctx, id); err != nil {
		return false, o.fail(ctx, "delete", form, id, err)
	}
	o.log(ctx).Info().Str("form", form.ID()).Str("record", id.String()).Msg("submission deleted")
	return true, nil
}

func (o *Orchestrator) entry(ctx context.Context, formID string, id uuid.UUID) (model.FormSchema, answers.AnswerRecord, error) {
	form, err := o.Form(formID)
	if err != nil {
		return model.FormSchema{}, answers.AnswerRecord{}, err
	}
	record, err := o.store.Get(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return model.FormSchema{}, answers.AnswerRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return model.FormSchema{}, answers.AnswerRecord{}, o.fail(ctx, "get", form, id, err)
	}
	if record.FormID != form.ID() {
		return model.FormSchema{}, answers.AnswerRecord{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return form, record, nil
}

func (o *Orchestrator) build(ctx context.Context, draft *answers.Draft) (answers.AnswerRecord, error) {
	form := draft.Schema()
	record, err := draft.Build(o.now())
	if err != nil {
		o.log(ctx).Warn().Err(err).Str("form", form.ID()).Msg("submission rejected")
		o.show(err)
		return answers.AnswerRecord{}, err
	}
	if o.hashCost > 0 {
		hashed, err := answers.HashPasswords(form, record.Values, o.hashCost)
		if err != nil {
			return answers.AnswerRecord{}, fmt.Errorf("orchestrator: hash passwords: %w", err)
		}
		record.Values = hashed
	}
	return record, nil
}

// fail logs a storage failure and surfaces its message.
func (o *Orchestrator) fail(ctx context.Context, op string, form model.FormSchema, id uuid.UUID, err error) error {
	err = store.Wrap(op, id, err)
	event := o.log(ctx).Error().Err(err).Str("form", form.ID()).Str("op", op)
	if id != uuid.Nil {
		event = event.Str("record", id.String())
	}
	event.Msg("store operation failed")
	o.show(err)
	return err
}

func (o *Orchestrator) show(err error) {
	if o.flash == nil {
		return
	}
	if msg := UserMessage(err); msg != "" {
		o.flash.Show(msg)
	}
}

// fill seeds a draft from submitted values. Legacy uuid keys are accepted;
// keys matching no input field are ignored.
func fill(form model.FormSchema, values map[string]string) (*answers.Draft, error) {
	draft := answers.NewDraft(form)
	for key, value := range model.MigrateLegacyKeys(form, values) {
		err := draft.Set(key, value)
		switch {
		case err == nil:
		case errors.Is(err, answers.ErrUnknownField), errors.Is(err, answers.ErrDisplayOnly):
			continue
		default:
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
	}
	return draft, nil
}
