package orchestrator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/flash"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/openapi"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/store"
	"github.com/goliatone/go-formcloud/pkg/store/memory"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

type fixture struct {
	orch  *Orchestrator
	store *memory.Store
	flash *flash.Message
	now   time.Time
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.New(),
		flash: flash.New(flash.WithDelay(time.Hour)),
		now:   time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	base := []Option{
		WithCatalog(catalog.New(testsupport.AllFields(t), testsupport.Contact(t))),
		WithStore(f.store),
		WithFlash(f.flash),
		WithClock(func() time.Time {
			f.now = f.now.Add(time.Minute)
			return f.now
		}),
	}
	f.orch = New(append(base, opts...)...)
	return f
}

func contactAnswers() map[string]string {
	return map[string]string{"name": "Grace", "email": "grace@example.com", "topic": "sales"}
}

func allFieldsAnswers(interests string) map[string]string {
	return map[string]string{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"gender":     "female",
		"interests":  interests,
		"terms":      "true",
	}
}

func TestSubmitStoresRecord(t *testing.T) {
	f := newFixture(t)
	ctx := testsupport.Context()

	record, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)
	require.Equal(t, "Contact", record.FormID)
	require.NotEqual(t, uuid.Nil, record.ID)

	stored, err := f.orch.Entry(ctx, "Contact", record.ID)
	require.NoError(t, err)
	require.Equal(t, record.Values, stored.Values)

	_, visible := f.flash.Current()
	require.False(t, visible)
}

func TestSubmitIncomplete(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Submit(testsupport.Context(), "contact", map[string]string{"email": "x@example.com"})
	require.ErrorIs(t, err, validation.ErrIncomplete)
	require.Equal(t, validation.Message, UserMessage(err))
	require.Zero(t, f.store.Len())

	text, visible := f.flash.Current()
	require.True(t, visible)
	require.Equal(t, validation.Message, text)
}

func TestSubmitIgnoresUnknownKeys(t *testing.T) {
	f := newFixture(t)
	values := contactAnswers()
	values["nickname"] = "G"

	record, err := f.orch.Submit(testsupport.Context(), "contact", values)
	require.NoError(t, err)
	require.NotContains(t, record.Values, "nickname")

	out, err := f.orch.Render(testsupport.Context(), Request{FormID: "contact", RenderOptions: render.RenderOptions{Values: values}})
	require.NoError(t, err)
	require.NotEmpty(t, out)
}

func TestSubmitCheckboxOptions(t *testing.T) {
	f := newFixture(t)

	record, err := f.orch.Submit(testsupport.Context(), "all-fields", allFieldsAnswers("music,reading,music"))
	require.NoError(t, err)
	require.Equal(t, "music,reading", record.Values["interests"])

	_, err = f.orch.Submit(testsupport.Context(), "all-fields", allFieldsAnswers("music,not-an-option"))
	require.ErrorIs(t, err, answers.ErrUnknownOption)
	require.Equal(t, 1, f.store.Len())
}

func TestSubmitLegacyKeys(t *testing.T) {
	f := newFixture(t)

	record, err := f.orch.Submit(testsupport.Context(), "contact", map[string]string{
		"c-001": "Grace",
		"c-003": "support",
	})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"name": "Grace", "topic": "support"}, record.Values)
}

func TestSubmitStoreFailure(t *testing.T) {
	f := newFixture(t, WithStore(failingStore{err: errors.New("disk full")}))

	_, err := f.orch.Submit(testsupport.Context(), "contact", contactAnswers())
	require.ErrorIs(t, err, store.ErrStore)
	require.Equal(t, store.RetryMessage, UserMessage(err))

	text, _ := f.flash.Current()
	require.Equal(t, store.RetryMessage, text)
}

func TestSubmitUnknownForm(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.Submit(testsupport.Context(), "missing", nil)
	require.ErrorIs(t, err, ErrFormNotFound)
}

func TestPasswordHashing(t *testing.T) {
	f := newFixture(t, WithPasswordHashing(bcrypt.MinCost))
	values := map[string]string{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"gender":     "female",
		"interests":  "music",
		"terms":      "true",
		"password":   "s3cret",
	}

	record, err := f.orch.Submit(testsupport.Context(), "all-fields", values)
	require.NoError(t, err)
	require.True(t, answers.IsHashed(record.Values["password"]))
	require.True(t, answers.CheckPassword(record.Values["password"], "s3cret"))
}

func TestEntriesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := testsupport.Context()

	first, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)
	second, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)

	records, err := f.orch.Entries(ctx, "contact")
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, second.ID, records[0].ID)
	require.Equal(t, first.ID, records[1].ID)

	others, err := f.orch.Entries(ctx, "all-fields")
	require.NoError(t, err)
	require.Empty(t, others)
}

func TestEntryOfAnotherForm(t *testing.T) {
	f := newFixture(t)
	ctx := testsupport.Context()

	record, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)

	_, err = f.orch.Entry(ctx, "all-fields", record.ID)
	require.ErrorIs(t, err, ErrRecordNotFound)

	_, err = f.orch.Entry(ctx, "contact", uuid.New())
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestUpdateKeepsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := testsupport.Context()

	record, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)

	draft, err := f.orch.EditDraft(ctx, "contact", record.ID)
	require.NoError(t, err)
	require.NoError(t, draft.Set("topic", "support"))

	updated, err := f.orch.Update(ctx, "contact", record.ID, draft.Values())
	require.NoError(t, err)
	require.Equal(t, record.ID, updated.ID)
	require.True(t, record.CreatedAt.Equal(updated.CreatedAt))

	stored, err := f.orch.Entry(ctx, "contact", record.ID)
	require.NoError(t, err)
	require.Equal(t, "support", stored.Values["topic"])

	_, err = f.orch.Update(ctx, "contact", record.ID, map[string]string{"topic": "sales"})
	require.ErrorIs(t, err, validation.ErrIncomplete)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	f := newFixture(t)
	ctx := testsupport.Context()

	record, err := f.orch.Submit(ctx, "contact", contactAnswers())
	require.NoError(t, err)

	var prompts []string
	decline := func(_ context.Context, prompt string) (bool, error) {
		prompts = append(prompts, prompt)
		return false, nil
	}
	deleted, err := f.orch.Delete(ctx, "contact", record.ID, decline)
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, []string{DeletePrompt}, prompts)
	require.Equal(t, 1, f.store.Len())

	accept := func(context.Context, string) (bool, error) { return true, nil }
	deleted, err = f.orch.Delete(ctx, "contact", record.ID, accept)
	require.NoError(t, err)
	require.True(t, deleted)
	require.Zero(t, f.store.Len())

	_, err = f.orch.Delete(ctx, "contact", record.ID, accept)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestRenderDefaultRenderer(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Render(testsupport.Context(), Request{FormID: "contact"})
	require.NoError(t, err)
	require.Contains(t, string(out), "<title>Contact</title>")

	_, err = f.orch.Render(testsupport.Context(), Request{FormID: "contact", Renderer: "missing"})
	require.ErrorIs(t, err, render.ErrUnknownRenderer)
}

func TestRenderByContentType(t *testing.T) {
	capture := &captureRenderer{}
	pages, err := vanilla.New()
	require.NoError(t, err)
	registry := render.NewRegistry()
	registry.MustRegister(capture)
	registry.MustRegister(pages)
	f := newFixture(t, WithRegistry(registry), WithDefaultRenderer(capture.Name()))

	out, err := f.orch.Render(testsupport.Context(), Request{FormID: "contact", ContentType: "text/html"})
	require.NoError(t, err)
	require.Contains(t, string(out), "<form")

	out, err = f.orch.Render(testsupport.Context(), Request{FormID: "contact", ContentType: "application/pdf"})
	require.NoError(t, err)
	require.Equal(t, "CONTACT", string(out))
}

func TestRenderShowsFlash(t *testing.T) {
	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)
	f := newFixture(t, WithRegistry(registry), WithDefaultRenderer(renderer.Name()))

	f.flash.Show(validation.Message)
	_, err := f.orch.Render(testsupport.Context(), Request{FormID: "contact"})
	require.NoError(t, err)
	require.Equal(t, validation.Message, renderer.options.Message)
	require.Nil(t, renderer.options.Theme)
}

func TestOpenAPI(t *testing.T) {
	f := newFixture(t)

	doc, err := f.orch.OpenAPI(testsupport.Context(), openapi.Options{}, "contact")
	require.NoError(t, err)
	require.NotNil(t, doc.Paths.Value("/forms/contact/submissions"))
	require.Nil(t, doc.Paths.Value("/forms/all-fields/submissions"))

	all, err := f.orch.OpenAPI(testsupport.Context(), openapi.Options{})
	require.NoError(t, err)
	require.Equal(t, 2, all.Paths.Len())

	_, err = f.orch.OpenAPI(testsupport.Context(), openapi.Options{}, "missing")
	require.ErrorIs(t, err, ErrFormNotFound)
}

type failingStore struct {
	err error
}

func (s failingStore) Insert(context.Context, answers.AnswerRecord) error  { return s.err }
func (s failingStore) Replace(context.Context, answers.AnswerRecord) error { return s.err }
func (s failingStore) Delete(context.Context, uuid.UUID) error             { return s.err }
func (s failingStore) Get(context.Context, uuid.UUID) (answers.AnswerRecord, error) {
	return answers.AnswerRecord{}, s.err
}
func (s failingStore) Query(context.Context, string) ([]answers.AnswerRecord, error) {
	return nil, s.err
}
func (s failingStore) Close() error { return nil }

type captureRenderer struct {
	options render.RenderOptions
}

func (r *captureRenderer) Name() string {
	return "capture"
}

func (r *captureRenderer) ContentType() string {
	return "text/plain"
}

func (r *captureRenderer) Render(_ context.Context, form model.FormSchema, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte(strings.ToUpper(form.ID())), nil
}
