package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	theme "github.com/goliatone/go-theme"
	"github.com/google/uuid"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/openapi"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

type format int

const (
	formatJSON format = iota
	formatHTML
)

// negotiate picks the reply format from ?format= or the Accept header.
func negotiate(r *http.Request, fallback format) format {
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "json":
		return formatJSON
	case "html":
		return formatHTML
	}
	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "text/html"):
		return formatHTML
	case strings.Contains(accept, "application/json"):
		return formatJSON
	}
	return fallback
}

type formLinks struct {
	Self        string `json:"self"`
	Submissions string `json:"submissions"`
	OpenAPI     string `json:"openapi"`
}

type formSummary struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Fields   int       `json:"fields"`
	Sections int       `json:"sections"`
	Links    formLinks `json:"links"`
}

type formDetail struct {
	formSummary
	Schema model.FormSchema `json:"schema"`
}

type skippedForm struct {
	Form     string `json:"form"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error"`
}

type formList struct {
	Forms   []formSummary `json:"forms"`
	Skipped []skippedForm `json:"skipped,omitempty"`
}

type recordView struct {
	ID        uuid.UUID         `json:"id"`
	FormID    string            `json:"parentFormId"`
	Values    map[string]string `json:"fieldValues"`
	CreatedAt time.Time         `json:"createdAt"`
	Summary   display.Summary   `json:"summary"`
	Entries   []display.Entry   `json:"entries,omitempty"`
}

func formURL(form model.FormSchema) string {
	return "/forms/" + openapi.PathID(form)
}

func entryURL(form model.FormSchema, id string) string {
	return openapi.SubmissionPath(form) + "/" + id
}

func summarize(form model.FormSchema) formSummary {
	base := formURL(form)
	return formSummary{
		ID:       openapi.PathID(form),
		Title:    form.ID(),
		Fields:   len(form.Fields),
		Sections: len(form.Sections),
		Links: formLinks{
			Self:        base,
			Submissions: openapi.SubmissionPath(form),
			OpenAPI:     base + "/openapi.json",
		},
	}
}

// maskedValues hides password answers from API replies.
func maskedValues(form model.FormSchema, values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		if field, ok := form.FieldByKey(key); ok && field.Type == model.FieldTypePassword && value != "" {
			value = display.PasswordMask
		}
		out[key] = value
	}
	return out
}

func (s *Server) view(form model.FormSchema, record answers.AnswerRecord, detail bool) recordView {
	v := recordView{
		ID:        record.ID,
		FormID:    record.FormID,
		Values:    maskedValues(form, model.MigrateLegacyKeys(form, record.Values)),
		CreatedAt: record.CreatedAt,
		Summary:   display.Summarize(form, record, s.location),
	}
	if detail {
		v.Entries = display.Detail(form, record)
	}
	return v
}

func (s *Server) form(r *http.Request) (model.FormSchema, error) {
	id := chi.URLParam(r, "formID")
	if unescaped, err := url.PathUnescape(id); err == nil {
		id = unescaped
	}
	return s.orch.Form(id)
}

func recordID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q: %v", orchestrator.ErrRecordNotFound, chi.URLParam(r, "recordID"), err)
	}
	return id, nil
}

// fail replies with the error in the negotiated format.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, f format, err error) {
	status, body := classify(err)
	event := logging.FromContext(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = logging.FromContext(r.Context()).Error()
	}
	event.Err(err).Int("status", status).Msg("request failed")

	if f == formatHTML {
		http.Error(w, body.Message, status)
		return
	}
	writeJSON(w, status, Response{Error: body})
}

func (s *Server) themeConfig(r *http.Request) *theme.RendererConfig {
	cfg, err := s.orch.ThemeConfig(r.URL.Query().Get("theme"), r.URL.Query().Get("variant"))
	if err != nil {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("theme selection failed")
		return nil
	}
	return cfg
}

func writeHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (s *Server) listForms(w http.ResponseWriter, r *http.Request) {
	catalog := s.orch.Catalog()
	list := formList{Forms: make([]formSummary, 0, catalog.Len())}
	for _, form := range catalog.Forms() {
		list.Forms = append(list.Forms, summarize(form))
	}
	for _, skipped := range catalog.Skipped() {
		list.Skipped = append(list.Skipped, skippedForm{
			Form:     skipped.Form,
			Location: skipped.Location,
			Error:    skipped.Error(),
		})
	}
	ok(w, list)
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	f := negotiate(r, formatHTML)
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	if f == formatJSON {
		ok(w, formDetail{formSummary: summarize(form), Schema: form})
		return
	}
	s.renderForm(w, r, form, nil, nil, "", http.StatusOK)
}

// renderForm writes the fill page, prefilled with values and errors when a
// submission was rejected.
func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, form model.FormSchema, values map[string]string, errs map[string][]string, message string, status int) {
	out, err := s.orch.Render(r.Context(), orchestrator.Request{
		FormID:       form.ID(),
		ContentType:  "text/html",
		ThemeName:    r.URL.Query().Get("theme"),
		ThemeVariant: r.URL.Query().Get("variant"),
		RenderOptions: render.RenderOptions{
			Action:  openapi.SubmissionPath(form),
			Method:  http.MethodPost,
			Values:  values,
			Errors:  errs,
			Message: message,
		},
	})
	if err != nil {
		s.fail(w, r, formatHTML, err)
		return
	}
	writeHTML(w, status, out)
}

func (s *Server) formContract(w http.ResponseWriter, r *http.Request) {
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, formatJSON, err)
		return
	}
	doc, err := s.orch.OpenAPI(r.Context(), s.contract, form.ID())
	if err != nil {
		s.fail(w, r, formatJSON, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(doc)
}

func (s *Server) listSubmissions(w http.ResponseWriter, r *http.Request) {
	f := negotiate(r, formatJSON)
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	records, err := s.orch.Entries(r.Context(), form.ID())
	if err != nil {
		s.fail(w, r, f, err)
		return
	}

	if f == formatJSON {
		views := make([]recordView, 0, len(records))
		for _, record := range records {
			views = append(views, s.view(form, record, false))
		}
		ok(w, views)
		return
	}

	out, err := s.pages.RenderEntries(r.Context(), form, records, vanilla.PageOptions{
		NewURL:   formURL(form),
		EntryURL: func(id string) string { return entryURL(form, id) },
		Location: s.location,
		Theme:    s.themeConfig(r),
	})
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	writeHTML(w, http.StatusOK, out)
}

func (s *Server) createSubmission(w http.ResponseWriter, r *http.Request) {
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, negotiate(r, formatJSON), err)
		return
	}
	values, f, err := decodeAnswers(w, r, form)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	values = model.MigrateLegacyKeys(form, values)

	if validation.IsComplete(form, values) {
		if err := openapi.Validate(form, values); err != nil {
			err = &invalidAnswersError{err: err, fields: openapi.FieldErrors(err)}
			s.reject(w, r, f, form, values, err)
			return
		}
	}

	record, err := s.orch.Submit(r.Context(), form.ID(), values)
	if err != nil {
		s.reject(w, r, f, form, values, err)
		return
	}

	if f == formatHTML {
		http.Redirect(w, r, entryURL(form, record.ID.String()), http.StatusSeeOther)
		return
	}
	w.Header().Set("Location", entryURL(form, record.ID.String()))
	created(w, s.view(form, record, false))
}

// reject answers a failed submission. HTML callers get the form back with
// their answers and the messages in place.
func (s *Server) reject(w http.ResponseWriter, r *http.Request, f format, form model.FormSchema, values map[string]string, err error) {
	status, body := classify(err)
	if f != formatHTML || status == http.StatusNotFound {
		s.fail(w, r, f, err)
		return
	}
	logging.FromContext(r.Context()).Warn().Err(err).Int("status", status).Msg("submission rejected")
	errs := render.MergeErrors(render.FieldErrors(form, err), body.Fields)
	s.renderForm(w, r, form, values, errs, body.Message, status)
}

func (s *Server) showSubmission(w http.ResponseWriter, r *http.Request) {
	f := negotiate(r, formatJSON)
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	record, err := s.orch.Entry(r.Context(), form.ID(), id)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}

	if f == formatJSON {
		ok(w, s.view(form, record, true))
		return
	}
	out, err := s.pages.RenderEntry(r.Context(), form, record, vanilla.PageOptions{
		DeleteURL: entryURL(form, id.String()) + "/delete",
		Location:  s.location,
		Theme:     s.themeConfig(r),
	})
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	writeHTML(w, http.StatusOK, out)
}

// deleteSubmission removes a record once the request carries confirm=true,
// either in the query or in the posted form.
func (s *Server) deleteSubmission(w http.ResponseWriter, r *http.Request) {
	fallback := formatJSON
	if r.Method == http.MethodPost {
		fallback = formatHTML
	}
	f := negotiate(r, fallback)
	form, err := s.form(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	id, err := recordID(r)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}

	confirmed := func(_ context.Context, _ string) (bool, error) {
		return r.FormValue("confirm") == "true", nil
	}
	deleted, err := s.orch.Delete(r.Context(), form.ID(), id, confirmed)
	if err != nil {
		s.fail(w, r, f, err)
		return
	}
	if !deleted {
		s.fail(w, r, f, errNotConfirmed)
		return
	}

	if f == formatHTML {
		http.Redirect(w, r, openapi.SubmissionPath(form), http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeAnswers reads a JSON object of strings or a urlencoded form. Posted
// forms reply in HTML unless the client asks otherwise.
func decodeAnswers(w http.ResponseWriter, r *http.Request, form model.FormSchema) (map[string]string, format, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		f := negotiate(r, formatJSON)
		var values map[string]string
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&values); err != nil {
			return nil, f, fmt.Errorf("%w: decode answers: %v", errBadRequest, err)
		}
		return values, f, nil
	case "application/x-www-form-urlencoded":
		f := negotiate(r, formatHTML)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return nil, f, fmt.Errorf("%w: parse form: %v", errBadRequest, err)
		}
		return postedValues(form, r.PostForm), f, nil
	}
	return nil, negotiate(r, formatJSON), fmt.Errorf("%w: %q", errUnsupportedMedia, mediaType)
}

// postedValues flattens a posted form. Checkbox groups join their checked
// options; other fields keep the last value so a checked toggle wins over its
// hidden "false". Blank answers are dropped.
func postedValues(form model.FormSchema, posted url.Values) map[string]string {
	values := make(map[string]string, len(posted))
	for key, list := range posted {
		if len(list) == 0 {
			continue
		}
		field, known := form.FieldByKey(key)
		if known && field.Type == model.FieldTypeCheckbox && field.HasOptions() {
			var selected []string
			for _, v := range list {
				if strings.TrimSpace(v) != "" {
					selected = append(selected, v)
				}
			}
			if len(selected) > 0 {
				values[key] = answers.JoinTokens(selected)
			}
			continue
		}
		if v := list[len(list)-1]; strings.TrimSpace(v) != "" {
			values[key] = v
		}
	}
	return values
}
