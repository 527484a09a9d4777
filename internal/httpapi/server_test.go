package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formcloud/pkg/catalog"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
	"github.com/goliatone/go-formcloud/pkg/store/memory"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
	"github.com/goliatone/go-formcloud/pkg/validation"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *Error          `json:"error"`
}

func newServer(t *testing.T) (*Server, *memory.Store) {
	t.Helper()
	records := memory.New()
	orch := orchestrator.New(
		orchestrator.WithCatalog(catalog.New(testsupport.AllFields(t), testsupport.Contact(t))),
		orchestrator.WithStore(records),
		orchestrator.WithClock(func() time.Time { return time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC) }),
	)
	srv, err := New(orch, WithLogger(logging.Nop()), WithLocation(time.UTC))
	require.NoError(t, err)
	return srv, records
}

func do(t *testing.T, srv http.Handler, method, target, contentType, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data any) *Error {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && env.Data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.Error
}

func submitContact(t *testing.T, srv http.Handler) recordView {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/json",
		`{"name":"Grace","email":"grace@example.com","topic":"sales"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view recordView
	require.Nil(t, decode(t, rec, &view))
	return view
}

func TestListForms(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list formList
	require.Nil(t, decode(t, rec, &list))

	want := []formSummary{
		{ID: "all-fields", Title: "All Fields", Fields: 13, Sections: 2, Links: formLinks{
			Self: "/forms/all-fields", Submissions: "/forms/all-fields/submissions", OpenAPI: "/forms/all-fields/openapi.json",
		}},
		{ID: "contact", Title: "Contact", Fields: 4, Links: formLinks{
			Self: "/forms/contact", Submissions: "/forms/contact/submissions", OpenAPI: "/forms/contact/openapi.json",
		}},
	}
	if diff := cmp.Diff(want, list.Forms); diff != "" {
		t.Fatalf("forms mismatch (-want +got):\n%s", diff)
	}
}

func TestShowForm(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/contact", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), `action="/forms/contact/submissions"`)

	rec = do(t, srv, http.MethodGet, "/forms/Contact", "", "", "Accept", "application/json")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail formDetail
	require.Nil(t, decode(t, rec, &detail))
	require.Equal(t, "Contact", detail.Schema.Title)
	require.Len(t, detail.Schema.Fields, 4)
}

func TestUnknownForm(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/missing/submissions", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	apiErr := decode(t, rec, nil)
	require.NotNil(t, apiErr)
	require.Equal(t, "NOT_FOUND", apiErr.Code)
}

func TestFormContract(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/contact/openapi.json", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		OpenAPI string                     `json:"openapi"`
		Paths   map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	require.Equal(t, "3.0.3", doc.OpenAPI)
	require.Contains(t, doc.Paths, "/forms/contact/submissions")
	require.Len(t, doc.Paths, 1)
}

func TestCreateSubmissionJSON(t *testing.T) {
	srv, records := newServer(t)

	view := submitContact(t, srv)
	require.Equal(t, "Contact", view.FormID)
	require.Equal(t, "Grace", view.Summary.Title)
	require.Equal(t, 1, records.Len())

	rec := do(t, srv, http.MethodGet, "/forms/contact/submissions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []recordView
	require.Nil(t, decode(t, rec, &list))
	require.Len(t, list, 1)
	require.Equal(t, view.ID, list[0].ID)

	rec = do(t, srv, http.MethodGet, "/forms/contact/submissions/"+view.ID.String(), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var detail recordView
	require.Nil(t, decode(t, rec, &detail))
	require.Len(t, detail.Entries, 4)
	require.Equal(t, "Sales", detail.Entries[2].Value)
}

func TestCreateSubmissionIncomplete(t *testing.T) {
	srv, records := newServer(t)

	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/json", `{"email":"x@example.com"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	apiErr := decode(t, rec, nil)
	require.Equal(t, "INCOMPLETE", apiErr.Code)
	require.Equal(t, validation.Message, apiErr.Message)
	want := map[string][]string{"name": {render.RequiredMessage}, "topic": {render.RequiredMessage}}
	if diff := cmp.Diff(want, apiErr.Fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	require.Zero(t, records.Len())
}

func TestCreateSubmissionInvalidOption(t *testing.T) {
	srv, records := newServer(t)

	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/json", `{"name":"Grace","topic":"billing"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	apiErr := decode(t, rec, nil)
	require.Equal(t, "INVALID_ANSWERS", apiErr.Code)
	require.Contains(t, apiErr.Fields, "topic")
	require.True(t, strings.HasPrefix(apiErr.Details, "topic: "), apiErr.Details)
	require.NotContains(t, apiErr.Details, "Schema:")
	require.NotContains(t, apiErr.Details, "Value:")
	require.Zero(t, records.Len())
}

func TestCreateSubmissionIgnoresUnknownKeys(t *testing.T) {
	srv, records := newServer(t)

	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/json",
		`{"name":"Grace","email":"grace@example.com","topic":"sales","nickname":"G"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view recordView
	require.Nil(t, decode(t, rec, &view))
	require.Equal(t, 1, records.Len())

	stored, err := records.Get(testsupport.Context(), view.ID)
	require.NoError(t, err)
	require.NotContains(t, stored.Values, "nickname")
}

func TestCreateSubmissionCheckboxTokens(t *testing.T) {
	srv, records := newServer(t)
	form := url.Values{
		"first_name": {"Ada"},
		"email":      {"ada@example.com"},
		"gender":     {"female"},
		"interests":  {"music", "reading", "music"},
		"terms":      {"false", "true"},
	}

	rec := do(t, srv, http.MethodPost, "/forms/all-fields/submissions", "application/x-www-form-urlencoded", form.Encode(),
		"Accept", "application/json")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var view recordView
	require.Nil(t, decode(t, rec, &view))
	stored, err := records.Get(testsupport.Context(), view.ID)
	require.NoError(t, err)
	require.Equal(t, "music,reading", stored.Values["interests"])
	require.Equal(t, "true", stored.Values["terms"])
}

func TestCreateSubmissionBadRequests(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/json", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/forms/contact/submissions", "text/plain", "name=Grace")
	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestCreateSubmissionForm(t *testing.T) {
	srv, records := newServer(t)

	body := url.Values{
		"name":    {"Grace"},
		"topic":   {"support"},
		"message": {""},
	}
	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/x-www-form-urlencoded", body.Encode())
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/forms/contact/submissions/"))

	stored, err := records.Query(testsupport.Context(), "Contact")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, map[string]string{"name": "Grace", "topic": "support"}, stored[0].Values)
}

func TestCreateSubmissionFormIncomplete(t *testing.T) {
	srv, records := newServer(t)

	body := url.Values{"email": {"grace@example.com"}}
	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions", "application/x-www-form-urlencoded", body.Encode())
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Fill in all required fields (*)")
	require.Contains(t, rec.Body.String(), render.RequiredMessage)
	require.Contains(t, rec.Body.String(), `value="grace@example.com"`)
	require.Zero(t, records.Len())
}

func TestPostedValues(t *testing.T) {
	form := testsupport.AllFields(t)
	posted := url.Values{
		"first_name": {"Ada"},
		"interests":  {"music", "", "reading"},
		"terms":      {"false", "true"},
		"notes":      {"  "},
	}
	want := map[string]string{
		"first_name": "Ada",
		"interests":  "music,reading",
		"terms":      "true",
	}
	if diff := cmp.Diff(want, postedValues(form, posted)); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmissionPages(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, "/forms/contact/submissions?format=html", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), vanilla.EmptyTitle)

	view := submitContact(t, srv)
	entry := "/forms/contact/submissions/" + view.ID.String()

	rec = do(t, srv, http.MethodGet, "/forms/contact/submissions", "", "", "Accept", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `href="`+entry+`"`)

	rec = do(t, srv, http.MethodGet, entry, "", "", "Accept", "text/html")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `action="`+entry+`/delete"`)
	require.Contains(t, rec.Body.String(), "grace@example.com")
}

func TestDeleteSubmission(t *testing.T) {
	srv, records := newServer(t)
	view := submitContact(t, srv)
	entry := "/forms/contact/submissions/" + view.ID.String()

	rec := do(t, srv, http.MethodDelete, entry, "", "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, orchestrator.DeletePrompt, decode(t, rec, nil).Message)
	require.Equal(t, 1, records.Len())

	rec = do(t, srv, http.MethodDelete, entry+"?confirm=true", "", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Zero(t, records.Len())

	rec = do(t, srv, http.MethodGet, entry, "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/forms/contact/submissions/not-a-uuid", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteSubmissionForm(t *testing.T) {
	srv, records := newServer(t)
	view := submitContact(t, srv)

	rec := do(t, srv, http.MethodPost, "/forms/contact/submissions/"+view.ID.String()+"/delete",
		"application/x-www-form-urlencoded", "confirm=true")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/forms/contact/submissions", rec.Header().Get("Location"))
	require.Zero(t, records.Len())
}

func TestAssets(t *testing.T) {
	srv, _ := newServer(t)

	rec := do(t, srv, http.MethodGet, StylesheetURL, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/css")
}
