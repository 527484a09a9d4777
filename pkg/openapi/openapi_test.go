package openapi_test

import (
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/openapi"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
)

func TestBuild(t *testing.T) {
	forms := []model.FormSchema{testsupport.AllFields(t), testsupport.Contact(t)}

	doc, err := openapi.Build(testsupport.Context(), forms, openapi.Options{ServerURL: "http://localhost:8080"})
	require.NoError(t, err)
	require.Equal(t, "formcloud", doc.Info.Title)

	var paths []string
	for path := range doc.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	if diff := cmp.Diff([]string{"/forms/all-fields/submissions", "/forms/contact/submissions"}, paths); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	op := doc.Paths.Value("/forms/all-fields/submissions").Post
	require.NotNil(t, op)
	require.Equal(t, "#/components/schemas/AllFieldsSubmission", op.RequestBody.Value.Content.Get("application/json").Schema.Ref)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"openapi":"3.0.3"`)
}

func TestBuildSingleFormTitle(t *testing.T) {
	doc, err := openapi.Build(testsupport.Context(), []model.FormSchema{testsupport.Contact(t)}, openapi.Options{})
	require.NoError(t, err)
	require.Equal(t, "Contact", doc.Info.Title)
}

func TestBuildRejectsDuplicates(t *testing.T) {
	form := testsupport.Contact(t)
	_, err := openapi.Build(testsupport.Context(), []model.FormSchema{form, form}, openapi.Options{})
	require.Error(t, err)
}

func TestSubmissionSchema(t *testing.T) {
	schema := openapi.SubmissionSchema(testsupport.AllFields(t))

	var props []string
	for name := range schema.Properties {
		props = append(props, name)
	}
	sort.Strings(props)
	want := []string{"age", "attachment", "birth_date", "country", "email", "first_name", "gender", "interests", "last_name", "notes", "password", "terms"}
	if diff := cmp.Diff(want, props); diff != "" {
		t.Fatalf("properties mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"first_name", "email", "gender", "interests", "terms"}, schema.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, "email", schema.Properties["email"].Value.Format)
	require.Equal(t, "uri", schema.Properties["attachment"].Value.Format)
	require.Equal(t, []any{"br", "pt", "us"}, schema.Properties["country"].Value.Enum)
	require.Equal(t, []any{"true"}, schema.Properties["terms"].Value.Enum)
}

func validAnswers() map[string]string {
	return map[string]string{
		"first_name": "Ada",
		"email":      "ada@example.com",
		"gender":     "female",
		"interests":  "music,reading",
		"terms":      "true",
		"birth_date": "10/12/1815",
		"age":        "36",
		"country":    "",
	}
}

func TestValidate(t *testing.T) {
	form := testsupport.AllFields(t)
	require.NoError(t, openapi.Validate(form, validAnswers()))

	cases := map[string]func(map[string]string){
		"missing required": func(v map[string]string) { delete(v, "first_name") },
		"blank required":   func(v map[string]string) { v["email"] = "  " },
		"toggle false":     func(v map[string]string) { v["terms"] = "false" },
		"unknown enum":     func(v map[string]string) { v["gender"] = "unknown" },
		"bad date":         func(v map[string]string) { v["birth_date"] = "1815-12-10" },
		"bad number":       func(v map[string]string) { v["age"] = "thirty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			values := validAnswers()
			mutate(values)
			require.Error(t, openapi.Validate(form, values))
		})
	}
}

func TestValidateAllowsUnknownKeys(t *testing.T) {
	values := validAnswers()
	values["nickname"] = "Countess"

	require.NoError(t, openapi.Validate(testsupport.AllFields(t), values))
}

func TestValidateUnknownOption(t *testing.T) {
	values := validAnswers()
	values["interests"] = "music,knitting"

	err := openapi.Validate(testsupport.AllFields(t), values)
	require.True(t, errors.Is(err, answers.ErrUnknownOption), "got %v", err)
}

func TestFieldErrors(t *testing.T) {
	values := validAnswers()
	values["age"] = "thirty"
	values["gender"] = "unknown"
	delete(values, "first_name")

	fields := openapi.FieldErrors(openapi.Validate(testsupport.AllFields(t), values))
	require.Len(t, fields["age"], 1)
	require.Len(t, fields["gender"], 1)
	require.NotContains(t, fields, "first_name")
}

func TestPathID(t *testing.T) {
	require.Equal(t, "contact", openapi.PathID(model.FormSchema{Title: "Contact", Name: "contact"}))
	require.Equal(t, "All%20Fields", openapi.PathID(model.FormSchema{Title: "All Fields"}))
	require.Equal(t, "/forms/contact/submissions", openapi.SubmissionPath(model.FormSchema{Name: "contact"}))
}
