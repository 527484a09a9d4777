package display_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
)

func field(t *testing.T, name string) model.Field {
	t.Helper()
	f, ok := testsupport.AllFields(t).FieldByName(name)
	if !ok {
		t.Fatalf("field %s not found", name)
	}
	return f
}

func TestCheckboxSelectionRoundTrip(t *testing.T) {
	schema := testsupport.AllFields(t)
	d := answers.NewDraft(schema)
	for _, opt := range []string{"sports", "music"} {
		if err := d.ToggleOption("interests", opt); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	}
	raw, _ := d.Value("interests")

	got := display.FormatValue(field(t, "interests"), raw)
	if diff := cmp.Diff("Sports, Music", got); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name  string
		field string
		value string
		want  string
	}{
		{"unmatched tokens dropped", "interests", "music,ghost,reading", "Music, Reading"},
		{"radio label", "gender", "female", "Female"},
		{"radio raw fallback", "gender", "robot", "robot"},
		{"dropdown label", "country", "us", "United States"},
		{"toggle on", "terms", "true", "Yes"},
		{"toggle off", "terms", "false", "No"},
		{"password masked", "password", "hunter2", display.PasswordMask},
		{"password length hidden", "password", "a", display.PasswordMask},
		{"file name", "attachment", "file:///tmp/docs/report.pdf", "report.pdf"},
		{"text passthrough", "first_name", "Ada", "Ada"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := display.FormatValue(field(t, tc.field), tc.value); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}

func TestClassifyFile(t *testing.T) {
	cases := map[string]display.FileStrategy{
		"file:///tmp/photo.png":                   display.FileImage,
		"https://cdn.example.com/a/B.JPEG?sig=abc": display.FileImage,
		"/Users/ada/scan.heic":                    display.FileImage,
		"file:///tmp/contract.pdf":                display.FileDocument,
		"https://example.com/report.PDF#page=2":   display.FileDocument,
		"file:///tmp/data.csv":                    display.FileRow,
		"file:///tmp/no-extension":                display.FileRow,
		"notes.png.txt":                           display.FileRow,
	}
	for locator, want := range cases {
		if got := display.ClassifyFile(locator); got != want {
			t.Fatalf("ClassifyFile(%q) = %q, want %q", locator, got, want)
		}
	}
}

func TestDetail(t *testing.T) {
	schema := testsupport.AllFields(t)
	record := answers.AnswerRecord{
		ID:     uuid.New(),
		FormID: schema.ID(),
		Values: map[string]string{
			"first_name": "Ada",
			"interests":  "reading",
			"attachment": "file:///tmp/id.jpg",
			"ghost":      "ignored",
		},
	}

	entries := display.Detail(schema, record)
	if len(entries) != 12 {
		t.Fatalf("expected every non-description field, got %d", len(entries))
	}

	byKey := map[string]display.Entry{}
	for _, e := range entries {
		byKey[e.Key] = e
	}
	if _, ok := byKey["intro"]; ok {
		t.Fatalf("description fields must be skipped")
	}
	if byKey["last_name"].Value != display.Blank || byKey["last_name"].Present {
		t.Fatalf("missing answers render Blank: %+v", byKey["last_name"])
	}
	if byKey["interests"].Value != "Reading" {
		t.Fatalf("unexpected interests %q", byKey["interests"].Value)
	}
	attachment := byKey["attachment"]
	if attachment.File == nil || attachment.File.Strategy != display.FileImage {
		t.Fatalf("expected image strategy, got %+v", attachment.File)
	}
}

func TestSummarize(t *testing.T) {
	schema := testsupport.AllFields(t)
	created := time.Date(2025, 8, 10, 15, 4, 0, 0, time.UTC)

	full := answers.AnswerRecord{ID: uuid.New(), CreatedAt: created, Values: map[string]string{
		"first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
	}}
	want := display.Summary{
		ID:          full.ID.String(),
		SubmittedOn: "Submitted on: 10/08/2025",
		Title:       "Ada Lovelace",
		Subtitle:    "ada@example.com",
	}
	if diff := cmp.Diff(want, display.Summarize(schema, full, time.UTC)); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}

	empty := answers.AnswerRecord{ID: uuid.New(), CreatedAt: created, Values: map[string]string{}}
	got := display.Summarize(schema, empty, time.UTC)
	if got.Title != display.NoName || got.Subtitle != display.NoEmail {
		t.Fatalf("unexpected fallbacks %+v", got)
	}
}

func TestCard(t *testing.T) {
	got := display.Card(field(t, "email"))
	want := display.FieldCard{Label: "Email", Type: "email", Name: "email", Required: "Yes", UUID: "f-003"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("card mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitizers(t *testing.T) {
	raw := `<h2 onclick="x()">Personal &amp; data</h2><script>alert(1)</script>`
	if got := display.SafeHTML(raw); got != "<h2>Personal &amp; data</h2>" {
		t.Fatalf("unexpected safe html %q", got)
	}
	if got := display.PlainText(raw); got != "Personal & data" {
		t.Fatalf("unexpected plain text %q", got)
	}
}
