package model_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formcloud/pkg/model"
	"github.com/goliatone/go-formcloud/pkg/testsupport"
)

func fieldNames(fields []model.Field) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

func TestGroupsOrderSectionsByIndex(t *testing.T) {
	groups := testsupport.AllFields(t).Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].UUID != "s-001" || groups[1].UUID != "s-002" {
		t.Fatalf("unexpected order: %s, %s", groups[0].UUID, groups[1].UUID)
	}

	want := []string{"gender", "country", "interests", "terms", "notes", "attachment"}
	if diff := cmp.Diff(want, fieldNames(groups[1].Fields)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupsImplicitWithoutSections(t *testing.T) {
	groups := testsupport.Contact(t).Groups()
	if len(groups) != 1 || !groups[0].Implicit {
		t.Fatalf("expected a single implicit group, got %+v", groups)
	}
	if len(groups[0].Fields) != 4 {
		t.Fatalf("expected every field in the implicit group")
	}
}

func TestGroupsSkipOutOfRangeSections(t *testing.T) {
	form := model.FormSchema{
		Title: "x",
		Fields: []model.Field{
			{Type: model.FieldTypeText, Name: "a", UUID: "1"},
			{Type: model.FieldTypeText, Name: "b", UUID: "2"},
		},
		Sections: []model.Section{
			{Title: "ok", From: 0, To: 1, Index: 0},
			{Title: "past end", From: 1, To: 2, Index: 1},
			{Title: "inverted", From: 1, To: 0, Index: 2},
			{Title: "negative", From: -1, To: 0, Index: 3},
		},
	}

	groups := form.Groups()
	if len(groups) != 4 {
		t.Fatalf("expected titles for every section, got %d groups", len(groups))
	}
	if len(groups[0].Fields) != 2 {
		t.Fatalf("expected two fields in first section")
	}
	for _, g := range groups[1:] {
		if len(g.Fields) != 0 {
			t.Fatalf("section %q should render no fields", g.Title)
		}
	}
}

func TestMigrateLegacyKeys(t *testing.T) {
	form := testsupport.AllFields(t)
	legacy := map[string]string{
		"f-001":   "Ada",
		"f-003":   "old@example.com",
		"email":   "new@example.com",
		"unknown": "kept",
	}

	got := model.MigrateLegacyKeys(form, legacy)
	want := map[string]string{
		"first_name": "Ada",
		"email":      "new@example.com",
		"unknown":    "kept",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("migrated mismatch (-want +got):\n%s", diff)
	}
	if _, ok := legacy["first_name"]; ok {
		t.Fatalf("input map must not be modified")
	}
}

func TestDefaultLabeler(t *testing.T) {
	cases := map[string]string{
		"first_name":  "First Name",
		"birthDate":   "Birth Date",
		"address-2":   "Address 2",
		"phone2label": "Phone 2 Label",
		"":            "",
	}
	for in, want := range cases {
		if got := model.DefaultLabeler(in); got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", in, got, want)
		}
	}
}
