package model

import "sort"

// Group is a renderable block of fields: either a declared section or the
// implicit group holding every field when a form has no sections.
type Group struct {
	Title    string  `json:"title"`
	Index    int     `json:"index"`
	UUID     string  `json:"uuid,omitempty"`
	Fields   []Field `json:"fields"`
	Implicit bool    `json:"implicit"`
}

// Groups lays out the form. Sections are ordered by index; a section whose
// range is outside the field list keeps its title but contributes no fields.
// Forms without sections yield a single implicit group.
func (s FormSchema) Groups() []Group {
	if len(s.Sections) == 0 {
		return []Group{{Title: "", Fields: append([]Field(nil), s.Fields...), Implicit: true}}
	}

	sections := append([]Section(nil), s.Sections...)
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Index < sections[j].Index
	})

	groups := make([]Group, 0, len(sections))
	for _, section := range sections {
		groups = append(groups, Group{
			Title:  section.Title,
			Index:  section.Index,
			UUID:   section.UUID,
			Fields: s.SectionFields(section),
		})
	}
	return groups
}

// SectionFields resolves the inclusive field range of a section. Out-of-range
// or inverted ranges resolve to nil.
func (s FormSchema) SectionFields(section Section) []Field {
	if !section.InRange(len(s.Fields)) {
		return nil
	}
	return append([]Field(nil), s.Fields[section.From:section.To+1]...)
}

// InRange reports whether 0 <= From <= To < count.
func (sec Section) InRange(count int) bool {
	return sec.From >= 0 && sec.From <= sec.To && sec.To < count
}
