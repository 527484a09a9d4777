package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/goliatone/go-formcloud/pkg/model"
)

var cycle = []string{"text", "email", "number", "date", "textarea", "radio", "dropdown", "checkbox"}

type option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type field struct {
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Name     string   `json:"name"`
	UUID     string   `json:"uuid"`
	Required bool     `json:"required,omitempty"`
	Options  []option `json:"options,omitempty"`
}

type section struct {
	Title string `json:"title"`
	Index int    `json:"index"`
	From  int    `json:"from"`
	To    int    `json:"to"`
	UUID  string `json:"uuid"`
}

type document struct {
	Title    string    `json:"title"`
	Fields   []field   `json:"fields"`
	Sections []section `json:"sections"`
}

func main() {
	var (
		count      = flag.Int("fields", 200, "number of questions")
		perSection = flag.Int("per-section", 20, "questions per section")
		title      = flag.String("title", "200 Questions", "form title")
		outputPath = flag.String("output", "forms/200-form.json", "output path for the schema")
	)
	flag.Parse()

	if *count <= 0 || *perSection <= 0 {
		fmt.Fprintln(os.Stderr, "fields and per-section must be positive")
		os.Exit(2)
	}

	payload, err := json.MarshalIndent(generate(*title, *count, *perSection), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode schema: %v\n", err)
		os.Exit(1)
	}
	if _, err := model.Parse(payload); err != nil {
		fmt.Fprintf(os.Stderr, "generated schema does not parse: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputPath, append(payload, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d questions to %s\n", *count, *outputPath)
}

func generate(title string, count, perSection int) document {
	doc := document{Title: title}
	for i := 0; i < count; i++ {
		f := field{
			Type:     cycle[i%len(cycle)],
			Label:    fmt.Sprintf("Question %d", i+1),
			Name:     fmt.Sprintf("q%03d", i+1),
			UUID:     fmt.Sprintf("q-%03d", i+1),
			Required: i%10 == 0,
		}
		// every other checkbox carries options
		if f.Type == "radio" || f.Type == "dropdown" || (f.Type == "checkbox" && i%16 == 7) {
			for _, c := range "abc" {
				f.Options = append(f.Options, option{Label: fmt.Sprintf("Option %c", c), Value: fmt.Sprintf("opt%c", c)})
			}
		}
		doc.Fields = append(doc.Fields, f)
	}
	for from, index := 0, 0; from < count; from, index = from+perSection, index+1 {
		to := min(from+perSection, count) - 1
		doc.Sections = append(doc.Sections, section{
			Title: fmt.Sprintf("Part %d", index+1),
			Index: index,
			From:  from,
			To:    to,
			UUID:  fmt.Sprintf("s-%02d", index+1),
		})
	}
	return doc
}
