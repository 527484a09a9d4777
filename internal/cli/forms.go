package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/model"
)

func newFormsCommand(a *App) *cobra.Command {
	var fields bool
	cmd := &cobra.Command{
		Use:   "forms",
		Short: "List the forms found in the forms directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			forms := a.orch.Catalog()

			table := tablewriter.NewTable(out)
			table.Header("Title", "Name", "Fields", "Sections")
			for _, form := range forms.Forms() {
				if err := table.Append(form.ID(), form.Name, strconv.Itoa(len(form.Fields)), strconv.Itoa(len(form.Sections))); err != nil {
					return err
				}
			}
			if err := table.Render(); err != nil {
				return err
			}

			for _, skipped := range forms.Skipped() {
				fmt.Fprintf(out, "skipped %s: %v\n", skipped.Form, skipped.Err)
			}

			if !fields {
				return nil
			}
			for _, form := range forms.Forms() {
				if err := writeFieldCards(out, form); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fields, "fields", false, "also list the fields of every form")
	return cmd
}

func writeFieldCards(out io.Writer, form model.FormSchema) error {
	fmt.Fprintf(out, "\n%s\n", form.ID())
	table := tablewriter.NewTable(out)
	table.Header("Label", "Type", "Name", "Required", "UUID")
	for _, field := range form.Fields {
		card := display.Card(field)
		if err := table.Append(card.Label, card.Type, card.Name, card.Required, card.UUID); err != nil {
			return err
		}
	}
	return table.Render()
}
