package cli

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/pkg/display"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
)

func newEntriesCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "entries <form>",
		Short: "List the saved records of a form, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			form, err := a.orch.Form(args[0])
			if err != nil {
				return err
			}
			records, err := a.orch.Entries(cmd.Context(), form.ID())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintf(out, "%s\n%s\n", vanilla.EmptyTitle, vanilla.EmptyBody)
				return nil
			}

			table := tablewriter.NewTable(out)
			table.Header("Submitted", "Name", "Email", "ID")
			for _, record := range records {
				summary := display.Summarize(form, record, time.Local)
				if err := table.Append(summary.SubmittedOn, summary.Title, summary.Subtitle, summary.ID); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
}

func newShowCommand(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <form> <record-id>",
		Short: "Print the answers of one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			id, err := parseRecordID(args[1])
			if err != nil {
				return err
			}
			form, err := a.orch.Form(args[0])
			if err != nil {
				return err
			}
			record, err := a.orch.Entry(cmd.Context(), form.ID(), id)
			if err != nil {
				return err
			}

			summary := display.Summarize(form, record, time.Local)
			fmt.Fprintf(out, "%s\n%s\n\n", display.PlainText(form.Title), summary.SubmittedOn)
			for _, entry := range display.Detail(form, record) {
				fmt.Fprintf(out, "%s: %s\n", entry.Label, entry.Value)
			}
			return nil
		},
	}
}

func newDeleteCommand(a *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <form> <record-id>",
		Short: "Delete one record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[1])
			if err != nil {
				return err
			}
			confirm := a.confirm
			if yes {
				confirm = nil
			}
			deleted, err := a.orch.Delete(cmd.Context(), args[0], id, confirm)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Kept, nothing deleted.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking")
	return cmd
}

func parseRecordID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", orchestrator.ErrRecordNotFound, raw)
	}
	return id, nil
}
