package cli

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/pkg/answers"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/renderers/tui"
)

func newFillCommand(a *App) *cobra.Command {
	var (
		recordID  string
		maxRounds int
	)
	cmd := &cobra.Command{
		Use:   "fill <form>",
		Short: "Fill a form in the terminal and save the answers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var (
				draft *answers.Draft
				id    uuid.UUID
				err   error
			)
			if recordID != "" {
				if id, err = parseRecordID(recordID); err != nil {
					return err
				}
				draft, err = a.orch.EditDraft(ctx, args[0], id)
			} else {
				draft, err = a.orch.NewDraft(args[0])
			}
			if err != nil {
				return err
			}

			prompts, err := tui.New(
				tui.WithPromptDriver(a.driver),
				tui.WithOutput(out),
				tui.WithMaxRounds(maxRounds),
			)
			if err != nil {
				return err
			}
			if err := prompts.Fill(ctx, draft); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(out, "Aborted, nothing saved.")
					return nil
				}
				return err
			}

			var record answers.AnswerRecord
			if recordID != "" {
				record, err = a.orch.Update(ctx, args[0], id, draft.Values())
			} else {
				record, err = a.orch.SubmitDraft(ctx, draft)
			}
			if err != nil {
				if msg := orchestrator.UserMessage(err); msg != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), msg)
				}
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", record.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&recordID, "record", "", "edit an existing record instead of creating one")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 0, "give up after asking for missing answers this many times (0 asks until complete)")
	return cmd
}
