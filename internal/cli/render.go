package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/render"
)

func newRenderCommand(a *App) *cobra.Command {
	var (
		renderer string
		output   string
		theme    string
		variant  string
	)
	cmd := &cobra.Command{
		Use:   "render <form>",
		Short: "Render a form with one of the registered renderers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := a.orch.Form(args[0])
			if err != nil {
				return err
			}
			out, err := a.orch.Render(cmd.Context(), orchestrator.Request{
				FormID:       form.ID(),
				Renderer:     renderer,
				ThemeName:    theme,
				ThemeVariant: variant,
				RenderOptions: render.RenderOptions{
					Method: "POST",
				},
			})
			if err != nil {
				return err
			}

			if output != "" {
				if err := os.WriteFile(output, out, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Form written to %s\n", output)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&renderer, "renderer", "vanilla", "renderer to use: vanilla or tui")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&theme, "theme", "", "theme name")
	cmd.Flags().StringVar(&variant, "variant", "", "theme variant")
	return cmd
}
