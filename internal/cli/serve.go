package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formcloud/internal/httpapi"
	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/openapi"
)

func newOpenAPICommand(a *App) *cobra.Command {
	var opts openapi.Options
	cmd := &cobra.Command{
		Use:   "openapi [form...]",
		Short: "Print the OpenAPI document of the submission endpoints",
		Long:  "Print the OpenAPI document describing POST /forms/{id}/submissions for the given forms, or for every form when none is named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.orch.OpenAPI(cmd.Context(), opts, args...)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}
	cmd.Flags().StringVar(&opts.Title, "title", "", "document title")
	cmd.Flags().StringVar(&opts.ServerURL, "server", "", "server URL")
	return cmd
}

func newServeCommand(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve forms and submissions over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, err := httpapi.New(a.orch, httpapi.WithLogger(logging.Default()))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), a.cfg.HTTP.Addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}
