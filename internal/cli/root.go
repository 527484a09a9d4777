package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the formcloud command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := newApp(opts...)

	root := &cobra.Command{
		Use:   "formcloud",
		Short: "Fill, store and serve JSON/YAML defined forms",
		Long: `formcloud loads form schemas from a directory, lets you fill them in the
terminal or a browser and keeps the submitted answers in a store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.teardown()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default is ./formcloud.yaml or $HOME/formcloud.yaml)")
	flags.String("forms-dir", "forms", "directory holding form schemas")
	flags.String("store", "sqlite", "answer store: memory, sqlite or postgres")
	flags.String("sqlite-path", "formcloud.db", "SQLite database file")
	flags.String("postgres-dsn", "", "PostgreSQL connection string")
	flags.Bool("hash-passwords", false, "bcrypt-hash password answers before storing them")
	flags.String("log-level", "info", "log level")
	flags.String("log-format", "auto", "log format: auto, console or json")
	flags.String("log-output", "stderr", "log destination: stderr, stdout, discard or a file")

	root.AddCommand(
		newFormsCommand(a),
		newRenderCommand(a),
		newFillCommand(a),
		newEntriesCommand(a),
		newShowCommand(a),
		newDeleteCommand(a),
		newOpenAPICommand(a),
		newServeCommand(a),
	)
	return root
}
