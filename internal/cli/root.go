// Package cli defines the librarian command line: the HTTP server plus
// maintenance commands that work directly on the database.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/config"
)

// NewRootCommand builds the command tree. Running it without a subcommand
// starts the server.
func NewRootCommand(version string) *cobra.Command {
	var dbPath string

	loadConfig := func() *config.Config {
		cfg := config.NewConfig()
		if dbPath != "" {
			cfg.Database.Path = dbPath
		}
		return cfg
	}

	serve := newServeCommand(version, loadConfig)

	root := &cobra.Command{
		Use:           "librarian",
		Short:         "Library catalog and lending web application",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "", "path to the SQLite database (overrides DATABASE_PATH)")

	root.AddCommand(
		serve,
		newSeedCommand(loadConfig),
		newCreateAccountCommand(loadConfig),
	)
	return root
}
