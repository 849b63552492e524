package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/accounts"
)

func newSeedCommand(loadConfig func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample accounts and books into empty tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()

			db, err := database.NewSilentDatabase(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			authService := auth.NewService(accounts.NewRepository(db.DB), cfg.Auth)
			result, err := db.Seed(cmd.Context(), authService.HashPassword)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d accounts and %d books into %s\n",
				result.Accounts, result.Books, cfg.Database.Path)
			return nil
		},
	}
}
