package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mrlokans/librarian/internal/auth"
	"github.com/mrlokans/librarian/internal/config"
	"github.com/mrlokans/librarian/internal/database"
	"github.com/mrlokans/librarian/internal/database/accounts"
	"github.com/mrlokans/librarian/internal/entities"
)

var errPasswordMismatch = errors.New("passwords do not match")

func newCreateAccountCommand(loadConfig func() *config.Config) *cobra.Command {
	var (
		username string
		role     string
		password string
	)

	cmd := &cobra.Command{
		Use:   "create-account",
		Short: "Create a librarian or patron account",
		Long: `Create an account that can log in to the web interface.

The password is read from the terminal without echo unless --password is given.
When stdin is not a terminal the first line of stdin is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := entities.Role(role)
			if !r.Valid() {
				return fmt.Errorf("%w: %q (use %q or %q)", auth.ErrInvalidRole, role, entities.RoleAdmin, entities.RoleUser)
			}

			if password == "" {
				var err error
				password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
				if err != nil {
					return err
				}
			}

			cfg := loadConfig()
			db, err := database.NewSilentDatabase(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()

			authService := auth.NewService(accounts.NewRepository(db.DB), cfg.Auth)
			account, err := authService.CreateAccount(cmd.Context(), username, password, r)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created %s account %q (%s)\n", account.Role, account.Username, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&role, "role", "r", string(entities.RoleUser), "account role: admin or user")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// readPassword prompts twice on a terminal, otherwise reads one line from in.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		first, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		fmt.Fprint(prompt, "Repeat password: ")
		second, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		if string(first) != string(second) {
			return "", errPasswordMismatch
		}
		return string(first), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
