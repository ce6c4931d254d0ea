package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/userboard/pkg/users"
)

func createCmd(rt *cli) *cobra.Command {
	var input users.UserForm

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long: `Create a user. The input is validated before anything is sent.

Examples:
  userboard create --name "Ada Lovelace" --username ada --email ada@example.com
  userboard create --name Linus --username linus --email linus@example.com --language nl`,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := rt.app.Users.Create(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m Created user %d (%s)\n", u.ID, u.Username)
			renderUsers(cmd.OutOrStdout(), []users.User{u})
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Name, "name", "", "full name (max 50 characters)")
	cmd.Flags().StringVar(&input.Username, "username", "", "username (max 50 characters)")
	cmd.Flags().StringVar(&input.Email, "email", "", "email address")
	cmd.Flags().StringVar(&input.Language, "language", "auto",
		"language: "+strings.Join(users.LanguageValues(), ", "))
	return cmd
}
