package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administration (accounts listed in ADMIN_EMAILS only)",
	}

	cmd.AddCommand(c.newAdminUsersCmd())
	return cmd
}

func (c *cli) newAdminUsersCmd() *cobra.Command {
	var query string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts, optionally filtered by name or email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			users, err := c.app.Profile.ListUsers(cmd.Context(), query)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, users)
			}

			w := newTable(cmd.OutOrStdout())
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tVERIFIED\tSTRENGTH")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.Username, u.FullName, u.Email, yesNo(u.IsVerified), u.PasswordStrength)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			cmd.Printf("%d user(s)\n", len(users))
			return nil
		},
	}

	cmd.Flags().StringVar(&query, "query", "", "case-insensitive filter on username, email or full name")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
