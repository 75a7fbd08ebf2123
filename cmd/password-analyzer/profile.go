package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/model"
)

func (c *cli) newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and edit your profile",
	}

	cmd.AddCommand(c.newProfileShowCmd())
	cmd.AddCommand(c.newProfileUpdateCmd())
	cmd.AddCommand(c.newProfilePasswordCmd())
	cmd.AddCommand(c.newProfileAvatarCmd())

	return cmd
}

func (c *cli) newProfileShowCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Profile.Me(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, user)
			}
			printUser(cmd, user)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newProfileUpdateCmd() *cobra.Command {
	var username, fullName, bio, email, avatarURL string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields; only the flags given are changed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Profile.Me(cmd.Context())
			if err != nil {
				return err
			}

			var upd model.ProfileUpdate
			flags := cmd.Flags()
			if flags.Changed("username") {
				upd.Username = &username
			}
			if flags.Changed("full-name") {
				upd.FullName = &fullName
			}
			if flags.Changed("bio") {
				upd.Bio = &bio
			}
			if flags.Changed("email") {
				upd.Email = &email
			}
			if flags.Changed("avatar-url") {
				upd.AvatarURL = &avatarURL
			}
			if upd.Empty() {
				return fmt.Errorf("nothing to update; see --help for the available flags")
			}

			user, err := c.app.Profile.UpdateProfile(cmd.Context(), me.ID, upd)
			if err != nil {
				return err
			}
			cmd.Println("Profile updated.")
			printUser(cmd, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "username")
	cmd.Flags().StringVar(&fullName, "full-name", "", "full name")
	cmd.Flags().StringVar(&bio, "bio", "", "short bio (160 characters at most)")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "avatar image URL")

	return cmd
}

func (c *cli) newProfilePasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Long: `Change your password. Reads three lines from stdin: the current
password, the new password and the new password again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			me, err := c.app.Profile.Me(cmd.Context())
			if err != nil {
				return err
			}

			current, err := c.readLine(cmd, "Current password: ")
			if err != nil {
				return err
			}
			next, err := c.readLine(cmd, "New password: ")
			if err != nil {
				return err
			}
			confirm, err := c.readLine(cmd, "Confirm new password: ")
			if err != nil {
				return err
			}

			user, err := c.app.Profile.ChangePassword(cmd.Context(), me.ID, current, next, confirm)
			if err != nil {
				return err
			}
			cmd.Printf("Password changed. Strength: %s\n", user.PasswordStrength)
			return nil
		},
	}
}

func (c *cli) newProfileAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar FILE",
		Short: "Upload a PNG, JPEG, GIF or WebP avatar (2 MB at most)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := c.app.Profile.Me(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			user, err := c.app.Profile.UploadAvatar(cmd.Context(), me.ID, f)
			if err != nil {
				return err
			}
			cmd.Printf("Avatar updated: %s\n", user.AvatarURL)
			return nil
		},
	}
}
