package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/password-analyzer/internal/apperror"
	"github.com/sakif/password-analyzer/internal/auth"
	"github.com/sakif/password-analyzer/internal/service"
)

func (c *cli) newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Sign up, sign in and manage the session",
	}

	cmd.AddCommand(c.newSignupCmd())
	cmd.AddCommand(c.newLoginCmd())
	cmd.AddCommand(c.newLogoutCmd())
	cmd.AddCommand(c.newWhoamiCmd())
	cmd.AddCommand(c.newVerifyEmailCmd())
	cmd.AddCommand(c.newForgotPasswordCmd())

	return cmd
}

func (c *cli) newSignupCmd() *cobra.Command {
	var req service.SignupRequest

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Long: `Create an account. The password and its confirmation are read from
stdin when --password and --confirm-password are not given. A verification email is sent; run "auth verify-email" to confirm
the address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				pw, err := c.readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				req.Password = pw
			}
			if req.ConfirmPassword == "" {
				pw, err := c.readLine(cmd, "Confirm password: ")
				if err != nil {
					return err
				}
				req.ConfirmPassword = pw
			}

			user, err := c.app.Auth.Signup(cmd.Context(), req)
			if err != nil {
				return err
			}

			cmd.Printf("Account created for %s (username %s).\n", user.Email, user.Username)
			cmd.Printf("Password strength: %s\n", user.PasswordStrength)
			cmd.Println("Check your inbox to verify your email, then run: password-analyzer auth login")
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "password (read from stdin when empty)")
	cmd.Flags().StringVar(&req.ConfirmPassword, "confirm-password", "", "repeat the password (read from stdin when empty)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func (c *cli) newLoginCmd() *cobra.Command {
	var email, password string
	var github bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password, or with GitHub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if github {
				user, err := c.app.Auth.LoginGitHub(cmd.Context(), func(dc *auth.DeviceCode) {
					fmt.Fprintf(cmd.ErrOrStderr(), "Open %s and enter the code %s\n", dc.VerificationURI, dc.UserCode)
					fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for approval...")
				})
				if err != nil {
					return err
				}
				cmd.Printf("Welcome, %s!\n", user.FullName)
				return nil
			}

			if email == "" {
				return apperror.ValidationFailed("email", "--email is required (or use --github)")
			}
			if password == "" {
				pw, err := c.readLine(cmd, "Password: ")
				if err != nil {
					return err
				}
				password = pw
			}

			user, err := c.app.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Welcome back, %s!\n", user.FullName)
			if !user.IsVerified {
				cmd.Println("Your email is not verified yet.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when empty)")
	cmd.Flags().BoolVar(&github, "github", false, "sign in with GitHub (device flow)")
	cmd.MarkFlagsMutuallyExclusive("github", "email")

	return cmd
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			cmd.Println("Logged out.")
			return nil
		},
	}
}

func (c *cli) newWhoamiCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, err := c.app.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd, user)
			}
			if user == nil {
				cmd.Println("Not logged in.")
				return nil
			}
			cmd.Printf("%s <%s>\n", user.FullName, user.Email)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func (c *cli) newVerifyEmailCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "verify-email",
		Short: "Confirm an email address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.VerifyEmail(cmd.Context(), email); err != nil {
				return err
			}
			cmd.Println("Email verified.")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func (c *cli) newForgotPasswordCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "forgot-password",
		Short: "Email password reset instructions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Auth.RequestPasswordReset(cmd.Context(), email); err != nil {
				return err
			}
			cmd.Printf("If an account exists for %s, reset instructions are on their way.\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
