// ABOUTME: CLI commands for account and session management.
// ABOUTME: Provides register, login, logout, and whoami.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/healthtrack/internal/auth"
	"github.com/harperreed/healthtrack/internal/models"
	"github.com/spf13/cobra"
)

var (
	accountPassword string
	accountConfirm  string
)

var registerCmd = &cobra.Command{
	Use:   "register <email>",
	Short: "Create an account and sign in",
	Long: `Create an account with an email and password, then sign in.

The password must be at least 6 characters. When --password is omitted
you are prompted for it twice.

EXAMPLES:

  healthtrack register you@example.com
  healthtrack register you@example.com --password s3cret!`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		password, confirm := accountPassword, accountConfirm
		if password == "" {
			p := newPrompter(cmd.InOrStdin(), out)
			var err error
			if password, err = p.ask("Password: "); err != nil {
				return err
			}
			if confirm, err = p.ask("Confirm password: "); err != nil {
				return err
			}
		} else if confirm == "" {
			confirm = password
		}

		if err := appState.Auth.Register(cmd.Context(), args[0], password, confirm); err != nil {
			return reportFieldErrors(out, err)
		}
		return reportSession(cmd, "Registered and signed in as %s")
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Sign in",
	Long: `Sign in with your email and password. The session is remembered
until you log out or it expires.

EXAMPLES:

  healthtrack login you@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		password := accountPassword
		if password == "" {
			var err error
			if password, err = newPrompter(cmd.InOrStdin(), out).ask("Password: "); err != nil {
				return err
			}
		}

		if err := appState.Auth.Login(cmd.Context(), args[0], password); err != nil {
			return reportFieldErrors(out, err)
		}
		return reportSession(cmd, "Signed in as %s")
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out",
	RunE: func(cmd *cobra.Command, args []string) error {
		appState.Auth.Logout(cmd.Context())
		snap := appState.Auth.Snapshot()
		if snap.Err != nil {
			return fmt.Errorf("logout failed: %s", snap.Err.Message)
		}
		success(cmd.OutOrStdout(), "Signed out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		snap := appState.Auth.Snapshot()
		if snap.Err != nil {
			warn(out, "Session check failed: %s", snap.Err.Message)
		}
		if !snap.IsAuthenticated() {
			fmt.Fprintln(out, "Not signed in.")
			return nil
		}
		fmt.Fprintf(out, "%s %s\n", snap.Identity.Email, faint.Sprint(models.ShortID(snap.Identity.ID)))
		return nil
	},
}

// reportSession prints the signed-in identity or returns the store's error.
func reportSession(cmd *cobra.Command, format string) error {
	snap := appState.Auth.Snapshot()
	if snap.State != auth.StateAuthenticated {
		msg := "authentication failed"
		if snap.Err != nil {
			msg = snap.Err.Message
		}
		return errors.New(msg)
	}
	success(cmd.OutOrStdout(), format, snap.Identity.Email)
	return nil
}

func init() {
	registerCmd.Flags().StringVarP(&accountPassword, "password", "p", "", "password (prompted when omitted)")
	registerCmd.Flags().StringVar(&accountConfirm, "confirm", "", "password confirmation (defaults to --password)")
	loginCmd.Flags().StringVarP(&accountPassword, "password", "p", "", "password (prompted when omitted)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
