// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/logging"
	"logistiq/cli/internal/session"
)

// loginCmd signs the user in through the configured identity provider.
// It opens the provider's hosted sign-in page in the browser, waits for the
// authorization-code callback, and then drives the session machine through
// its first backend sync so the local session is fully populated.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Sign in via your identity provider and sync this session",
	Long: `The login command runs the browser sign-in flow against the configured
identity provider (Clerk or Kinde). Once the provider redirects back, the
session machine synchronizes your application user record with the Logistiq
backend and stores the session securely in the OS keychain.

If already signed in with a valid session, the flow is skipped.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		baseCtx := cmd.Context()
		ctx, cancel := context.WithTimeout(baseCtx, 5*time.Minute)
		defer cancel()

		env, err := newSessionEnv(ctx)
		if err != nil {
			return err
		}

		// If already signed in and synced, short-circuit.
		if out := env.mach.Evaluate(ctx, session.RouteDashboard); out.Phase == session.PhaseSynced {
			st := env.store.Snapshot().State
			fmt.Printf("Already logged in as %s\n", st.AppUser.Email)
			return nil
		}

		authURL, wait, err := env.prov.Login(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Open this link to complete login:")
		fmt.Printf("%s\n\n", authURL)
		openBrowser(authURL)

		stopSpinner := startInlineSpinner(os.Stdout, "Waiting for sign-in", []string{"|", "/", "-", "\\"}, 120*time.Millisecond)

		identity, err := wait(ctx)
		stopSpinner()
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		// First sync. Transient failures here are not fatal: the session
		// machine retries on the next command.
		out := env.mach.Evaluate(ctx, session.RouteDashboard)
		switch out.Phase {
		case session.PhaseSynced:
			fmt.Printf("✅ Welcome, %s!\n", identity.Email)
			if out.Route.Action == session.ActionRedirect && out.Route.RedirectTo == session.RouteOnboarding {
				fmt.Println("You don't have a company yet. Finish setup in your browser:")
				fmt.Printf("  %s%s\n", env.man.WebBaseURL(), session.RouteOnboarding)
			}
		case session.PhaseErrored:
			fmt.Printf("Signed in as %s, but the backend sync failed.\n", identity.Email)
			fmt.Println(logging.PresentError("", out.Err))
			fmt.Println("It will be retried automatically on your next command.")
		case session.PhaseUnauthenticated:
			return fmt.Errorf("backend rejected the session: %v", out.Err)
		default:
			fmt.Printf("Signed in as %s; session still settling.\n", identity.Email)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
