// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/session"
)

// openCmd opens the Logistiq web application at the page the route guard
// decides for the current session: login when signed out, onboarding when no
// company is active, otherwise the requested page.
var openCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open the Logistiq web app at the right page for your session",
	Args:  cobra.MaximumNArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target := session.RouteDashboard
		if len(args) == 1 {
			target = args[0]
		}

		env, err := newSessionEnv(ctx)
		if err != nil {
			return err
		}

		out := env.mach.Evaluate(ctx, target)
		path := target
		if out.Route.Action == session.ActionRedirect {
			path = out.Route.RedirectTo
		}

		url := env.man.WebBaseURL() + path
		fmt.Printf("Opening %s\n", url)
		openBrowser(url)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(openCmd)
}
