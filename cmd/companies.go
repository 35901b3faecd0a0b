// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"logistiq/cli/internal/httperrors"
	"logistiq/cli/internal/session"
)

// companiesCmd lists the current user's company memberships from the backend
// and refreshes the cached list in the session store.
var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List your company memberships",

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := newSessionEnv(ctx)
		if err != nil {
			return err
		}

		out := env.mach.Evaluate(ctx, session.RouteDashboard)
		if out.Phase != session.PhaseSynced {
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Println("   Run 'logistiq login' to get started.")
			return nil
		}

		token := env.store.Snapshot().State.Token
		companies, err := env.be.ListCompanies(ctx, token)
		if err != nil {
			return httperrors.FormatNetworkError(err, "Listing companies")
		}

		cached := make([]session.Company, 0, len(companies))
		rows := pterm.TableData{{"ID", "Name", "Role", "Active"}}
		for _, c := range companies {
			active := ""
			if c.IsActive {
				active = "✓"
			}
			rows = append(rows, []string{c.ID, c.Name, c.Role, active})
			cached = append(cached, session.Company{
				ID: c.ID, Name: c.Name, Role: c.Role, IsActive: c.IsActive, JoinedAt: c.JoinedAt,
			})
		}
		env.store.SetCompanies(cached)

		if len(companies) == 0 {
			fmt.Println("No company memberships yet. Finish onboarding first:")
			fmt.Printf("  %s%s\n", env.man.WebBaseURL(), session.RouteOnboarding)
			return nil
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}
