// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"logistiq/cli/internal/session"
)

// statusCmd dumps the session state and the landing page the web application
// would route to. Useful when diagnosing onboarding or sign-in loops.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show session state and where the web app would land",

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := newSessionEnv(ctx)
		if err != nil {
			return err
		}

		out := env.mach.Evaluate(ctx, session.RouteDashboard)
		snap := env.store.Snapshot()
		st := snap.State

		rows := pterm.TableData{
			{"Auth status", string(st.AuthStatus)},
			{"Phase", string(out.Phase)},
			{"Sync guard", string(snap.Phase)},
		}
		if st.Identity != nil {
			rows = append(rows, []string{"Identity", st.Identity.Email})
		}
		if st.AppUser != nil {
			rows = append(rows,
				[]string{"App user", st.AppUser.ID},
				[]string{"Active company", companyLabel(st)},
			)
		}
		rows = append(rows,
			[]string{"Initialized", pterm.Sprintf("%v", st.IsInitialized)},
			[]string{"Last synced email", st.LastSyncedEmail},
			[]string{"Landing page", landingPage(out.Route)},
		)
		if st.ErrorReason != "" {
			rows = append(rows, []string{"Last error", st.ErrorReason})
		}

		return pterm.DefaultTable.WithData(rows).Render()
	},
}

func companyLabel(st session.State) string {
	if !st.HasActiveCompany() {
		return "none (needs onboarding)"
	}
	return pterm.Sprintf("%s (%s)", st.AppUser.CurrentCompanyName, st.AppUser.CurrentCompanyID)
}

// landingPage resolves the page the route decision points at when starting
// from the dashboard.
func landingPage(d session.RouteDecision) string {
	switch d.Action {
	case session.ActionRedirect:
		return d.RedirectTo
	case session.ActionLoading:
		return "(still settling)"
	default:
		return session.RouteDashboard
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
