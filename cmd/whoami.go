package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/session"
)

// whoamiCmd displays the currently signed-in account. It runs one evaluation
// of the session machine, which also lazily retries a previously failed sync.
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current authenticated account",
	Long: `The whoami command displays information about the currently signed-in
account. It evaluates the session state against the identity provider and,
when possible, the synchronized backend user record.

If no valid session exists, it will indicate that you are not logged in.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := newSessionEnv(ctx)
		if err != nil {
			return err
		}

		out := env.mach.Evaluate(ctx, session.RouteDashboard)
		st := env.store.Snapshot().State

		switch {
		case out.Phase == session.PhaseSynced && st.AppUser != nil:
			fmt.Printf("👤 Current user: %s", st.AppUser.Email)
			if st.AppUser.CurrentCompanyName != "" {
				fmt.Printf(" (%s)", st.AppUser.CurrentCompanyName)
			}
			fmt.Println()
		case out.Phase == session.PhaseErrored && st.Identity != nil:
			// Offline fallback: the provider session exists even though the
			// backend could not be reached.
			fmt.Printf("👤 Current user: %s (backend unreachable)\n", st.Identity.Email)
		default:
			fmt.Println("🔒 You're not logged in yet!")
			fmt.Println("   Run 'logistiq login' to get started.")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
