// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/keychain"
)

// logoutCmd clears the session entirely: provider credentials, the persisted
// session blob, and the local state.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove all saved credentials and session state",
	Long: `The logout command clears all authentication state from the local system:
provider tokens in the OS keychain, the persisted session record, and any
cached company memberships.

Local credentials are always cleared, even when the session machine cannot
be constructed (e.g. the backend is unreachable).`,

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newSessionEnv(cmd.Context())
		if err == nil {
			_ = env.prov.SignOut(cmd.Context())
			env.store.Clear()
		} else if km, kerr := keychain.GetManager(); kerr == nil {
			// Best effort without the full environment.
			_ = km.ClearAll()
		}

		fmt.Println("✅ All credentials and session state have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
