// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/session"
	"logistiq/cli/internal/terminal"
)

// switchCmd changes the active company. After the backend switch, the
// provider reissues tokens whose organization claim can lag behind; the
// organization sync guard retries briefly until the claim propagates.
var switchCmd = &cobra.Command{
	Use:   "switch [company-id]",
	Short: "Switch your active company",
	Args:  cobra.MaximumNArgs(1),

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

		var companyID string
		if len(args) == 1 {
			companyID = args[0]
		} else {
			companyID, err = promptCompanyID(cmd, env)
			if err != nil {
				return err
			}
		}

		token := env.store.Snapshot().State.Token
		user, err := env.be.SetActiveCompany(ctx, token, companyID)
		if err != nil {
			return fmt.Errorf("switch company: %w", err)
		}
		env.store.SetActiveCompany(user.CurrentCompanyID, user.CurrentCompanyName)

		// Confirm the provider token caught up with the new organization.
		// The claim is eventually consistent; a short bounded retry covers
		// the propagation window without looping forever.
		if _, err := env.orgGuard().AttemptSyncWithRetry(ctx, user.CurrentCompanyName); err != nil {
			fmt.Printf("Switched to %s, but the provider token hasn't caught up yet: %v\n", user.CurrentCompanyName, err)
			fmt.Println("Run 'logistiq status' in a moment to confirm.")
			return nil
		}

		fmt.Printf("✅ Active company is now %s\n", user.CurrentCompanyName)
		return nil
	},
}

// promptCompanyID lists the user's memberships and reads a company ID from
// stdin. The prompt is cleared from the terminal after input.
func promptCompanyID(cmd *cobra.Command, env *sessionEnv) (string, error) {
	token := env.store.Snapshot().State.Token
	companies, err := env.be.ListCompanies(cmd.Context(), token)
	if err != nil {
		return "", fmt.Errorf("list companies: %w", err)
	}
	if len(companies) == 0 {
		return "", errors.New("no company memberships; finish onboarding first")
	}

	fmt.Println("Your companies:")
	for _, c := range companies {
		marker := " "
		if c.IsActive {
			marker = "*"
		}
		fmt.Printf("  %s %s  %s\n", marker, c.ID, c.Name)
	}

	reader := bufio.NewReader(os.Stdin)
	promptText := "Company ID to switch to: "
	fmt.Print(promptText)
	id, _ := reader.ReadString('\n')
	id = strings.TrimSpace(id)

	// Clear the prompt and user input from terminal
	terminal.ClearPreviousLines(len(promptText) + len(id))

	if id == "" {
		return "", errors.New("company id is required")
	}
	return id, nil
}

func init() {
	rootCmd.AddCommand(switchCmd)
}
