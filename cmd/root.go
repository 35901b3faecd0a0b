// Copyright (c) 2026 Logistiq
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the Logistiq CLI.
// It implements subcommands for authentication, session inspection, and
// company management using the Cobra CLI framework. The commands are thin
// shells over the session bootstrap machine in internal/session.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logistiq/cli/internal/backend"
	"logistiq/cli/internal/manifest"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "logistiq",
	Short:         "Logistiq CLI for inventory workspace and session management",
	Long:          `Logistiq is a command-line companion for the Logistiq inventory platform. It signs you in through your identity provider, keeps your session synchronized with the backend, and manages your company memberships.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			ctx := context.Background()
			m, err := manifest.GetEndpoints(ctx)
			if err != nil {
				return err
			}

			be := backend.New(m.HTTPBaseURL(), m.HTTP)
			backendVersion, err := be.GetVersion(ctx)
			if err != nil {
				backendVersion = "unknown"
			}

			fmt.Printf("logistiq %s\nbackend %s\n", Version, backendVersion)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI and backend version information")
}
