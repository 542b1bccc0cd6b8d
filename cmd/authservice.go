/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/titanium/backend/config"
	"github.com/titanium/backend/internal/server"
)

// authServiceCmd represents the auth-service command
var authServiceCmd = &cobra.Command{
	Use:   "auth-service",
	Short: "Starts the auth service (token issuance and verification)",
	Long: `Starts the auth service. It issues RS256 tokens after verifying
credentials against the user service, and verifies bearer tokens for the
other services. Usage:

	backend auth-service
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		srv, err := server.NewAuthServer(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start auth-service: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "auth-service error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(authServiceCmd)
}
