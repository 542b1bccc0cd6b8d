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

// userServiceCmd represents the user-service command
var userServiceCmd = &cobra.Command{
	Use:   "user-service",
	Short: "Starts the user service (identity store)",
	Long: `Starts the user service. It owns the users table, password hashing and
credential verification. Usage:

	backend user-service
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		srv, err := server.NewUserServer(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start user-service: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "user-service error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(userServiceCmd)
}
