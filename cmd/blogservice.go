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

// blogServiceCmd represents the blog-service command
var blogServiceCmd = &cobra.Command{
	Use:   "blog-service",
	Short: "Starts the blog service (posts and categories)",
	Long: `Starts the blog service. Protected mutations resolve the caller's
identity through the auth service; reads go through the redis cache. Usage:

	backend blog-service
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		srv, err := server.NewBlogServer(cmd.Context(), cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start blog-service: %v\n", err)
			os.Exit(1)
		}
		if err := srv.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "blog-service error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(blogServiceCmd)
}
