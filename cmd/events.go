/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/titanium/backend/config"
	"github.com/titanium/backend/internal/mq"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect the post lifecycle event stream",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Subscribe to post lifecycle events and print them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		broker, err := mq.FromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			return fmt.Errorf("connect to broker failed: %w", err)
		}
		if broker == nil {
			return errors.New("no broker configured (set MQ_BACKEND to rabbitmq or pubsub)")
		}
		defer func() {
			_ = broker.Close()
		}()

		return broker.Subscribe(cmd.Context(), mq.PostEventsChannel, func(ctx context.Context, msg mq.Message) error {
			fmt.Printf("%s %s\n", msg.ID, string(msg.Data))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
