/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/mq"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Starts the submission-event worker",
	Long: `Starts the submission-event worker. It consumes intake submission
events from the message queue and emits structured notifications for the
review team. Usage:

	backend worker
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()
		log := logging.NewDefault("worker")
		ctx := cmd.Context()

		broker, err := mq.NewFromConfig(ctx, cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect broker: %v\n", err)
			os.Exit(1)
		}
		if broker == nil {
			fmt.Fprintln(os.Stderr, "MQ_BACKEND is not configured")
			os.Exit(1)
		}
		defer broker.Close()

		handler := func(ctx context.Context, msg mq.Message) error {
			var event mq.SubmissionEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				log.Warn(ctx, "dropping malformed event", "messageId", msg.ID, "error", err.Error())
				return nil
			}
			log.Info(ctx, "submission received",
				"kind", event.Kind, "id", event.ID, "userId", event.UserID,
				"term", event.Term, "submittedAt", event.SubmittedAt)
			return nil
		}

		if err := broker.Subscribe(ctx, mq.TopicSubmissions, handler); err != nil {
			fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
