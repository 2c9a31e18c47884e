package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/avery/session-insights/internal/types"
)

var triggerDelay time.Duration

var triggerCmd = &cobra.Command{
	Use:   "trigger <session-id>",
	Short: "Enqueue processing for a session",
	Long:  `Enqueue a recording-intake job for the given session, bypassing the webhook. Useful for re-running sessions whose webhook was missed.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTrigger,
}

func init() {
	triggerCmd.Flags().DurationVar(&triggerDelay, "delay", 0, "Delay before the job becomes visible")
	rootCmd.AddCommand(triggerCmd)
}

func runTrigger(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID := args[0]

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	session, err := a.db.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	jobID, err := a.pipeline.EnqueueRecording(ctx, types.RecordingJobPayload{SessionID: sessionID}, triggerDelay)
	if err != nil {
		return err
	}

	fmt.Printf("Enqueued job %s for session %s\n", jobID, sessionID)
	return nil
}
