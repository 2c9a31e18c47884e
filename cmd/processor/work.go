package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/avery/session-insights/internal/pipeline"
	"github.com/avery/session-insights/internal/queue"
)

var workCmd = &cobra.Command{
	Use:   "work",
	Short: "Run the queue workers",
	Long:  `Run the competing consumers for the recording, transcription, and insight queues until interrupted.`,
	RunE:  runWork,
}

func init() {
	rootCmd.AddCommand(workCmd)
}

func runWork(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	a.log.WithField("concurrency", a.cfg.WorkerConcurrency).Info("workers starting")

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range pipelineWorkers(a) {
		w := w
		g.Go(func() error {
			return w.Run(ctx)
		})
	}
	return g.Wait()
}

// pipelineWorkers builds one worker pool per pipeline queue.
func pipelineWorkers(a *app) []*queue.Worker {
	return []*queue.Worker{
		queue.NewWorker(a.queue, pipeline.QueueRecording, a.pipeline.HandleRecording,
			a.cfg.WorkerConcurrency, a.cfg.PollInterval, a.log),
		queue.NewWorker(a.queue, pipeline.QueueTranscription, a.pipeline.HandleTranscription,
			a.cfg.WorkerConcurrency, a.cfg.PollInterval, a.log),
		queue.NewWorker(a.queue, pipeline.QueueInsights, a.pipeline.HandleInsights,
			a.cfg.WorkerConcurrency, a.cfg.PollInterval, a.log),
	}
}
