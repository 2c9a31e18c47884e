package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/avery/session-insights/internal/server"
)

var serveWorkers bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server and queue workers",
	Long:  `Start the HTTP server exposing the recording webhook, manual triggers, and status endpoints, with the queue workers in the same process. Use --workers=false when workers run separately via the work command.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveWorkers, "workers", true, "Run the queue workers in this process")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	// Server and workers share one group so shutdown waits for in-flight
	// jobs before the deferred close tears down the pool.
	g, ctx := errgroup.WithContext(ctx)

	if serveWorkers {
		for _, w := range pipelineWorkers(a) {
			w := w
			g.Go(func() error {
				return w.Run(ctx)
			})
		}
	}

	srv := server.New(a.cfg.Port, a.db, a.pipeline, a.queue, a.log)
	g.Go(func() error {
		return srv.Start(ctx)
	})

	return g.Wait()
}
