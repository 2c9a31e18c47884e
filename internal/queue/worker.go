package queue

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/avery/session-insights/internal/logger"
)

// Handler processes one claimed job. The returned value is stored as the
// job's result; a returned error triggers the retry schedule unless it is
// permanent.
type Handler func(ctx context.Context, job *Job) (any, error)

// jobStore is the slice of Store the worker needs; narrowed so tests can
// drive the loop with a fake.
type jobStore interface {
	Claim(ctx context.Context, queueName string) (*Job, error)
	Complete(ctx context.Context, job *Job, result any) error
	Fail(ctx context.Context, job *Job, jobErr error, permanent bool) (bool, error)
}

// Worker runs competing consumers against one queue. Each consumer claims a
// single job at a time and blocks until that unit of work finishes.
type Worker struct {
	store        jobStore
	queue        string
	handler      Handler
	concurrency  int
	pollInterval time.Duration
	log          *logger.Logger
}

// NewWorker creates a worker pool for a queue.
func NewWorker(store jobStore, queueName string, handler Handler, concurrency int, pollInterval time.Duration, log *logger.Logger) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Worker{
		store:        store,
		queue:        queueName,
		handler:      handler,
		concurrency:  concurrency,
		pollInterval: pollInterval,
		log:          log,
	}
}

// Run blocks until ctx is cancelled, polling for jobs on every consumer.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.consume(ctx)
		})
	}
	return g.Wait()
}

func (w *Worker) consume(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		// Drain everything visible before going back to sleep.
		for {
			if ctx.Err() != nil {
				return nil
			}
			job, err := w.store.Claim(ctx, w.queue)
			if err != nil {
				// Cancellation mid-poll is a normal shutdown, not a store
				// failure worth alerting on.
				if ctx.Err() != nil || errors.Is(err, context.Canceled) {
					return nil
				}
				w.log.WithField("queue", w.queue).WithError(err).Error("claim failed")
				break
			}
			if job == nil {
				break
			}
			w.process(ctx, job)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *Worker) process(ctx context.Context, job *Job) {
	log := w.log.WithFields(logrus.Fields{
		"queue":   w.queue,
		"job_id":  job.ID.String(),
		"attempt": job.Attempts + 1,
	})

	result, err := w.handler(ctx, job)

	// Acknowledge on a cancellation-immune context: stranding the job
	// active during shutdown would make it wait out the full visibility
	// timeout before redelivery.
	ackCtx := context.WithoutCancel(ctx)

	if err != nil {
		retried, failErr := w.store.Fail(ackCtx, job, err, IsPermanent(err))
		if failErr != nil {
			log.WithError(failErr).Error("failed to record job failure")
			return
		}
		if retried {
			log.WithError(err).Warn("job failed, retry scheduled")
		} else {
			log.WithError(err).Error("job failed terminally")
		}
		return
	}

	if err := w.store.Complete(ackCtx, job, result); err != nil {
		log.WithError(err).Error("failed to record job completion")
		return
	}
	log.Debug("job completed")
}
