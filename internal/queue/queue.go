// Package queue implements the durable job store backing the pipeline:
// a Postgres-backed FIFO-ish queue with delayed visibility, bounded retries
// with exponential backoff, retention trimming, and per-queue counters.
//
// Delivery is at-least-once. Each enqueued job is delivered to at most one
// concurrently-executing handler via FOR UPDATE SKIP LOCKED; a job claimed
// by a worker that crashes before acknowledging it becomes claimable again
// once its visibility timeout elapses, and the redelivery counts as an
// attempt. A crash after partial work can therefore cause reprocessing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Default retention, in kept rows per queue. Terminal jobs beyond these are
// deleted oldest-first on the next terminal transition.
const (
	defaultKeepCompleted = 100
	defaultKeepFailed    = 500
)

// defaultVisibilityTimeout is how long a claimed job may stay active before
// it is presumed abandoned by a dead worker and becomes claimable again. It
// must exceed the longest plausible handler run.
const defaultVisibilityTimeout = 10 * time.Minute

// RetryPolicy bounds how a failing job is redelivered. Attempt n is
// rescheduled after InitialBackoff doubled n-1 times, capped by the store.
type RetryPolicy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Options controls a single enqueue.
type Options struct {
	// Delay postpones visibility; the job counts as delayed until it elapses.
	Delay time.Duration
	Retry RetryPolicy
}

// Job is one claimed unit of work.
type Job struct {
	ID          uuid.UUID
	Queue       string
	Payload     json.RawMessage
	Attempts    int
	MaxAttempts int
	Backoff     time.Duration
}

// Counts mirrors the broker-style per-queue introspection the dashboard
// polls. Delayed jobs are waiting jobs whose visibility time has not come.
type Counts struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Delayed   int `json:"delayed"`
}

// Store is the durable queue. It shares the application's pgx pool.
type Store struct {
	pool              *pgxpool.Pool
	keepCompleted     int
	keepFailed        int
	visibilityTimeout time.Duration
}

// NewStore creates a queue store with default retention and visibility
// timeout.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:              pool,
		keepCompleted:     defaultKeepCompleted,
		keepFailed:        defaultKeepFailed,
		visibilityTimeout: defaultVisibilityTimeout,
	}
}

// SetVisibilityTimeout overrides how long a claimed job may stay active
// before it is considered abandoned. Non-positive values are ignored.
func (s *Store) SetVisibilityTimeout(d time.Duration) {
	if d > 0 {
		s.visibilityTimeout = d
	}
}

// Enqueue adds a job to a queue and returns its handle.
func (s *Store) Enqueue(ctx context.Context, queueName string, payload any, opts Options) (uuid.UUID, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	maxAttempts := opts.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	backoff := opts.Retry.InitialBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var id uuid.UUID
	err = s.pool.QueryRow(ctx,
		`INSERT INTO queue_jobs (queue, payload, status, run_at, max_attempts, backoff_ms)
		 VALUES ($1, $2, 'waiting', NOW() + make_interval(secs => $3), $4, $5)
		 RETURNING id`,
		queueName, payloadJSON, opts.Delay.Seconds(), maxAttempts, backoff.Milliseconds(),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to enqueue job on %s: %w", queueName, err)
	}
	return id, nil
}

// Claim atomically takes the oldest visible waiting job from a queue, or
// reclaims an active job whose worker stopped acknowledging it (started_at
// older than the visibility timeout). A reclaim counts as an attempt.
// Returns (nil, nil) when nothing is ready.
func (s *Store) Claim(ctx context.Context, queueName string) (*Job, error) {
	var job Job
	var backoffMs int64
	err := s.pool.QueryRow(ctx,
		`UPDATE queue_jobs
		 SET status = 'active', started_at = NOW(), updated_at = NOW(),
		     attempts = attempts + CASE WHEN status = 'active' THEN 1 ELSE 0 END
		 WHERE id = (
		     SELECT id FROM queue_jobs
		     WHERE queue = $1
		       AND ((status = 'waiting' AND run_at <= NOW())
		         OR (status = 'active' AND started_at < NOW() - make_interval(secs => $2)))
		     ORDER BY run_at, created_at
		     LIMIT 1
		     FOR UPDATE SKIP LOCKED
		 )
		 RETURNING id, queue, payload, attempts, max_attempts, backoff_ms`,
		queueName, s.visibilityTimeout.Seconds(),
	).Scan(&job.ID, &job.Queue, &job.Payload, &job.Attempts, &job.MaxAttempts, &backoffMs)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to claim job from %s: %w", queueName, err)
	}
	job.Backoff = time.Duration(backoffMs) * time.Millisecond
	return &job, nil
}

// Complete marks a job done with its result and trims retained rows.
func (s *Store) Complete(ctx context.Context, job *Job, result any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`UPDATE queue_jobs
		 SET status = 'completed', result = $2, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		job.ID, resultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", job.ID, err)
	}

	return s.trim(ctx, job.Queue, "completed", s.keepCompleted)
}

// Fail records a failed attempt. Unless permanent, the job is rescheduled
// with exponential backoff until its attempts are exhausted; after that it
// lands in the terminal failed state. Returns true when a retry was
// scheduled.
func (s *Store) Fail(ctx context.Context, job *Job, jobErr error, permanent bool) (bool, error) {
	attempts := job.Attempts + 1
	message := jobErr.Error()

	if !permanent && attempts < job.MaxAttempts {
		delay := RetryDelay(job.Backoff, attempts)
		_, err := s.pool.Exec(ctx,
			`UPDATE queue_jobs
			 SET status = 'waiting', attempts = $2, last_error = $3,
			     run_at = NOW() + make_interval(secs => $4), updated_at = NOW()
			 WHERE id = $1`,
			job.ID, attempts, message, delay.Seconds(),
		)
		if err != nil {
			return false, fmt.Errorf("failed to reschedule job %s: %w", job.ID, err)
		}
		return true, nil
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE queue_jobs
		 SET status = 'failed', attempts = $2, last_error = $3,
		     completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		job.ID, attempts, message,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark job %s failed: %w", job.ID, err)
	}

	if trimErr := s.trim(ctx, job.Queue, "failed", s.keepFailed); trimErr != nil {
		return false, trimErr
	}
	return false, nil
}

// CountJobs returns the per-state counters for one queue.
func (s *Store) CountJobs(ctx context.Context, queueName string) (Counts, error) {
	var c Counts
	err := s.pool.QueryRow(ctx,
		`SELECT
		     COUNT(*) FILTER (WHERE status = 'waiting' AND run_at <= NOW()),
		     COUNT(*) FILTER (WHERE status = 'active'),
		     COUNT(*) FILTER (WHERE status = 'completed'),
		     COUNT(*) FILTER (WHERE status = 'failed'),
		     COUNT(*) FILTER (WHERE status = 'waiting' AND run_at > NOW())
		 FROM queue_jobs WHERE queue = $1`,
		queueName,
	).Scan(&c.Waiting, &c.Active, &c.Completed, &c.Failed, &c.Delayed)
	if err != nil {
		return Counts{}, fmt.Errorf("failed to count jobs on %s: %w", queueName, err)
	}
	return c, nil
}

// trim deletes terminal rows beyond the retention budget, oldest first.
func (s *Store) trim(ctx context.Context, queueName, status string, keep int) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM queue_jobs
		 WHERE queue = $1 AND status = $2 AND id NOT IN (
		     SELECT id FROM queue_jobs
		     WHERE queue = $1 AND status = $2
		     ORDER BY completed_at DESC
		     LIMIT $3
		 )`,
		queueName, status, keep,
	)
	if err != nil {
		return fmt.Errorf("failed to trim %s jobs on %s: %w", status, queueName, err)
	}
	return nil
}
