package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avery/session-insights/internal/types"
)

// Processing jobs are keyed by (session_id, job_type) and blindly upserted
// as stages progress. Concurrent writers for the same session are
// last-write-wins; writers for different sessions never conflict.

// StartProcessingJob upserts the status row to processing with started_at
// set, clearing any prior error, result, and completion timestamp.
func (db *DB) StartProcessingJob(ctx context.Context, sessionID string, jobType types.JobType) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO processing_jobs (session_id, job_type, status, started_at)
		 VALUES ($1, $2, 'processing', NOW())
		 ON CONFLICT (session_id, job_type) DO UPDATE
		 SET status = 'processing', started_at = NOW(), completed_at = NULL,
		     error_message = NULL, result = NULL, updated_at = NOW()`,
		sessionID, jobType,
	)
	if err != nil {
		return fmt.Errorf("failed to start processing job: %w", err)
	}
	return nil
}

// CompleteProcessingJob marks the job completed with a result summary.
func (db *DB) CompleteProcessingJob(ctx context.Context, sessionID string, jobType types.JobType, result any) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE processing_jobs
		 SET status = 'completed', completed_at = NOW(), result = $3, updated_at = NOW()
		 WHERE session_id = $1 AND job_type = $2`,
		sessionID, jobType, resultJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to complete processing job: %w", err)
	}
	return nil
}

// FailProcessingJob marks the job failed with the error message. Called
// before the stage re-raises, so status is observable while the queue
// retries.
func (db *DB) FailProcessingJob(ctx context.Context, sessionID string, jobType types.JobType, message string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE processing_jobs
		 SET status = 'failed', completed_at = NOW(), error_message = $3, updated_at = NOW()
		 WHERE session_id = $1 AND job_type = $2`,
		sessionID, jobType, message,
	)
	if err != nil {
		return fmt.Errorf("failed to mark processing job failed: %w", err)
	}
	return nil
}

// ListProcessingJobs returns the status rows for a session, transcription
// first.
func (db *DB) ListProcessingJobs(ctx context.Context, sessionID string) ([]types.ProcessingJob, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT session_id, job_type, status, started_at, completed_at,
		        COALESCE(error_message, ''), result
		 FROM processing_jobs
		 WHERE session_id = $1
		 ORDER BY job_type DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.ProcessingJob
	for rows.Next() {
		var j types.ProcessingJob
		if err := rows.Scan(&j.SessionID, &j.JobType, &j.Status, &j.StartedAt,
			&j.CompletedAt, &j.ErrorMessage, &j.Result); err != nil {
			return nil, fmt.Errorf("failed to scan processing job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}
