package types

import (
	"encoding/json"
	"time"
)

// JobType identifies which stage a processing job row tracks.
type JobType string

const (
	JobTypeTranscription JobType = "transcription"
	JobTypeInsights      JobType = "insights"
)

// JobStatus represents the lifecycle stage of a processing job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ProcessingJob is the per-session status row for a stage family. One row
// per (session, job type); the row is upserted as the stage progresses and
// never deleted, so the dashboard can always see the last outcome.
//
// Invariants: status=processing implies StartedAt is set; a terminal status
// (completed or failed) implies CompletedAt is set.
type ProcessingJob struct {
	SessionID    string          `json:"session_id"`
	JobType      JobType         `json:"job_type"`
	Status       JobStatus       `json:"status"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
}

// IsDone reports whether the job reached a terminal state.
func (j *ProcessingJob) IsDone() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
