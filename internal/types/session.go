// Package types defines the domain records shared across the processing
// pipeline: sessions, processing jobs, transcriptions, and insights.
package types

import "time"

// RecordingStatus describes how far a session's recording upload has gotten.
type RecordingStatus string

const (
	RecordingNotStarted RecordingStatus = "not_started"
	RecordingUploading  RecordingStatus = "uploading"
	RecordingCompleted  RecordingStatus = "completed"
	RecordingFailed     RecordingStatus = "failed"
)

// Session is the subset of the dashboard's session row that the pipeline
// reads and writes. Coach and client names are denormalized in for the
// insight prompt.
type Session struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	CoachName       string          `json:"coach_name"`
	ClientName      string          `json:"client_name"`
	DurationMinutes int             `json:"duration_minutes"`
	RecordingStatus RecordingStatus `json:"recording_status"`
	RecordingS3Key  string          `json:"recording_s3_key,omitempty"`
	RecordingURL    string          `json:"recording_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RecordingReady reports whether the recording can be transcribed.
// The pipeline must not attempt transcription unless this is true.
func (s *Session) RecordingReady() bool {
	return s.RecordingStatus == RecordingCompleted
}
