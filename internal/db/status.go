package db

import (
	"context"
	"time"

	"github.com/avery/session-insights/internal/types"
)

// TranscriptionStatus is the dashboard-facing view of a stored transcript.
// WordCount is recomputed from the stored raw text.
type TranscriptionStatus struct {
	WordCount   int        `json:"word_count"`
	Engine      string     `json:"engine,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// InsightStatus is the dashboard-facing view of stored insights.
type InsightStatus struct {
	HasSummary     bool       `json:"has_summary"`
	HasActionItems bool       `json:"has_action_items"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// ProcessingStatus joins job, transcription, and insight state for one
// session. Transcription and Insight are nil until the record exists.
type ProcessingStatus struct {
	SessionID     string                `json:"session_id"`
	Jobs          []types.ProcessingJob `json:"jobs"`
	Transcription *TranscriptionStatus  `json:"transcription,omitempty"`
	Insight       *InsightStatus        `json:"insight,omitempty"`
}

// GetProcessingStatus returns the read-only per-session pipeline view.
func (db *DB) GetProcessingStatus(ctx context.Context, sessionID string) (*ProcessingStatus, error) {
	jobs, err := db.ListProcessingJobs(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	status := &ProcessingStatus{SessionID: sessionID, Jobs: jobs}

	transcription, err := db.GetTranscription(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if transcription != nil {
		completedAt := transcription.ProcessingCompletedAt
		status.Transcription = &TranscriptionStatus{
			WordCount:   transcription.WordCount(),
			Engine:      transcription.Engine,
			CompletedAt: &completedAt,
		}
	}

	insight, err := db.GetInsight(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if insight != nil {
		completedAt := insight.ProcessingCompletedAt
		status.Insight = &InsightStatus{
			HasSummary:     insight.Summary != "",
			HasActionItems: len(insight.ActionItems) > 0,
			CompletedAt:    &completedAt,
		}
	}

	return status, nil
}
