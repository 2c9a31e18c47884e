package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avery/session-insights/internal/types"
)

// CreateTranscription inserts the transcript for a session. Transcriptions
// are insert-once: a second write for the same session returns
// ErrAlreadyExists instead of overwriting.
func (db *DB) CreateTranscription(ctx context.Context, t *types.Transcription) error {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO transcriptions
		     (session_id, raw_text, formatted_text, engine, speakers,
		      processing_started_at, processing_completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (session_id) DO NOTHING`,
		t.SessionID, t.RawText, t.FormattedText, t.Engine, t.Speakers,
		t.ProcessingStartedAt, t.ProcessingCompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transcription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transcription for session %s: %w", t.SessionID, ErrAlreadyExists)
	}
	return nil
}

// GetTranscription retrieves the transcript for a session.
// Returns (nil, nil) when none exists.
func (db *DB) GetTranscription(ctx context.Context, sessionID string) (*types.Transcription, error) {
	var t types.Transcription
	err := db.pool.QueryRow(ctx,
		`SELECT session_id, raw_text, COALESCE(formatted_text, ''), COALESCE(engine, ''),
		        speakers, processing_started_at, processing_completed_at
		 FROM transcriptions WHERE session_id = $1`,
		sessionID,
	).Scan(&t.SessionID, &t.RawText, &t.FormattedText, &t.Engine, &t.Speakers,
		&t.ProcessingStartedAt, &t.ProcessingCompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transcription: %w", err)
	}
	return &t, nil
}
