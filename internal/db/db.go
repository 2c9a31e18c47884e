// Package db provides PostgreSQL access for the pipeline's persistent
// state: sessions, processing jobs, transcriptions, and insights.
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avery/session-insights/internal/types"
)

// ErrAlreadyExists is returned when an insert-once record (transcription or
// insight) already exists for the session. Stages treat it as terminal.
var ErrAlreadyExists = errors.New("record already exists for session")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Pool exposes the underlying pool so the job queue can share it.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// GetSession retrieves a session with coach and client names joined in.
// Returns (nil, nil) when the session does not exist.
func (db *DB) GetSession(ctx context.Context, sessionID string) (*types.Session, error) {
	var s types.Session
	err := db.pool.QueryRow(ctx,
		`SELECT s.id, s.title,
		        COALESCE(coach.full_name, ''), COALESCE(client.full_name, ''),
		        s.duration_minutes, s.recording_status,
		        COALESCE(s.recording_s3_key, ''), COALESCE(s.recording_url, ''),
		        s.created_at, s.updated_at
		 FROM sessions s
		 LEFT JOIN users coach ON coach.id = s.coach_id
		 LEFT JOIN users client ON client.id = s.client_id
		 WHERE s.id = $1`,
		sessionID,
	).Scan(&s.ID, &s.Title, &s.CoachName, &s.ClientName, &s.DurationMinutes,
		&s.RecordingStatus, &s.RecordingS3Key, &s.RecordingURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// TouchSession bumps the session's updated_at so the dashboard refetches it.
func (db *DB) TouchSession(ctx context.Context, sessionID string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sessions SET updated_at = NOW() WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}
