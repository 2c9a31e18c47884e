// Package insights defines the analysis capability that turns a session
// transcript into structured coaching insights, and its Gemini-backed
// implementation.
package insights

import (
	"context"

	"github.com/avery/session-insights/internal/types"
)

// SessionContext is the denormalized session information handed to the
// analyzer alongside the transcript.
type SessionContext struct {
	CoachName       string
	ClientName      string
	Title           string
	DurationMinutes int
}

// Analyzer is the analysis capability consumed by the insight stage.
type Analyzer interface {
	// Analyze produces structured insights from a transcript. A response
	// that is not valid JSON or does not match the expected schema is
	// reported as a *ParseError carrying the raw payload.
	Analyze(ctx context.Context, transcript string, session SessionContext) (*types.InsightsResult, error)
	// Model identifies the underlying model for persisted records.
	Model() string
}
