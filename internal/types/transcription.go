package types

import (
	"encoding/json"
	"strings"
	"time"
)

// Transcription is the stored transcript for a session. Exactly one per
// session; created once by the transcription stage and immutable after.
type Transcription struct {
	SessionID             string          `json:"session_id"`
	RawText               string          `json:"raw_text"`
	FormattedText         string          `json:"formatted_text"`
	Engine                string          `json:"engine"`
	Speakers              json.RawMessage `json:"speakers,omitempty"`
	ProcessingStartedAt   time.Time       `json:"processing_started_at"`
	ProcessingCompletedAt time.Time       `json:"processing_completed_at"`
}

// WordCount is a whitespace-split approximation, not locale-aware
// tokenization. The status surface recomputes this from stored text.
func (t *Transcription) WordCount() int {
	return len(strings.Fields(t.RawText))
}
