package pipeline

import "fmt"

// SessionNotFoundError means the referenced session row does not exist.
// Terminal: the recording stage fails the job permanently on it.
type SessionNotFoundError struct {
	SessionID string
}

func (e *SessionNotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// TranscriptionNotFoundError means the insight stage ran for a session with
// no stored transcript. The queue's generic policy still retries it even
// though the precondition cannot self-resolve; see DESIGN.md.
type TranscriptionNotFoundError struct {
	SessionID string
}

func (e *TranscriptionNotFoundError) Error() string {
	return fmt.Sprintf("transcription not found for session: %s", e.SessionID)
}
