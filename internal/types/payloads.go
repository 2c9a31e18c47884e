package types

// Queue payloads form a tagged union over the three pipeline queues. Each is
// decoded and validated at dequeue time so a malformed payload fails fast
// with a typed error instead of propagating empty fields into a stage.

// RecordingJobPayload triggers the recording-intake stage. The recording
// source is optional here: the webhook supplies it when known, otherwise the
// stage falls back to the session's stored key/URL.
type RecordingJobPayload struct {
	SessionID      string `json:"sessionId" validate:"required"`
	RecordingS3Key string `json:"recordingS3Key,omitempty"`
	RecordingURL   string `json:"recordingUrl,omitempty"`
}

// TranscriptionJobPayload carries the resolved recording source into the
// transcription stage. LocalPath is used by operator re-runs against a file
// already on disk; the stage skips the temp-file fetch for it.
type TranscriptionJobPayload struct {
	SessionID      string `json:"sessionId" validate:"required"`
	RecordingS3Key string `json:"recordingS3Key,omitempty"`
	RecordingURL   string `json:"recordingUrl,omitempty"`
	LocalPath      string `json:"localPath,omitempty"`
}

// InsightJobPayload triggers insight generation for a transcribed session.
type InsightJobPayload struct {
	SessionID string `json:"sessionId" validate:"required"`
}
