// Package transcribe defines the speech-to-text capability and an HTTP
// client for Whisper-compatible transcription APIs.
package transcribe

import (
	"context"
)

// Segment is one time-aligned slice of the transcript. Offsets are seconds
// from the start of the recording.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Result is the full transcript plus its ordered segments.
type Result struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// Transcriber is the transcription capability consumed by the pipeline.
type Transcriber interface {
	// Transcribe converts the audio file at path into text with segments.
	// filename is the upstream name used for format detection.
	Transcribe(ctx context.Context, path, filename string) (*Result, error)
	// Engine identifies the model/engine for the persisted record.
	Engine() string
}
