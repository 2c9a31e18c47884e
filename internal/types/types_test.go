package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordingReady(t *testing.T) {
	s := &Session{RecordingStatus: RecordingCompleted}
	assert.True(t, s.RecordingReady())

	for _, status := range []RecordingStatus{RecordingNotStarted, RecordingUploading, RecordingFailed} {
		s.RecordingStatus = status
		assert.False(t, s.RecordingReady(), "status %s must not be ready", status)
	}
}

func TestTranscriptionWordCount(t *testing.T) {
	assert.Equal(t, 0, (&Transcription{}).WordCount())
	assert.Equal(t, 3, (&Transcription{RawText: "one two three"}).WordCount())
	assert.Equal(t, 2, (&Transcription{RawText: "  spaced \n out  "}).WordCount())
}

func TestProcessingJobIsDone(t *testing.T) {
	assert.False(t, (&ProcessingJob{Status: JobStatusPending}).IsDone())
	assert.False(t, (&ProcessingJob{Status: JobStatusProcessing}).IsDone())
	assert.True(t, (&ProcessingJob{Status: JobStatusCompleted}).IsDone())
	assert.True(t, (&ProcessingJob{Status: JobStatusFailed}).IsDone())
}

// The queue payloads are a wire contract with the dashboard's webhook sender;
// the camelCase keys must not drift.
func TestRecordingJobPayloadWireFormat(t *testing.T) {
	raw, err := json.Marshal(RecordingJobPayload{
		SessionID:      "sess-1",
		RecordingS3Key: "recordings/a.mp3",
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "sessionId")
	assert.Contains(t, decoded, "recordingS3Key")
	assert.NotContains(t, decoded, "recordingUrl", "empty source fields are omitted")
}
