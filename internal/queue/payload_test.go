package queue

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	SessionID string `json:"sessionId" validate:"required"`
	Source    string `json:"source,omitempty"`
}

func payloadJob(raw string) *Job {
	return &Job{
		ID:      uuid.New(),
		Queue:   "transcription",
		Payload: json.RawMessage(raw),
	}
}

func TestDecodePayload_Valid(t *testing.T) {
	got, err := DecodePayload[testPayload](payloadJob(`{"sessionId": "sess-1", "source": "recordings/a.mp3"}`))

	require.NoError(t, err)
	assert.Equal(t, "sess-1", got.SessionID)
	assert.Equal(t, "recordings/a.mp3", got.Source)
}

func TestDecodePayload_MalformedJSON(t *testing.T) {
	_, err := DecodePayload[testPayload](payloadJob(`{"sessionId":`))

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	var payloadErr *PayloadError
	require.True(t, errors.As(err, &payloadErr))
	assert.Equal(t, "transcription", payloadErr.Queue)
}

func TestDecodePayload_FailsValidation(t *testing.T) {
	_, err := DecodePayload[testPayload](payloadJob(`{"source": "recordings/a.mp3"}`))

	require.Error(t, err)
	assert.True(t, IsPermanent(err))
	var payloadErr *PayloadError
	require.True(t, errors.As(err, &payloadErr))
	assert.Contains(t, payloadErr.Message, "validation")
}
