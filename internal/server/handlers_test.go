package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avery/session-insights/internal/db"
	"github.com/avery/session-insights/internal/logger"
	"github.com/avery/session-insights/internal/pipeline"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

type fakeStatusStore struct {
	session *types.Session
	status  *db.ProcessingStatus
	err     error
}

func (f *fakeStatusStore) GetSession(_ context.Context, _ string) (*types.Session, error) {
	return f.session, f.err
}

func (f *fakeStatusStore) GetProcessingStatus(_ context.Context, sessionID string) (*db.ProcessingStatus, error) {
	if f.status != nil {
		return f.status, nil
	}
	return &db.ProcessingStatus{SessionID: sessionID}, nil
}

type triggerCall struct {
	payload types.RecordingJobPayload
	delay   time.Duration
}

type fakeTrigger struct {
	calls []triggerCall
	err   error
}

func (f *fakeTrigger) EnqueueRecording(_ context.Context, payload types.RecordingJobPayload, delay time.Duration) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.calls = append(f.calls, triggerCall{payload: payload, delay: delay})
	return uuid.New(), nil
}

type fakeCounter struct {
	counts map[string]queue.Counts
	err    error
}

func (f *fakeCounter) CountJobs(_ context.Context, queueName string) (queue.Counts, error) {
	if f.err != nil {
		return queue.Counts{}, f.err
	}
	return f.counts[queueName], nil
}

func newTestServer() (*Server, *fakeStatusStore, *fakeTrigger, *fakeCounter) {
	store := &fakeStatusStore{}
	trigger := &fakeTrigger{}
	counter := &fakeCounter{counts: map[string]queue.Counts{}}
	return New(0, store, trigger, counter, logger.Discard()), store, trigger, counter
}

func TestHandleRecordingCompleted_Success(t *testing.T) {
	srv, _, trigger, _ := newTestServer()

	body, _ := json.Marshal(RecordingCompletedRequest{
		SessionID:      "sess-1",
		RecordingS3Key: "recordings/a.mp3",
	})
	req := httptest.NewRequest(http.MethodPost, "/webhooks/recording-completed", bytes.NewReader(body))
	w := httptest.NewRecorder()

	srv.handleRecordingCompleted(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	var resp EnqueueResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp.Status)
	assert.Equal(t, "sess-1", resp.SessionID)
	assert.NotEmpty(t, resp.JobID)

	require.Len(t, trigger.calls, 1)
	assert.Equal(t, "sess-1", trigger.calls[0].payload.SessionID)
	assert.Equal(t, "recordings/a.mp3", trigger.calls[0].payload.RecordingS3Key)
	assert.Equal(t, pipeline.WebhookDelay, trigger.calls[0].delay)
}

func TestHandleRecordingCompleted_MissingSessionID(t *testing.T) {
	srv, _, trigger, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recording-completed",
		bytes.NewReader([]byte(`{"recordingS3Key": "recordings/a.mp3"}`)))
	w := httptest.NewRecorder()

	srv.handleRecordingCompleted(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, trigger.calls)
}

func TestHandleRecordingCompleted_InvalidBody(t *testing.T) {
	srv, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recording-completed",
		bytes.NewReader([]byte(`not json`)))
	w := httptest.NewRecorder()

	srv.handleRecordingCompleted(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRecordingCompleted_InvalidURL(t *testing.T) {
	srv, _, trigger, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/webhooks/recording-completed",
		bytes.NewReader([]byte(`{"sessionId": "sess-1", "recordingUrl": "not a url"}`)))
	w := httptest.NewRecorder()

	srv.handleRecordingCompleted(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, trigger.calls)
}

func TestHandleProcessSession_Success(t *testing.T) {
	srv, store, trigger, _ := newTestServer()
	store.session = &types.Session{ID: "sess-1", RecordingStatus: types.RecordingCompleted}

	req := httptest.NewRequest(http.MethodPost, "/sessions/sess-1/process", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	srv.handleProcessSession(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, trigger.calls, 1)
	assert.Equal(t, time.Duration(0), trigger.calls[0].delay, "manual triggers skip the settle delay")
}

func TestHandleProcessSession_NotFound(t *testing.T) {
	srv, _, trigger, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/process", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	srv.handleProcessSession(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, trigger.calls)
}

func TestHandleSessionStatus_Success(t *testing.T) {
	srv, store, _, _ := newTestServer()
	store.session = &types.Session{ID: "sess-1", RecordingStatus: types.RecordingCompleted}
	store.status = &db.ProcessingStatus{
		SessionID: "sess-1",
		Jobs: []types.ProcessingJob{
			{SessionID: "sess-1", JobType: types.JobTypeTranscription, Status: types.JobStatusCompleted},
		},
		Transcription: &db.TranscriptionStatus{WordCount: 420, Engine: "whisper-1"},
	}

	req := httptest.NewRequest(http.MethodGet, "/sessions/sess-1/status", nil)
	req.SetPathValue("id", "sess-1")
	w := httptest.NewRecorder()

	srv.handleSessionStatus(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp["session_id"])
	assert.Equal(t, "completed", resp["recording_status"])
	assert.NotNil(t, resp["transcription"])
	jobs, ok := resp["jobs"].([]any)
	require.True(t, ok)
	assert.Len(t, jobs, 1)
}

func TestHandleSessionStatus_NotFound(t *testing.T) {
	srv, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing/status", nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()

	srv.handleSessionStatus(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleQueueStats(t *testing.T) {
	srv, _, _, counter := newTestServer()
	counter.counts[pipeline.QueueTranscription] = queue.Counts{Waiting: 2, Active: 1, Completed: 7, Delayed: 1}

	req := httptest.NewRequest(http.MethodGet, "/queues/stats", nil)
	w := httptest.NewRecorder()

	srv.handleQueueStats(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]queue.Counts
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 3)
	assert.Equal(t, 2, resp[pipeline.QueueTranscription].Waiting)
	assert.Equal(t, 1, resp[pipeline.QueueTranscription].Delayed)
}

func TestHandleQueueStats_Error(t *testing.T) {
	srv, _, _, counter := newTestServer()
	counter.err = errors.New("db down")

	req := httptest.NewRequest(http.MethodGet, "/queues/stats", nil)
	w := httptest.NewRecorder()

	srv.handleQueueStats(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHealth(t *testing.T) {
	srv, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}
