package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/avery/session-insights/internal/pipeline"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

var validate = validator.New()

// RecordingCompletedRequest is the webhook body sent by the dashboard when a
// recording upload finishes.
type RecordingCompletedRequest struct {
	SessionID      string `json:"sessionId" validate:"required"`
	RecordingS3Key string `json:"recordingS3Key,omitempty"`
	RecordingURL   string `json:"recordingUrl,omitempty" validate:"omitempty,url"`
}

// EnqueueResponse acknowledges a scheduled pipeline run.
type EnqueueResponse struct {
	JobID     string `json:"jobId"`
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
}

// handleRecordingCompleted accepts the upload webhook and schedules the
// recording-intake job with the settle delay.
func (s *Server) handleRecordingCompleted(w http.ResponseWriter, r *http.Request) {
	var req RecordingCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	jobID, err := s.trigger.EnqueueRecording(r.Context(), types.RecordingJobPayload{
		SessionID:      req.SessionID,
		RecordingS3Key: req.RecordingS3Key,
		RecordingURL:   req.RecordingURL,
	}, pipeline.WebhookDelay)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to enqueue job: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, EnqueueResponse{
		JobID:     jobID.String(),
		SessionID: req.SessionID,
		Status:    "queued",
	})
}

// handleProcessSession is the manual trigger. Unlike the webhook it verifies
// the session up front and skips the settle delay, since an operator is
// retrying something that already exists.
func (s *Server) handleProcessSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	jobID, err := s.trigger.EnqueueRecording(r.Context(), types.RecordingJobPayload{
		SessionID: sessionID,
	}, 0)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to enqueue job: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusAccepted, EnqueueResponse{
		JobID:     jobID.String(),
		SessionID: sessionID,
		Status:    "queued",
	})
}

// handleSessionStatus returns the pipeline state for one session: the
// session's recording state joined with the processing view.
func (s *Server) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Session ID is required")
		return
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if session == nil {
		s.errorResponse(w, http.StatusNotFound, "Session not found")
		return
	}

	status, err := s.store.GetProcessingStatus(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"session_id":       sessionID,
		"recording_status": session.RecordingStatus,
		"jobs":             status.Jobs,
		"transcription":    status.Transcription,
		"insight":          status.Insight,
	})
}

// handleQueueStats returns per-queue counters for the three pipeline queues.
func (s *Server) handleQueueStats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]queue.Counts, 3)
	for _, name := range []string{
		pipeline.QueueRecording,
		pipeline.QueueTranscription,
		pipeline.QueueInsights,
	} {
		counts, err := s.counter.CountJobs(r.Context(), name)
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Failed to count jobs: "+err.Error())
			return
		}
		stats[name] = counts
	}

	s.jsonResponse(w, http.StatusOK, stats)
}
