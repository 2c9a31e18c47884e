// Package server provides the HTTP API for the processing pipeline: the
// recording-completed webhook, manual processing triggers, and the
// per-session and per-queue status surfaces.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/avery/session-insights/internal/db"
	"github.com/avery/session-insights/internal/logger"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

// StatusStore is the read-only persistence surface the handlers need.
type StatusStore interface {
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	GetProcessingStatus(ctx context.Context, sessionID string) (*db.ProcessingStatus, error)
}

// Trigger schedules recording-intake jobs.
type Trigger interface {
	EnqueueRecording(ctx context.Context, payload types.RecordingJobPayload, delay time.Duration) (uuid.UUID, error)
}

// QueueCounter exposes per-queue counters for the stats endpoint.
type QueueCounter interface {
	CountJobs(ctx context.Context, queueName string) (queue.Counts, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      StatusStore
	trigger    Trigger
	counter    QueueCounter
	log        *logger.Logger
}

// New creates a new server instance
func New(port int, store StatusStore, trigger Trigger, counter QueueCounter, log *logger.Logger) *Server {
	s := &Server{
		store:   store,
		trigger: trigger,
		counter: counter,
		log:     log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhooks/recording-completed", s.handleRecordingCompleted)
	mux.HandleFunc("POST /sessions/{id}/process", s.handleProcessSession)
	mux.HandleFunc("GET /sessions/{id}/status", s.handleSessionStatus)
	mux.HandleFunc("GET /queues/stats", s.handleQueueStats)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start listens until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.WithRequest(r).WithField("duration", time.Since(start).String()).Info("request completed")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.WithError(err).Error("error encoding JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
