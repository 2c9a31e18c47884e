// Package pipeline implements the three-stage recording pipeline:
// recording intake validates readiness, transcription turns audio into a
// stored transcript, and the insight stage extracts structured coaching
// insights. Stages hand off through the durable job queue; each stage
// enqueues the next only after its own writes succeed, so within one
// session the chain is strictly ordered.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/avery/session-insights/internal/insights"
	"github.com/avery/session-insights/internal/logger"
	"github.com/avery/session-insights/internal/media"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/transcribe"
	"github.com/avery/session-insights/internal/types"
)

// Queue names for the three stages.
const (
	QueueRecording     = "recording-processing"
	QueueTranscription = "transcription"
	QueueInsights      = "insights"
)

// Handoff pacing. These delays tolerate eventually-consistent upstream
// writes (blob-store visibility lag); they are not ordering mechanisms.
const (
	WebhookDelay = 10 * time.Second
	HandoffDelay = 5 * time.Second
)

// Per-stage retry policies. Recording checks are cheap, so they retry often
// with short backoff; insight runs re-invoke an LLM, so they get few
// attempts and long backoff.
var (
	RecordingRetry     = queue.RetryPolicy{MaxAttempts: 5, InitialBackoff: 2 * time.Second}
	TranscriptionRetry = queue.RetryPolicy{MaxAttempts: 3, InitialBackoff: 5 * time.Second}
	InsightsRetry      = queue.RetryPolicy{MaxAttempts: 2, InitialBackoff: 10 * time.Second}
)

// Store is the persistence surface the stages need.
type Store interface {
	GetSession(ctx context.Context, sessionID string) (*types.Session, error)
	StartProcessingJob(ctx context.Context, sessionID string, jobType types.JobType) error
	CompleteProcessingJob(ctx context.Context, sessionID string, jobType types.JobType, result any) error
	FailProcessingJob(ctx context.Context, sessionID string, jobType types.JobType, message string) error
	CreateTranscription(ctx context.Context, t *types.Transcription) error
	GetTranscription(ctx context.Context, sessionID string) (*types.Transcription, error)
	CreateInsight(ctx context.Context, ins *types.Insight) error
}

// Enqueuer is the job-store surface the stages need for handoffs.
type Enqueuer interface {
	Enqueue(ctx context.Context, queueName string, payload any, opts queue.Options) (uuid.UUID, error)
}

// Resolver fetches a recording into a local file. Cleanup must run on every
// exit path.
type Resolver interface {
	Resolve(ctx context.Context, src media.Source) (string, func(), error)
}

// Notifier fires the best-effort completion side effect. Implementations
// never return errors; failures are logged and swallowed.
type Notifier interface {
	InsightsReady(ctx context.Context, sessionID string)
}

// Pipeline holds the stage handlers and their injected dependencies.
type Pipeline struct {
	store       Store
	queue       Enqueuer
	media       Resolver
	transcriber transcribe.Transcriber
	analyzer    insights.Analyzer
	notifier    Notifier
	speakers    SpeakerStrategy
	log         *logger.Logger
}

// New wires a pipeline. All dependencies are explicit handles so tests can
// substitute doubles; there is no package-level state.
func New(store Store, q Enqueuer, resolver Resolver, transcriber transcribe.Transcriber, analyzer insights.Analyzer, notifier Notifier, log *logger.Logger) *Pipeline {
	return &Pipeline{
		store:       store,
		queue:       q,
		media:       resolver,
		transcriber: transcriber,
		analyzer:    analyzer,
		notifier:    notifier,
		speakers:    DefaultSpeakers(),
		log:         log,
	}
}

// EnqueueRecording schedules a recording-intake job. The webhook uses
// WebhookDelay so upstream storage can settle; manual triggers pass zero.
func (p *Pipeline) EnqueueRecording(ctx context.Context, payload types.RecordingJobPayload, delay time.Duration) (uuid.UUID, error) {
	return p.queue.Enqueue(ctx, QueueRecording, payload, queue.Options{
		Delay: delay,
		Retry: RecordingRetry,
	})
}
