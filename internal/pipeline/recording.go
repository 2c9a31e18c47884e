package pipeline

import (
	"context"

	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

// SkipResult is the successful no-op outcome for a session whose recording
// is not ready. Deliberately not an error: the recording may legitimately
// still be uploading, and re-triggering is the webhook's responsibility,
// not the queue's.
type SkipResult struct {
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason"`
}

// RecordingResult reports a successful handoff to transcription.
type RecordingResult struct {
	SessionID  string `json:"sessionId"`
	Transcribe bool   `json:"transcribe"`
}

// HandleRecording is the recording-intake stage: validate the session is
// ready, then chain into transcription. No processing_jobs row is written
// here; status tracking starts at transcription, so retry exhaustion of
// this stage is visible only through queue stats.
func (p *Pipeline) HandleRecording(ctx context.Context, job *queue.Job) (any, error) {
	payload, err := queue.DecodePayload[types.RecordingJobPayload](job)
	if err != nil {
		return nil, err
	}
	log := p.log.WithStage("recording", payload.SessionID)

	session, err := p.store.GetSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, queue.Permanent(&SessionNotFoundError{SessionID: payload.SessionID})
	}

	if !session.RecordingReady() {
		log.WithField("recording_status", session.RecordingStatus).
			Info("recording not completed, skipping")
		return SkipResult{Skipped: true, Reason: "Recording not completed"}, nil
	}

	// Webhook-supplied source wins; fall back to what the session stored.
	next := types.TranscriptionJobPayload{
		SessionID:      payload.SessionID,
		RecordingS3Key: payload.RecordingS3Key,
		RecordingURL:   payload.RecordingURL,
	}
	if next.RecordingS3Key == "" && next.RecordingURL == "" {
		next.RecordingS3Key = session.RecordingS3Key
		next.RecordingURL = session.RecordingURL
	}

	if _, err := p.queue.Enqueue(ctx, QueueTranscription, next, queue.Options{
		Delay: HandoffDelay,
		Retry: TranscriptionRetry,
	}); err != nil {
		return nil, err
	}

	log.Info("transcription job enqueued")
	return RecordingResult{SessionID: payload.SessionID, Transcribe: true}, nil
}
