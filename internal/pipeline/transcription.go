package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"time"

	"github.com/avery/session-insights/internal/db"
	"github.com/avery/session-insights/internal/media"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

// TranscriptionResult is the job result summary stored on success.
type TranscriptionResult struct {
	Success   bool `json:"success"`
	WordCount int  `json:"wordCount"`
	Length    int  `json:"length"`
}

// HandleTranscription fetches the recording, transcribes it, stores the
// transcript, and chains into insight generation. Every failure marks the
// status row before re-raising so the dashboard sees it while the queue
// retries.
func (p *Pipeline) HandleTranscription(ctx context.Context, job *queue.Job) (any, error) {
	payload, err := queue.DecodePayload[types.TranscriptionJobPayload](job)
	if err != nil {
		return nil, err
	}
	log := p.log.WithStage("transcription", payload.SessionID)
	startedAt := time.Now().UTC()

	if err := p.store.StartProcessingJob(ctx, payload.SessionID, types.JobTypeTranscription); err != nil {
		return nil, err
	}

	src := media.Source{
		S3Key:     payload.RecordingS3Key,
		URL:       payload.RecordingURL,
		LocalPath: payload.LocalPath,
	}
	path, cleanup, err := p.media.Resolve(ctx, src)
	if err != nil {
		p.failJob(ctx, payload.SessionID, types.JobTypeTranscription, err)
		return nil, err
	}
	defer cleanup()

	result, err := p.transcriber.Transcribe(ctx, path, sourceFilename(src, path))
	if err != nil {
		p.failJob(ctx, payload.SessionID, types.JobTypeTranscription, err)
		return nil, err
	}

	formatted := FormatTranscript(result.Segments, p.speakers)

	transcription := &types.Transcription{
		SessionID:     payload.SessionID,
		RawText:       result.Text,
		FormattedText: formatted,
		Engine:        p.transcriber.Engine(),
		// No diarization metadata yet; labels in the formatted text come
		// from the alternation heuristic.
		Speakers:              json.RawMessage(`[]`),
		ProcessingStartedAt:   startedAt,
		ProcessingCompletedAt: time.Now().UTC(),
	}
	if err := p.store.CreateTranscription(ctx, transcription); err != nil {
		p.failJob(ctx, payload.SessionID, types.JobTypeTranscription, err)
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, queue.Permanent(err)
		}
		return nil, err
	}

	wordCount := transcription.WordCount()
	if err := p.store.CompleteProcessingJob(ctx, payload.SessionID, types.JobTypeTranscription,
		TranscriptionResult{Success: true, WordCount: wordCount, Length: len(result.Text)},
	); err != nil {
		return nil, err
	}

	if _, err := p.queue.Enqueue(ctx, QueueInsights,
		types.InsightJobPayload{SessionID: payload.SessionID},
		queue.Options{Delay: HandoffDelay, Retry: InsightsRetry},
	); err != nil {
		return nil, err
	}

	log.WithField("word_count", wordCount).Info("transcription stored, insight job enqueued")
	return TranscriptionResult{Success: true, WordCount: wordCount, Length: len(result.Text)}, nil
}

// failJob records the failure on the status row. A write error here is
// logged and dropped: the stage error being re-raised is the one that
// matters.
func (p *Pipeline) failJob(ctx context.Context, sessionID string, jobType types.JobType, cause error) {
	if err := p.store.FailProcessingJob(ctx, sessionID, jobType, cause.Error()); err != nil {
		p.log.WithStage(string(jobType), sessionID).
			WithError(err).Warn("failed to record job failure")
	}
}

// sourceFilename picks the upstream filename for format detection: the base
// of whichever source field was used.
func sourceFilename(src media.Source, resolvedPath string) string {
	switch {
	case src.S3Key != "":
		return filepath.Base(src.S3Key)
	case src.URL != "":
		return filepath.Base(src.URL)
	case src.LocalPath != "":
		return filepath.Base(src.LocalPath)
	default:
		return filepath.Base(resolvedPath)
	}
}
