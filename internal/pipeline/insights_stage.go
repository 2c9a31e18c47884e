package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/avery/session-insights/internal/db"
	"github.com/avery/session-insights/internal/insights"
	"github.com/avery/session-insights/internal/queue"
	"github.com/avery/session-insights/internal/types"
)

// InsightsStageResult is the job result summary stored on success.
type InsightsStageResult struct {
	Success           bool `json:"success"`
	InsightsGenerated bool `json:"insightsGenerated"`
}

// HandleInsights runs the analyzer over the stored transcript and persists
// the structured insights. Preconditions are checked before the status row
// is touched: a missing transcript leaves no trace in processing_jobs, it
// only shows up as queue retries.
func (p *Pipeline) HandleInsights(ctx context.Context, job *queue.Job) (any, error) {
	payload, err := queue.DecodePayload[types.InsightJobPayload](job)
	if err != nil {
		return nil, err
	}
	log := p.log.WithStage("insights", payload.SessionID)

	transcription, err := p.store.GetTranscription(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if transcription == nil {
		return nil, &TranscriptionNotFoundError{SessionID: payload.SessionID}
	}

	session, err := p.store.GetSession(ctx, payload.SessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, queue.Permanent(&SessionNotFoundError{SessionID: payload.SessionID})
	}

	if err := p.store.StartProcessingJob(ctx, payload.SessionID, types.JobTypeInsights); err != nil {
		return nil, err
	}

	// The formatted transcript carries the timestamps and speaker labels
	// the analyzer needs to produce timestamped emotional moments.
	result, err := p.analyzer.Analyze(ctx, transcription.FormattedText, insights.SessionContext{
		CoachName:       session.CoachName,
		ClientName:      session.ClientName,
		Title:           session.Title,
		DurationMinutes: session.DurationMinutes,
	})
	if err != nil {
		p.failJob(ctx, payload.SessionID, types.JobTypeInsights, err)
		return nil, err
	}

	insight := &types.Insight{
		SessionID:             payload.SessionID,
		InsightsResult:        *result,
		AIModel:               p.analyzer.Model(),
		ProcessingCompletedAt: time.Now().UTC(),
	}
	if err := p.store.CreateInsight(ctx, insight); err != nil {
		p.failJob(ctx, payload.SessionID, types.JobTypeInsights, err)
		if errors.Is(err, db.ErrAlreadyExists) {
			return nil, queue.Permanent(err)
		}
		return nil, err
	}

	if err := p.store.CompleteProcessingJob(ctx, payload.SessionID, types.JobTypeInsights, result); err != nil {
		return nil, err
	}

	p.notifier.InsightsReady(ctx, payload.SessionID)

	log.Info("insights stored")
	return InsightsStageResult{Success: true, InsightsGenerated: true}, nil
}
