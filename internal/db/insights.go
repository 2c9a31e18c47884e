package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/avery/session-insights/internal/types"
)

// CreateInsight inserts the insight record for a session, verbatim from the
// parsed analyzer output. Insert-once, same as transcriptions.
func (db *DB) CreateInsight(ctx context.Context, ins *types.Insight) error {
	keyTopics, _ := json.Marshal(ins.KeyTopics)
	actionItems, _ := json.Marshal(ins.ActionItems)
	sentimentScores, _ := json.Marshal(ins.SentimentScores)
	emotionalMoments, _ := json.Marshal(ins.EmotionalMoments)
	goals, _ := json.Marshal(ins.GoalsDiscussed)
	progress, _ := json.Marshal(ins.ProgressIndicators)
	challenges, _ := json.Marshal(ins.ChallengesIdentified)
	breakthroughs, _ := json.Marshal(ins.Breakthroughs)
	followups, _ := json.Marshal(ins.SuggestedFollowups)

	tag, err := db.pool.Exec(ctx,
		`INSERT INTO insights
		     (session_id, summary, key_topics, action_items, overall_sentiment,
		      sentiment_scores, emotional_moments, goals_discussed,
		      progress_indicators, challenges_identified, breakthroughs,
		      suggested_followups, client_engagement_score,
		      session_effectiveness_score, ai_model, processing_completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 ON CONFLICT (session_id) DO NOTHING`,
		ins.SessionID, ins.Summary, keyTopics, actionItems, ins.OverallSentiment,
		sentimentScores, emotionalMoments, goals, progress, challenges,
		breakthroughs, followups, ins.ClientEngagementScore,
		ins.SessionEffectivenessScore, ins.AIModel, ins.ProcessingCompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("insight for session %s: %w", ins.SessionID, ErrAlreadyExists)
	}
	return nil
}

// GetInsight retrieves the insight record for a session.
// Returns (nil, nil) when none exists.
func (db *DB) GetInsight(ctx context.Context, sessionID string) (*types.Insight, error) {
	var ins types.Insight
	var keyTopics, actionItems, sentimentScores, emotionalMoments []byte
	var goals, progress, challenges, breakthroughs, followups []byte

	err := db.pool.QueryRow(ctx,
		`SELECT session_id, summary, key_topics, action_items, overall_sentiment,
		        sentiment_scores, emotional_moments, goals_discussed,
		        progress_indicators, challenges_identified, breakthroughs,
		        suggested_followups, client_engagement_score,
		        session_effectiveness_score, COALESCE(ai_model, ''),
		        processing_completed_at
		 FROM insights WHERE session_id = $1`,
		sessionID,
	).Scan(&ins.SessionID, &ins.Summary, &keyTopics, &actionItems,
		&ins.OverallSentiment, &sentimentScores, &emotionalMoments, &goals,
		&progress, &challenges, &breakthroughs, &followups,
		&ins.ClientEngagementScore, &ins.SessionEffectivenessScore,
		&ins.AIModel, &ins.ProcessingCompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}

	_ = json.Unmarshal(keyTopics, &ins.KeyTopics)
	_ = json.Unmarshal(actionItems, &ins.ActionItems)
	_ = json.Unmarshal(sentimentScores, &ins.SentimentScores)
	_ = json.Unmarshal(emotionalMoments, &ins.EmotionalMoments)
	_ = json.Unmarshal(goals, &ins.GoalsDiscussed)
	_ = json.Unmarshal(progress, &ins.ProgressIndicators)
	_ = json.Unmarshal(challenges, &ins.ChallengesIdentified)
	_ = json.Unmarshal(breakthroughs, &ins.Breakthroughs)
	_ = json.Unmarshal(followups, &ins.SuggestedFollowups)

	return &ins, nil
}
