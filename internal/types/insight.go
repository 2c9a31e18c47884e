package types

import "time"

// ActionItem is a single follow-up extracted from the session.
type ActionItem struct {
	Text     string `json:"text"`
	Assignee string `json:"assignee"`
	Priority string `json:"priority"`
}

// SentimentScores holds the analyzer's probability triple. The pipeline does
// not validate that the values sum to 1; callers needing that invariant must
// check at the boundary.
type SentimentScores struct {
	Positive float64 `json:"positive"`
	Neutral  float64 `json:"neutral"`
	Negative float64 `json:"negative"`
}

// EmotionalMoment marks a timestamped point of significance in the session.
type EmotionalMoment struct {
	Timestamp   string `json:"timestamp"`
	Description string `json:"description"`
}

// InsightsResult is the strict JSON shape requested from the analysis
// capability. It is validated against an embedded schema before anything is
// persisted.
type InsightsResult struct {
	Summary                   string            `json:"summary"`
	KeyTopics                 []string          `json:"key_topics"`
	ActionItems               []ActionItem      `json:"action_items"`
	OverallSentiment          string            `json:"overall_sentiment"`
	SentimentScores           SentimentScores   `json:"sentiment_scores"`
	EmotionalMoments          []EmotionalMoment `json:"emotional_moments"`
	GoalsDiscussed            []string          `json:"goals_discussed"`
	ProgressIndicators        []string          `json:"progress_indicators"`
	ChallengesIdentified      []string          `json:"challenges_identified"`
	Breakthroughs             []string          `json:"breakthroughs"`
	SuggestedFollowups        []string          `json:"suggested_followups"`
	ClientEngagementScore     float64           `json:"client_engagement_score"`
	SessionEffectivenessScore float64           `json:"session_effectiveness_score"`
}

// Insight is the persisted insight record for a session. Exactly one per
// session; created once by the insight stage.
type Insight struct {
	SessionID             string    `json:"session_id"`
	InsightsResult                  // persisted verbatim from the parsed analyzer output
	AIModel               string    `json:"ai_model"`
	ProcessingCompletedAt time.Time `json:"processing_completed_at"`
}
