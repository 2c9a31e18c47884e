package insights

import (
	"fmt"
	"strings"
)

// BuildPrompt constructs the analysis prompt: session context, the output
// contract, then the transcript.
func BuildPrompt(session SessionContext, transcript string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert coaching-session analyst. Analyze the transcript of a ")
	sb.WriteString("one-on-one coaching session and produce structured insights for the coach.\n\n")

	sb.WriteString("Session context:\n")
	sb.WriteString(fmt.Sprintf("- Coach: %s\n", session.CoachName))
	sb.WriteString(fmt.Sprintf("- Client: %s\n", session.ClientName))
	sb.WriteString(fmt.Sprintf("- Title: %s\n", session.Title))
	sb.WriteString(fmt.Sprintf("- Duration: %d minutes\n\n", session.DurationMinutes))

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n")
	sb.WriteString(`{
  "summary": "string",
  "key_topics": ["string"],
  "action_items": [{"text": "string", "assignee": "coach|client", "priority": "low|medium|high"}],
  "overall_sentiment": "positive|neutral|negative",
  "sentiment_scores": {"positive": 0.0, "neutral": 0.0, "negative": 0.0},
  "emotional_moments": [{"timestamp": "MM:SS", "description": "string"}],
  "goals_discussed": ["string"],
  "progress_indicators": ["string"],
  "challenges_identified": ["string"],
  "breakthroughs": ["string"],
  "suggested_followups": ["string"],
  "client_engagement_score": 0,
  "session_effectiveness_score": 0
}`)
	sb.WriteString("\n\nIMPORTANT:\n")
	sb.WriteString("- Base every field on the transcript, do not invent content.\n")
	sb.WriteString("- client_engagement_score and session_effectiveness_score are 0-100.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Transcript:\n\"\"\"\n")
	sb.WriteString(transcript)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}
