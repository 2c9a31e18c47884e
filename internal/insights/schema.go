package insights

import (
	"encoding/json"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/avery/session-insights/internal/types"
)

// insightsSchema is the contract the analyzer's JSON response must satisfy.
// It checks structure and types only; the numeric engagement/effectiveness
// scores and sentiment probabilities are passed through unvalidated, since
// range enforcement is the consumer's concern. The action item priority is
// constrained because a bad value there breaks persistence.
const insightsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": [
    "summary", "key_topics", "action_items", "overall_sentiment",
    "sentiment_scores", "emotional_moments", "goals_discussed",
    "progress_indicators", "challenges_identified", "breakthroughs",
    "suggested_followups", "client_engagement_score",
    "session_effectiveness_score"
  ],
  "properties": {
    "summary": {"type": "string"},
    "key_topics": {"type": "array", "items": {"type": "string"}},
    "action_items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text", "assignee", "priority"],
        "properties": {
          "text": {"type": "string"},
          "assignee": {"type": "string"},
          "priority": {"type": "string", "enum": ["low", "medium", "high"]}
        }
      }
    },
    "overall_sentiment": {"type": "string"},
    "sentiment_scores": {
      "type": "object",
      "required": ["positive", "neutral", "negative"],
      "properties": {
        "positive": {"type": "number"},
        "neutral": {"type": "number"},
        "negative": {"type": "number"}
      }
    },
    "emotional_moments": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["timestamp", "description"],
        "properties": {
          "timestamp": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "goals_discussed": {"type": "array", "items": {"type": "string"}},
    "progress_indicators": {"type": "array", "items": {"type": "string"}},
    "challenges_identified": {"type": "array", "items": {"type": "string"}},
    "breakthroughs": {"type": "array", "items": {"type": "string"}},
    "suggested_followups": {"type": "array", "items": {"type": "string"}},
    "client_engagement_score": {"type": "number"},
    "session_effectiveness_score": {"type": "number"}
  }
}`

// ParseInsights strictly decodes an analyzer response. Markdown code fences
// are stripped first since models wrap JSON despite instructions; anything
// else wrong surfaces as a *ParseError with the raw payload attached.
func ParseInsights(raw string) (*types.InsightsResult, error) {
	cleaned := cleanJSONBlock(raw)

	schemaLoader := gojsonschema.NewStringLoader(insightsSchema)
	documentLoader := gojsonschema.NewStringLoader(cleaned)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, &ParseError{
			Message:     "response is not valid JSON",
			RawResponse: raw,
			Cause:       err,
		}
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			problems = append(problems, field+": "+desc.Description())
		}
		return nil, &ParseError{
			Message:     "response does not match expected schema: " + strings.Join(problems, "; "),
			RawResponse: raw,
		}
	}

	var insights types.InsightsResult
	if err := json.Unmarshal([]byte(cleaned), &insights); err != nil {
		return nil, &ParseError{
			Message:     "failed to decode response",
			RawResponse: raw,
			Cause:       err,
		}
	}
	return &insights, nil
}

// cleanJSONBlock removes markdown code block wrappers from JSON.
func cleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
