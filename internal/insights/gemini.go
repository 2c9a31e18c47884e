package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/avery/session-insights/internal/types"
)

// GeminiAnalyzer implements Analyzer on Google Gemini.
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// NewGeminiAnalyzer creates the Gemini-backed analyzer.
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAnalyzer{client: client, model: model}, nil
}

// Model returns the configured model identifier.
func (a *GeminiAnalyzer) Model() string {
	return a.model
}

// Close releases resources held by the underlying client.
func (a *GeminiAnalyzer) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Analyze runs the coaching prompt and strictly parses the JSON response.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, transcript string, session SessionContext) (*types.InsightsResult, error) {
	model := a.client.GenerativeModel(a.model)
	model.SetTemperature(0.1) // Low temperature for consistent output
	model.ResponseMIMEType = "application/json"

	prompt := BuildPrompt(session, transcript)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &APICallError{Message: "generate content failed", Cause: err}
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return nil, &APICallError{Message: "empty model response", Cause: err}
	}

	return ParseInsights(text)
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
