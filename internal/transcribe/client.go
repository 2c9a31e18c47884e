package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultModel   = "whisper-1"
	defaultTimeout = 5 * time.Minute
	maxRetryWait   = 2 * time.Minute
)

// APIError represents a non-2xx response from the transcription API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("transcription API returned status %d: %s", e.StatusCode, e.Body)
}

// Temporary reports whether a retry could plausibly succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Client talks to a Whisper-compatible transcription endpoint: multipart
// audio upload in, verbose JSON with segments out. Transient failures are
// retried with exponential backoff inside the call; the queue's own retry
// policy handles everything beyond that.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a transcription client. apiKey may be empty for
// self-hosted endpoints.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Engine identifies the transcription engine for persisted records.
func (c *Client) Engine() string {
	return c.model
}

// Transcribe uploads the audio file and returns the parsed transcript.
func (c *Client) Transcribe(ctx context.Context, path, filename string) (*Result, error) {
	if filename == "" {
		filename = filepath.Base(path)
	}
	// An unreadable file will not heal between attempts.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	var result *Result
	operation := func() error {
		r, err := c.transcribeOnce(ctx, path, filename)
		if err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) && !apiErr.Temporary() {
				return backoff.Permanent(err)
			}
			return err
		}
		result = r
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = maxRetryWait
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) transcribeOnce(ctx context.Context, path, filename string) (*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	_ = writer.WriteField("model", c.model)
	_ = writer.WriteField("response_format", "verbose_json")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	endpoint := c.baseURL + "/v1/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcription response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 512)}
	}

	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to parse transcription response: %w", err)
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
