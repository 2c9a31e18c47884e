// Package notify fires the best-effort side effects that run after insights
// are stored. Nothing here may fail the pipeline: every error is logged and
// swallowed.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avery/session-insights/internal/logger"
)

// DefaultTimeout bounds the dashboard callback request.
const DefaultTimeout = 10 * time.Second

// SessionToucher bumps a session row so watchers refetch it.
type SessionToucher interface {
	TouchSession(ctx context.Context, sessionID string) error
}

// Notifier signals the dashboard that a session's insights are ready: the
// session row is touched, and if a callback URL is configured a webhook is
// POSTed to it.
type Notifier struct {
	store       SessionToucher
	callbackURL string
	httpClient  *http.Client
	log         *logger.Logger
}

// New creates a notifier. callbackURL may be empty; the webhook is then
// skipped.
func New(store SessionToucher, callbackURL string, log *logger.Logger) *Notifier {
	return &Notifier{
		store:       store,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: DefaultTimeout},
		log:         log,
	}
}

// InsightsReady runs both side effects. Failures never propagate: the
// insights are already durably stored and the queue must not retry the
// whole stage over a notification hiccup.
func (n *Notifier) InsightsReady(ctx context.Context, sessionID string) {
	log := n.log.WithStage("notify", sessionID)

	if err := n.store.TouchSession(ctx, sessionID); err != nil {
		log.WithError(err).Warn("failed to touch session")
	}

	if n.callbackURL == "" {
		return
	}
	if err := n.postCallback(ctx, sessionID); err != nil {
		log.WithError(err).Warn("dashboard callback failed")
		return
	}
	log.Debug("dashboard callback delivered")
}

func (n *Notifier) postCallback(ctx context.Context, sessionID string) error {
	body, err := json.Marshal(map[string]string{
		"sessionId": sessionID,
		"event":     "insights-ready",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal callback body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create callback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("callback request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("callback returned status %d", resp.StatusCode)
	}
	return nil
}
