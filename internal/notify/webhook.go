// Package notify delivers best-effort sweep summaries to an external
// webhook. Delivery failures are reported to the caller but carry no
// retry semantics.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/alexjbarnes/skport-sync/internal/store"
	"github.com/alexjbarnes/skport-sync/skport"
)

const defaultTimeout = 10 * time.Second

// Webhook posts JSON summaries to a single configured URL.
type Webhook struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewWebhook creates a Webhook notifier. httpClient may be nil, in which
// case a client with a short timeout is used.
func NewWebhook(url string, httpClient *http.Client) *Webhook {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	return &Webhook{url: url, httpClient: httpClient, now: time.Now}
}

type attendanceMessage struct {
	Event    string          `json:"event"`
	Account  string          `json:"account"`
	Nickname string          `json:"nickname"`
	Rewards  []skport.Reward `json:"rewards"`
	At       time.Time       `json:"at"`
}

// NotifyAttendance posts a summary of a successful attendance claim.
func (w *Webhook) NotifyAttendance(ctx context.Context, account store.Account, rewards []skport.Reward) error {
	msg := attendanceMessage{
		Event:    "attendance",
		Account:  account.ID,
		Nickname: account.Nickname,
		Rewards:  rewards,
		At:       w.now().UTC(),
	}

	return w.post(ctx, msg)
}

func (w *Webhook) post(ctx context.Context, msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
