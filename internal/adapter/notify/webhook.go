// Package notify delivers outbound notifications when suggestions are
// created.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

const defaultTimeout = 5 * time.Second

// WebhookNotifier posts suggestion events as JSON to a configured URL. An
// empty URL disables delivery entirely.
type WebhookNotifier struct {
	url    string
	token  string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for url. token, when set, is sent
// as a bearer credential.
func NewWebhookNotifier(url, token string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    strings.TrimSpace(url),
		token:  token,
		client: &http.Client{Timeout: defaultTimeout},
	}
}

type suggestionEvent struct {
	Event       string                   `json:"event"`
	ServiceID   string                   `json:"service_id"`
	ServiceName string                   `json:"service_name"`
	CommitHash  string                   `json:"commit_hash"`
	Status      string                   `json:"status,omitempty"`
	NextSteps   []string                 `json:"next_steps,omitempty"`
	Proposed    domain.ServiceManifest   `json:"proposed"`
	CreatedAt   string                   `json:"created_at"`
}

// SuggestionCreated implements port.Notifier.
func (n *WebhookNotifier) SuggestionCreated(ctx context.Context, svc *domain.TrackedService, sug *domain.CommitSuggestion) error {
	if n.url == "" {
		return nil
	}

	body := suggestionEvent{
		Event:       "suggestion.created",
		ServiceID:   svc.ID,
		ServiceName: svc.ServiceName,
		CommitHash:  sug.CommitHash,
		Status:      sug.Status,
		NextSteps:   sug.NextSteps,
		Proposed:    sug.Proposed,
		CreatedAt:   sug.CreatedAt.Format(time.RFC3339),
	}
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-ContextFlow-Event", body.Event)
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}

	res, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("notification rejected: status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}
