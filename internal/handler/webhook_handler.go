// Package handler exposes the HTTP surface: webhook ingress and the
// management API.
package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/service"
	"github.com/gofiber/fiber/v3"
)

// repoSource resolves inbound deliveries to tracked repositories.
type repoSource interface {
	GetRepositoryByRemoteID(ctx context.Context, remoteID int64) (*domain.Repository, error)
}

// pushProcessor turns a push delivery into suggestions.
type pushProcessor interface {
	ProcessPush(ctx context.Context, repo *domain.Repository, commits []domain.PushCommit) (*service.PushResult, error)
}

// auditWriter persists audit records for processed deliveries.
type auditWriter interface {
	WriteAudit(action, resource, details, ip, userAgent string) error
}

// WebhookHandler receives GitHub push deliveries.
type WebhookHandler struct {
	repos  repoSource
	pushes pushProcessor
	audit  auditWriter
}

// NewWebhookHandler creates a webhook handler. audit may be nil.
func NewWebhookHandler(repos repoSource, pushes pushProcessor, audit auditWriter) *WebhookHandler {
	return &WebhookHandler{repos: repos, pushes: pushes, audit: audit}
}

// Register sets up the webhook route on a group that already carries the
// rate limiter.
func (h *WebhookHandler) Register(router fiber.Router) {
	router.Post("/github", h.Handle)
}

// pushPayload is the subset of the GitHub push event we consume.
type pushPayload struct {
	Ref        string `json:"ref"`
	Repository struct {
		ID       int64  `json:"id"`
		FullName string `json:"full_name"`
	} `json:"repository"`
	Commits []domain.PushCommit `json:"commits"`
}

// Handle processes one delivery. The repository is resolved from the
// payload before the signature check because every repository carries its
// own secret; deliveries for unknown repositories are acknowledged without
// processing so nothing about tracking status leaks.
func (h *WebhookHandler) Handle(c fiber.Ctx) error {
	body := c.Body()

	var payload pushPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "invalid payload",
		})
	}

	repo, err := h.repos.GetRepositoryByRemoteID(c.Context(), payload.Repository.ID)
	if errors.Is(err, port.ErrNotFound) {
		// same shape as a processed ack so the response does not reveal
		// which repositories are tracked
		return c.JSON(fiber.Map{"success": true, "message": "ok"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "repository lookup failed",
		})
	}

	if !verifySignature(repo.WebhookSecret, body, c.Get("X-Hub-Signature-256")) {
		slog.Warn("webhook signature mismatch", "repository", repo.FullName())
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   "invalid signature",
		})
	}

	switch event := c.Get("X-GitHub-Event"); event {
	case "ping":
		return c.JSON(fiber.Map{"success": true, "message": "pong"})
	case "push":
		// fall through to push processing
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "unsupported event: " + event,
		})
	}

	result, err := h.pushes.ProcessPush(c.Context(), repo, payload.Commits)
	if err != nil {
		slog.Error("push processing failed", "repository", repo.FullName(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "push processing failed",
		})
	}

	h.recordDelivery(repo, result, c.IP(), c.Get("User-Agent"))

	resp := fiber.Map{
		"success":             true,
		"message":             "push processed",
		"suggestions_created": result.SuggestionsCreated,
	}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	return c.JSON(resp)
}

// recordDelivery writes an audit record for a processed push. Values are
// captured before the goroutine starts (Fiber reuses context objects).
func (h *WebhookHandler) recordDelivery(repo *domain.Repository, result *service.PushResult, ip, userAgent string) {
	if h.audit == nil {
		return
	}
	details, _ := json.Marshal(map[string]interface{}{
		"suggestions_created": result.SuggestionsCreated,
		"errors":              len(result.Errors),
	})
	resource := repo.FullName()
	go func() {
		if err := h.audit.WriteAudit(domain.AuditActionWebhookDelivery, resource, string(details), ip, userAgent); err != nil {
			slog.Error("failed to write delivery audit", "repository", resource, "error", err)
		}
	}()
}

// verifySignature checks the X-Hub-Signature-256 header against an
// HMAC-SHA256 of the raw body. Comparison is constant-time.
func verifySignature(secret string, body []byte, header string) bool {
	if secret == "" || header == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(header))
}
