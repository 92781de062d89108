package handler

import (
	"context"
	"strconv"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/gofiber/fiber/v3"
)

// auditSource reads persisted audit records.
type auditSource interface {
	ListAuditLogs(ctx context.Context, limit int, action, resource string) ([]domain.AuditLog, error)
}

// AuditHandler handles audit log endpoints.
type AuditHandler struct {
	source auditSource
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(source auditSource) *AuditHandler {
	return &AuditHandler{source: source}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	audit := router.Group("/audit")
	audit.Get("/logs", h.ListLogs)
}

// ListLogs returns audit logs, newest first. Filter with action (e.g.
// webhook_delivery) and resource (e.g. a repository full name).
func (h *AuditHandler) ListLogs(c fiber.Ctx) error {
	limitStr := c.Query("limit", "100")
	limit, _ := strconv.Atoi(limitStr)
	action := c.Query("action", "")
	resource := c.Query("resource", "")

	logs, err := h.source.ListAuditLogs(c.Context(), limit, action, resource)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"logs":  logs,
		"count": len(logs),
	})
}
