package handler

import (
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/service"
	"github.com/gofiber/fiber/v3"
)

// HealthHandler triggers the service health classifier on demand.
type HealthHandler struct {
	health *service.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(health *service.HealthService) *HealthHandler {
	return &HealthHandler{health: health}
}

// Register sets up health routes.
func (h *HealthHandler) Register(api fiber.Router) {
	api.Post("/health/run", h.Run)
}

// Run classifies every tracked service now and returns the summary.
func (h *HealthHandler) Run(c fiber.Ctx) error {
	summary, err := h.health.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}
