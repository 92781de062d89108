package handler

import (
	"errors"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/service"
	"github.com/gofiber/fiber/v3"
)

// SuggestionHandler exposes the suggestion review workflow.
type SuggestionHandler struct {
	suggestions *service.SuggestionService
}

// NewSuggestionHandler creates a new suggestion handler.
func NewSuggestionHandler(suggestions *service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestions: suggestions}
}

// Register sets up suggestion routes.
func (h *SuggestionHandler) Register(api fiber.Router) {
	api.Get("/repos/:id/suggestions", h.ListByRepository)
	api.Get("/services/:id/suggestions", h.ListByService)
	api.Post("/suggestions/:id/apply", h.Apply)
	api.Delete("/suggestions/:id", h.Dismiss)
}

// ListByRepository returns suggestions across a repository. Pass
// unapplied=true to hide already-applied ones.
func (h *SuggestionHandler) ListByRepository(c fiber.Ctx) error {
	unappliedOnly := c.Query("unapplied") == "true"
	sugs, err := h.suggestions.ListByRepository(c.Context(), c.Params("id"), unappliedOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"suggestions": sugs, "count": len(sugs)})
}

// ListByService returns suggestions for one tracked service.
func (h *SuggestionHandler) ListByService(c fiber.Ctx) error {
	unappliedOnly := c.Query("unapplied") == "true"
	sugs, err := h.suggestions.ListByService(c.Context(), c.Params("id"), unappliedOnly)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"suggestions": sugs, "count": len(sugs)})
}

// Apply accepts a suggestion, writing the proposed manifest back to the
// remote repository.
func (h *SuggestionHandler) Apply(c fiber.Ctx) error {
	svc, err := h.suggestions.Apply(c.Context(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, port.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "suggestion not found"})
		case errors.Is(err, port.ErrAlreadyApplied):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "suggestion already applied"})
		case errors.Is(err, service.ErrSuggestionConflict):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "service": svc})
}

// Dismiss discards a suggestion.
func (h *SuggestionHandler) Dismiss(c fiber.Ctx) error {
	if err := h.suggestions.Dismiss(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "suggestion not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}
