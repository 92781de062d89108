package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/service"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

// RepoHandler handles the repository lifecycle and scan triggers.
type RepoHandler struct {
	repos   *service.RepoService
	scanner *service.ScannerService
	tracker *JobTracker
}

// NewRepoHandler creates a new repo handler.
func NewRepoHandler(repos *service.RepoService, scanner *service.ScannerService, tracker *JobTracker) *RepoHandler {
	return &RepoHandler{repos: repos, scanner: scanner, tracker: tracker}
}

// Register sets up repository routes.
func (h *RepoHandler) Register(api fiber.Router) {
	repos := api.Group("/repos")
	repos.Get("/", h.List)
	repos.Post("/", h.Connect)
	repos.Delete("/:id", h.Disconnect)
	repos.Get("/:id/services", h.Services)
	repos.Post("/:id/scan", h.Scan)
}

// List returns all connected repositories.
func (h *RepoHandler) List(c fiber.Ctx) error {
	repos, err := h.repos.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"repos": repos, "count": len(repos)})
}

// Connect registers a repository and installs its push webhook.
func (h *RepoHandler) Connect(c fiber.Ctx) error {
	var body struct {
		Owner       string `json:"owner"`
		Name        string `json:"name"`
		AccessToken string `json:"access_token"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	body.Owner = strings.TrimSpace(body.Owner)
	body.Name = strings.TrimSpace(body.Name)
	if body.Owner == "" || body.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "owner and name are required"})
	}

	repo, err := h.repos.Connect(c.Context(), body.Owner, body.Name, body.AccessToken)
	if err != nil {
		if errors.Is(err, port.ErrPermissionDenied) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "access token rejected by the remote host"})
		}
		if errors.Is(err, port.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "repository not found on the remote host"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(repo)
}

// Disconnect removes the webhook and deactivates the repository.
func (h *RepoHandler) Disconnect(c fiber.Ctx) error {
	if err := h.repos.Disconnect(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, port.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "repository not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

// Services returns the tracked services of a repository.
func (h *RepoHandler) Services(c fiber.Ctx) error {
	services, err := h.repos.Services(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"services": services, "count": len(services)})
}

// Scan starts an asynchronous manifest scan and returns the job id.
func (h *RepoHandler) Scan(c fiber.Ctx) error {
	repositoryID := c.Params("id")
	jobID := uuid.NewString()
	h.tracker.CreateJob(jobID, repositoryID)

	go func() {
		result, err := h.scanner.Scan(context.Background(), repositoryID)
		if err != nil {
			slog.Error("scan failed", "repository_id", repositoryID, "job_id", jobID, "error", err)
			h.tracker.Fail(jobID, err)
			return
		}
		h.tracker.Complete(jobID, result)
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "scan started",
		"job_id":  jobID,
	})
}
