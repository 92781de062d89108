package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
	"github.com/google/uuid"
)

// RepoService manages the repository lifecycle: connecting (webhook setup
// included) and disconnecting.
type RepoService struct {
	store      port.Store
	gateway    port.RemoteGateway
	webhookURL string
}

// NewRepoService creates a repository service. webhookURL is the public
// callback address registered with the remote host.
func NewRepoService(store port.Store, gateway port.RemoteGateway, webhookURL string) *RepoService {
	return &RepoService{store: store, gateway: gateway, webhookURL: webhookURL}
}

// Connect registers a repository for tracking: it resolves the remote id
// and default branch, generates a fresh webhook secret, installs the push
// webhook and persists the record.
func (s *RepoService) Connect(ctx context.Context, owner, name, accessToken string) (*domain.Repository, error) {
	repo := &domain.Repository{
		Owner:       owner,
		Name:        name,
		AccessToken: accessToken,
		Active:      true,
	}

	info, err := s.gateway.GetRepoInfo(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("resolve repository: %w", err)
	}
	repo.RemoteID = info.RemoteID
	repo.DefaultBranch = info.DefaultBranch
	repo.WebhookSecret = uuid.NewString()

	hookID, err := s.gateway.CreateWebhook(ctx, repo, s.webhookURL, repo.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("install webhook: %w", err)
	}
	repo.WebhookID = hookID

	created, err := s.store.CreateRepository(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("persist repository: %w", err)
	}

	slog.Info("repository connected", "repository", created.FullName(), "remote_id", created.RemoteID)
	return created, nil
}

// Disconnect removes the webhook best-effort and deactivates the record.
// Tracked services and suggestion history are kept.
func (s *RepoService) Disconnect(ctx context.Context, repositoryID string) error {
	repo, err := s.store.GetRepositoryByID(ctx, repositoryID)
	if err != nil {
		return fmt.Errorf("load repository: %w", err)
	}

	if repo.WebhookID != 0 {
		if err := s.gateway.DeleteWebhook(ctx, repo, repo.WebhookID); err != nil {
			slog.Warn("webhook removal failed", "repository", repo.FullName(), "error", err)
		}
	}
	if err := s.store.DeactivateRepository(ctx, repo.ID); err != nil {
		return fmt.Errorf("deactivate: %w", err)
	}

	slog.Info("repository disconnected", "repository", repo.FullName())
	return nil
}

// List returns all active repositories.
func (s *RepoService) List(ctx context.Context) ([]domain.Repository, error) {
	return s.store.ListActiveRepositories(ctx)
}

// Services returns the tracked services of a repository.
func (s *RepoService) Services(ctx context.Context, repositoryID string) ([]domain.TrackedService, error) {
	return s.store.ListServicesByRepository(ctx, repositoryID)
}
