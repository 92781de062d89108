package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/manifest"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
)

// ErrSuggestionConflict is returned when the remote manifest changed
// between suggestion creation and apply. The caller must re-scan and
// regenerate; the write is never retried with a fresher hash.
var ErrSuggestionConflict = errors.New("manifest changed since this suggestion was generated; re-scan and regenerate")

// SuggestionService lists, applies and dismisses commit suggestions.
type SuggestionService struct {
	store   port.Store
	gateway port.RemoteGateway
}

// NewSuggestionService creates a suggestion service.
func NewSuggestionService(store port.Store, gateway port.RemoteGateway) *SuggestionService {
	return &SuggestionService{store: store, gateway: gateway}
}

// ListByRepository returns suggestions across a repository.
func (s *SuggestionService) ListByRepository(ctx context.Context, repositoryID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	return s.store.ListSuggestionsByRepository(ctx, repositoryID, unappliedOnly)
}

// ListByService returns suggestions for one tracked service.
func (s *SuggestionService) ListByService(ctx context.Context, serviceID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	return s.store.ListSuggestionsByService(ctx, serviceID, unappliedOnly)
}

// Apply writes an accepted suggestion's proposed manifest back to the
// remote repository. The write is guarded by a content hash read just
// before writing; a Conflict means an intervening edit happened and is
// surfaced as ErrSuggestionConflict rather than overwritten.
func (s *SuggestionService) Apply(ctx context.Context, suggestionID string) (*domain.TrackedService, error) {
	sug, err := s.store.GetSuggestionByID(ctx, suggestionID)
	if err != nil {
		return nil, fmt.Errorf("load suggestion: %w", err)
	}
	if sug.Applied {
		return nil, port.ErrAlreadyApplied
	}

	svc, err := s.store.GetServiceByID(ctx, sug.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("load service: %w", err)
	}
	repo, err := s.store.GetRepositoryByID(ctx, svc.RepositoryID)
	if err != nil {
		return nil, fmt.Errorf("load repository: %w", err)
	}

	// the hash captured at suggestion time may be stale by now; take a
	// fresh one right before writing
	fc, err := s.gateway.ReadFile(ctx, repo, svc.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	content, err := manifest.Encode(sug.Proposed)
	if err != nil {
		return nil, err
	}
	message := fmt.Sprintf("chore: update %s status via ContextFlow (%s)", sug.Proposed.ServiceName, shortHash(sug.CommitHash))

	if _, err := s.gateway.WriteFile(ctx, repo, svc.ManifestPath, content, message, fc.Hash); err != nil {
		if errors.Is(err, port.ErrConflict) {
			return nil, ErrSuggestionConflict
		}
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	if err := s.store.MarkSuggestionApplied(ctx, sug.ID); err != nil {
		return nil, fmt.Errorf("mark applied: %w", err)
	}
	if err := s.store.UpdateServiceManifest(ctx, svc.ID, sug.Proposed); err != nil {
		return nil, fmt.Errorf("refresh service: %w", err)
	}

	svc.ApplyManifest(sug.Proposed)
	slog.Info("suggestion applied",
		"service", svc.ServiceName,
		"commit", shortHash(sug.CommitHash),
		"status", sug.Proposed.Status,
	)
	return svc, nil
}

// Dismiss discards a suggestion without applying it.
func (s *SuggestionService) Dismiss(ctx context.Context, suggestionID string) error {
	if err := s.store.DeleteSuggestion(ctx, suggestionID); err != nil {
		return fmt.Errorf("dismiss suggestion: %w", err)
	}
	return nil
}
