package port

import (
	"context"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// Store is the relational datastore contract the pipeline needs: create,
// read and update for repositories, tracked services and suggestions with
// the query patterns the services use. Implemented by store.PostgresStore.
type Store interface {
	// Repositories
	CreateRepository(ctx context.Context, r *domain.Repository) (*domain.Repository, error)
	GetRepositoryByID(ctx context.Context, id string) (*domain.Repository, error)
	GetRepositoryByRemoteID(ctx context.Context, remoteID int64) (*domain.Repository, error)
	ListActiveRepositories(ctx context.Context) ([]domain.Repository, error)
	DeactivateRepository(ctx context.Context, id string) error

	// Tracked services
	CreateService(ctx context.Context, s *domain.TrackedService) (*domain.TrackedService, error)
	GetServiceByID(ctx context.Context, id string) (*domain.TrackedService, error)
	GetServiceByPath(ctx context.Context, repositoryID, manifestPath string) (*domain.TrackedService, error)
	ListServicesByRepository(ctx context.Context, repositoryID string) ([]domain.TrackedService, error)
	UpdateServiceManifest(ctx context.Context, id string, m domain.ServiceManifest) error
	UpdateServiceHealth(ctx context.Context, id, healthStatus string, lastCommitDate *time.Time) error

	// Suggestions
	CreateSuggestion(ctx context.Context, s *domain.CommitSuggestion) (*domain.CommitSuggestion, error)
	GetSuggestionByID(ctx context.Context, id string) (*domain.CommitSuggestion, error)
	UnappliedSuggestionExists(ctx context.Context, serviceID, commitHash string) (bool, error)
	ListSuggestionsByService(ctx context.Context, serviceID string, unappliedOnly bool) ([]domain.CommitSuggestion, error)
	ListSuggestionsByRepository(ctx context.Context, repositoryID string, unappliedOnly bool) ([]domain.CommitSuggestion, error)
	MarkSuggestionApplied(ctx context.Context, id string) error
	DeleteSuggestion(ctx context.Context, id string) error
}
