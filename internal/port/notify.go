package port

import (
	"context"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// Notifier is invoked when a new suggestion is created. Delivery is
// best-effort; callers log failures and move on.
type Notifier interface {
	SuggestionCreated(ctx context.Context, svc *domain.TrackedService, sug *domain.CommitSuggestion) error
}
