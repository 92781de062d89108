package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
)

// Staleness thresholds in days.
const (
	staleAfterDays    = 7
	inactiveAfterDays = 30
)

// HealthService classifies every tracked service by last-commit recency.
type HealthService struct {
	store   port.Store
	gateway port.RemoteGateway
	workers int

	// Now is injectable for tests.
	Now func() time.Time
}

// NewHealthService creates a health classifier running at most workers
// concurrent gateway calls, so batch runs respect the remote host's rate
// limits.
func NewHealthService(store port.Store, gateway port.RemoteGateway, workers int) *HealthService {
	if workers <= 0 {
		workers = 4
	}
	return &HealthService{store: store, gateway: gateway, workers: workers, Now: time.Now}
}

// HealthSummary is the structured result of one classifier run.
type HealthSummary struct {
	Checked  int      `json:"checked"`
	Healthy  int      `json:"healthy"`
	Stale    int      `json:"stale"`
	Inactive int      `json:"inactive"`
	Unknown  int      `json:"unknown"`
	Errors   []string `json:"errors,omitempty"`
}

// Run classifies every tracked service of every active repository.
// Per-service failures are collected into the summary's error list and
// never halt the batch.
func (s *HealthService) Run(ctx context.Context) (*HealthSummary, error) {
	repos, err := s.store.ListActiveRepositories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}

	summary := &HealthSummary{}
	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, s.workers)
	)

	for i := range repos {
		repo := &repos[i]
		services, err := s.store.ListServicesByRepository(ctx, repo.ID)
		if err != nil {
			mu.Lock()
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: list services: %v", repo.FullName(), err))
			mu.Unlock()
			continue
		}
		for _, svc := range services {
			wg.Add(1)
			sem <- struct{}{}
			go func(svc domain.TrackedService) {
				defer wg.Done()
				defer func() { <-sem }()

				status, err := s.classify(ctx, repo, svc)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %v", svc.ManifestPath, err))
					return
				}
				summary.Checked++
				switch status {
				case domain.HealthHealthy:
					summary.Healthy++
				case domain.HealthStale:
					summary.Stale++
				case domain.HealthInactive:
					summary.Inactive++
				default:
					summary.Unknown++
				}
			}(svc)
		}
	}
	wg.Wait()

	slog.Info("health check complete",
		"checked", summary.Checked,
		"healthy", summary.Healthy,
		"stale", summary.Stale,
		"inactive", summary.Inactive,
		"unknown", summary.Unknown,
		"errors", len(summary.Errors),
	)
	return summary, nil
}

// classify fetches the latest commit for one manifest path and persists
// the resulting bucket unconditionally, which keeps the job idempotent.
func (s *HealthService) classify(ctx context.Context, repo *domain.Repository, svc domain.TrackedService) (string, error) {
	ref, err := s.gateway.LatestCommitForPath(ctx, repo, svc.ManifestPath)
	if err != nil {
		return "", fmt.Errorf("latest commit: %w", err)
	}

	status := domain.HealthUnknown
	var commitDate *time.Time
	if ref != nil {
		status = Classify(s.Now(), ref.AuthorDate)
		commitDate = &ref.AuthorDate
	}

	if err := s.store.UpdateServiceHealth(ctx, svc.ID, status, commitDate); err != nil {
		return "", fmt.Errorf("persist health: %w", err)
	}
	return status, nil
}

// Classify maps days-since-commit onto a health bucket.
func Classify(now, authorDate time.Time) string {
	days := int(now.Sub(authorDate).Hours() / 24)
	switch {
	case days < staleAfterDays:
		return domain.HealthHealthy
	case days < inactiveAfterDays:
		return domain.HealthStale
	default:
		return domain.HealthInactive
	}
}
