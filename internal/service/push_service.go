// Package service contains the orchestration layer between the HTTP
// handlers and the gateway/store adapters.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/manifest"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/tags"
)

// PushService turns push deliveries into commit suggestions.
type PushService struct {
	store    port.Store
	gateway  port.RemoteGateway
	notifier port.Notifier

	// Now is injectable for tests.
	Now func() time.Time
}

// NewPushService creates a push processor.
func NewPushService(store port.Store, gateway port.RemoteGateway, notifier port.Notifier) *PushService {
	return &PushService{store: store, gateway: gateway, notifier: notifier, Now: time.Now}
}

// PushResult summarizes one processed push delivery.
type PushResult struct {
	SuggestionsCreated int      `json:"suggestions_created"`
	Errors             []string `json:"errors,omitempty"`
}

// ProcessPush runs the interpretation pipeline for every commit of a push,
// in payload order so later commits win over earlier ones for the same
// manifest. Per-item failures are collected and never abort the remaining
// commits or manifests.
func (s *PushService) ProcessPush(ctx context.Context, repo *domain.Repository, commits []domain.PushCommit) (*PushResult, error) {
	services, err := s.store.ListServicesByRepository(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}

	result := &PushResult{}
	for _, commit := range commits {
		pc := tags.Interpret(commit.ID, commit.Message, commit.Author)
		if !pc.HasTags() {
			continue
		}
		for _, warning := range pc.Warnings {
			slog.Warn("commit tag warning", "commit", shortHash(commit.ID), "warning", warning)
		}

		changed := changedPaths(commit)
		for _, svc := range affectedServices(services, changed) {
			if err := s.suggestForService(ctx, repo, svc, pc); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s @ %s: %v", svc.ManifestPath, shortHash(commit.ID), err))
				continue
			}
			result.SuggestionsCreated++
		}
	}
	return result, nil
}

// suggestForService reads the manifest as it exists in the repository
// right now, merges the parsed commit into it and persists the suggestion.
// Creation is skipped when an unapplied suggestion for the same pair
// already exists.
func (s *PushService) suggestForService(ctx context.Context, repo *domain.Repository, svc domain.TrackedService, pc domain.ParsedCommit) error {
	exists, err := s.store.UnappliedSuggestionExists(ctx, svc.ID, pc.Hash)
	if err != nil {
		return fmt.Errorf("check existing suggestion: %w", err)
	}
	if exists {
		slog.Debug("suggestion already pending", "service", svc.ServiceName, "commit", shortHash(pc.Hash))
		return nil
	}

	fc, err := s.gateway.ReadFile(ctx, repo, svc.ManifestPath)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	current, err := manifest.Decode(fc.Content)
	if err != nil {
		return err
	}

	proposed := manifest.Merge(current, pc, s.Now())
	created, err := s.store.CreateSuggestion(ctx, &domain.CommitSuggestion{
		ServiceID:     svc.ID,
		CommitHash:    pc.Hash,
		CommitMessage: pc.Message,
		Status:        pc.Status,
		NextSteps:     pc.NextSteps,
		Proposed:      proposed,
	})
	if err != nil {
		return fmt.Errorf("persist suggestion: %w", err)
	}
	if created == nil {
		// another writer inserted the same suggestion first
		return nil
	}

	slog.Info("suggestion created",
		"service", svc.ServiceName,
		"commit", shortHash(pc.Hash),
		"status", created.Status,
	)
	if s.notifier != nil {
		if err := s.notifier.SuggestionCreated(ctx, &svc, created); err != nil {
			slog.Error("suggestion notification failed", "service", svc.ServiceName, "error", err)
		}
	}
	return nil
}

// changedPaths flattens the added, modified and removed file lists of a
// commit.
func changedPaths(c domain.PushCommit) []string {
	paths := make([]string, 0, len(c.Added)+len(c.Modified)+len(c.Removed))
	paths = append(paths, c.Added...)
	paths = append(paths, c.Modified...)
	paths = append(paths, c.Removed...)
	return paths
}

// affectedServices selects the tracked services a commit touches. Services
// whose manifest file itself changed are preferred; only when none matched
// directly does the directory-prefix fallback apply. A manifest at the
// repository root matches every changed path in the fallback.
func affectedServices(services []domain.TrackedService, changed []string) []domain.TrackedService {
	var direct []domain.TrackedService
	for _, svc := range services {
		for _, p := range changed {
			if p == svc.ManifestPath {
				direct = append(direct, svc)
				break
			}
		}
	}
	if len(direct) > 0 {
		return direct
	}

	var byDir []domain.TrackedService
	for _, svc := range services {
		dir := path.Dir(svc.ManifestPath)
		for _, p := range changed {
			if dir == "." || strings.HasPrefix(p, dir+"/") {
				byDir = append(byDir, svc)
				break
			}
		}
	}
	return byDir
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
