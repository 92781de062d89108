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

// ScannerService discovers manifest files in a repository and mirrors them
// into tracked services.
type ScannerService struct {
	store            port.Store
	gateway          port.RemoteGateway
	manifestFilename string
}

// NewScannerService creates a scanner looking for manifestFilename.
func NewScannerService(store port.Store, gateway port.RemoteGateway, manifestFilename string) *ScannerService {
	if manifestFilename == "" {
		manifestFilename = manifest.DefaultFilename
	}
	return &ScannerService{store: store, gateway: gateway, manifestFilename: manifestFilename}
}

// ScanResult summarizes one repository scan.
type ScanResult struct {
	ManifestsFound int      `json:"manifests_found"`
	Created        int      `json:"created"`
	Updated        int      `json:"updated"`
	Errors         []string `json:"errors,omitempty"`
}

// Scan walks the full repository tree for manifest files, validates each
// one and creates or refreshes its tracked service. The remote file is the
// source of truth: local state never overrides it. Files failing
// validation are reported as scan errors without aborting the scan, and
// rescanning an unchanged repository never creates duplicates.
func (s *ScannerService) Scan(ctx context.Context, repositoryID string) (*ScanResult, error) {
	repo, err := s.store.GetRepositoryByID(ctx, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("load repository: %w", err)
	}

	entries, err := s.gateway.SearchFilesByName(ctx, repo, s.manifestFilename)
	if err != nil {
		return nil, fmt.Errorf("search manifests: %w", err)
	}

	result := &ScanResult{ManifestsFound: len(entries)}
	for _, entry := range entries {
		created, err := s.syncManifest(ctx, repo, entry.Path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", entry.Path, err))
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	slog.Info("scan complete",
		"repository", repo.FullName(),
		"found", result.ManifestsFound,
		"created", result.Created,
		"updated", result.Updated,
		"errors", len(result.Errors),
	)
	return result, nil
}

// syncManifest reads and validates one manifest, then creates the tracked
// service on first discovery or refreshes its denormalized fields. It
// reports whether a new service was created.
func (s *ScannerService) syncManifest(ctx context.Context, repo *domain.Repository, manifestPath string) (bool, error) {
	fc, err := s.gateway.ReadFile(ctx, repo, manifestPath)
	if err != nil {
		return false, fmt.Errorf("read: %w", err)
	}
	m, err := manifest.Decode(fc.Content)
	if err != nil {
		return false, err
	}

	existing, err := s.store.GetServiceByPath(ctx, repo.ID, manifestPath)
	if errors.Is(err, port.ErrNotFound) {
		svc := &domain.TrackedService{RepositoryID: repo.ID, ManifestPath: manifestPath}
		svc.ApplyManifest(m)
		if _, err := s.store.CreateService(ctx, svc); err != nil {
			return false, fmt.Errorf("create service: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup service: %w", err)
	}
	if err := s.store.UpdateServiceManifest(ctx, existing.ID, m); err != nil {
		return false, fmt.Errorf("refresh service: %w", err)
	}
	return false, nil
}
