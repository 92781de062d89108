package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
)

// fakeStore is an in-memory port.Store for tests.
type fakeStore struct {
	mu           sync.Mutex
	repositories map[string]*domain.Repository
	services     map[string]*domain.TrackedService
	suggestions  map[string]*domain.CommitSuggestion
	nextID       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		repositories: map[string]*domain.Repository{},
		services:     map[string]*domain.TrackedService{},
		suggestions:  map[string]*domain.CommitSuggestion{},
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) addRepository(r domain.Repository) *domain.Repository {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = f.id("repo")
	}
	f.repositories[r.ID] = &r
	return &r
}

func (f *fakeStore) addService(s domain.TrackedService) *domain.TrackedService {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == "" {
		s.ID = f.id("svc")
	}
	f.services[s.ID] = &s
	return &s
}

func (f *fakeStore) CreateRepository(ctx context.Context, r *domain.Repository) (*domain.Repository, error) {
	return f.addRepository(*r), nil
}

func (f *fakeStore) GetRepositoryByID(ctx context.Context, id string) (*domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.repositories[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, port.ErrNotFound
}

func (f *fakeStore) GetRepositoryByRemoteID(ctx context.Context, remoteID int64) (*domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.repositories {
		if r.RemoteID == remoteID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, port.ErrNotFound
}

func (f *fakeStore) ListActiveRepositories(ctx context.Context) ([]domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Repository
	for _, r := range f.repositories {
		if r.Active {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) DeactivateRepository(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.repositories[id]
	if !ok {
		return port.ErrNotFound
	}
	r.Active = false
	return nil
}

func (f *fakeStore) CreateService(ctx context.Context, s *domain.TrackedService) (*domain.TrackedService, error) {
	f.mu.Lock()
	for _, existing := range f.services {
		if existing.RepositoryID == s.RepositoryID && existing.ManifestPath == s.ManifestPath {
			f.mu.Unlock()
			return nil, fmt.Errorf("duplicate service for %s", s.ManifestPath)
		}
	}
	f.mu.Unlock()
	return f.addService(*s), nil
}

func (f *fakeStore) GetServiceByID(ctx context.Context, id string) (*domain.TrackedService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.services[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, port.ErrNotFound
}

func (f *fakeStore) GetServiceByPath(ctx context.Context, repositoryID, manifestPath string) (*domain.TrackedService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.services {
		if s.RepositoryID == repositoryID && s.ManifestPath == manifestPath {
			cp := *s
			return &cp, nil
		}
	}
	return nil, port.ErrNotFound
}

func (f *fakeStore) ListServicesByRepository(ctx context.Context, repositoryID string) ([]domain.TrackedService, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.TrackedService
	for _, s := range f.services {
		if s.RepositoryID == repositoryID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateServiceManifest(ctx context.Context, id string, m domain.ServiceManifest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return port.ErrNotFound
	}
	s.ApplyManifest(m)
	return nil
}

func (f *fakeStore) UpdateServiceHealth(ctx context.Context, id, healthStatus string, lastCommitDate *time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return port.ErrNotFound
	}
	s.HealthStatus = healthStatus
	s.LastCommitDate = lastCommitDate
	return nil
}

func (f *fakeStore) CreateSuggestion(ctx context.Context, s *domain.CommitSuggestion) (*domain.CommitSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.suggestions {
		if existing.ServiceID == s.ServiceID && existing.CommitHash == s.CommitHash && !existing.Applied {
			return nil, nil // duplicate unapplied suggestion is a no-op
		}
	}
	cp := *s
	cp.ID = f.id("sug")
	cp.CreatedAt = time.Now()
	f.suggestions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) GetSuggestionByID(ctx context.Context, id string) (*domain.CommitSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.suggestions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, port.ErrNotFound
}

func (f *fakeStore) UnappliedSuggestionExists(ctx context.Context, serviceID, commitHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.suggestions {
		if s.ServiceID == serviceID && s.CommitHash == commitHash && !s.Applied {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListSuggestionsByService(ctx context.Context, serviceID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CommitSuggestion
	for _, s := range f.suggestions {
		if s.ServiceID == serviceID && (!unappliedOnly || !s.Applied) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) ListSuggestionsByRepository(ctx context.Context, repositoryID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CommitSuggestion
	for _, s := range f.suggestions {
		svc, ok := f.services[s.ServiceID]
		if !ok || svc.RepositoryID != repositoryID {
			continue
		}
		if !unappliedOnly || !s.Applied {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSuggestionApplied(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.suggestions[id]
	if !ok {
		return port.ErrNotFound
	}
	s.Applied = true
	return nil
}

func (f *fakeStore) DeleteSuggestion(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.suggestions[id]; !ok {
		return port.ErrNotFound
	}
	delete(f.suggestions, id)
	return nil
}

func (f *fakeStore) allSuggestions() []domain.CommitSuggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CommitSuggestion
	for _, s := range f.suggestions {
		out = append(out, *s)
	}
	return out
}

// fakeGateway is an in-memory port.RemoteGateway. Files map manifest
// paths to content; the content hash is a per-path revision counter.
type fakeGateway struct {
	mu        sync.Mutex
	files     map[string][]byte
	revisions map[string]int
	commits   map[string]*port.CommitRef
	readErr   error
	writes    []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		files:     map[string][]byte{},
		revisions: map[string]int{},
		commits:   map[string]*port.CommitRef{},
	}
}

func (f *fakeGateway) putFile(path string, content []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[path] = content
	f.revisions[path]++
}

func (f *fakeGateway) hash(path string) string {
	return fmt.Sprintf("%s@%d", path, f.revisions[path])
}

func (f *fakeGateway) ReadFile(ctx context.Context, repo *domain.Repository, path string) (*port.FileContent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	content, ok := f.files[path]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &port.FileContent{Path: path, Content: content, Hash: f.hash(path)}, nil
}

func (f *fakeGateway) WriteFile(ctx context.Context, repo *domain.Repository, path string, content []byte, message, expectedHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.files[path]; !ok {
		if expectedHash != "" {
			return "", port.ErrNotFound
		}
	} else if expectedHash != f.hash(path) {
		return "", port.ErrConflict
	}
	f.files[path] = content
	f.revisions[path]++
	f.writes = append(f.writes, path)
	return fmt.Sprintf("commit-%d", len(f.writes)), nil
}

func (f *fakeGateway) SearchFilesByName(ctx context.Context, repo *domain.Repository, filename string) ([]port.TreeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var entries []port.TreeEntry
	for path := range f.files {
		if pathBase(path) == filename {
			entries = append(entries, port.TreeEntry{Path: path, BlobHash: f.hash(path)})
		}
	}
	return entries, nil
}

func (f *fakeGateway) LatestCommitForPath(ctx context.Context, repo *domain.Repository, path string) (*port.CommitRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits[path], nil
}

func (f *fakeGateway) GetRepoInfo(ctx context.Context, repo *domain.Repository) (*port.RepoInfo, error) {
	return &port.RepoInfo{RemoteID: 4242, FullName: repo.FullName(), DefaultBranch: "main"}, nil
}

func (f *fakeGateway) CreateWebhook(ctx context.Context, repo *domain.Repository, url, secret string) (int64, error) {
	return 99, nil
}

func (f *fakeGateway) DeleteWebhook(ctx context.Context, repo *domain.Repository, webhookID int64) error {
	return nil
}

func pathBase(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// fakeNotifier records delivered events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) SuggestionCreated(ctx context.Context, svc *domain.TrackedService, sug *domain.CommitSuggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, svc.ManifestPath+":"+sug.CommitHash)
	return nil
}
