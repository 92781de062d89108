package port

import (
	"context"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// FileContent is a file read from the remote host together with the opaque
// content hash used for optimistic-concurrency writes.
type FileContent struct {
	Path    string
	Content []byte
	Hash    string
}

// TreeEntry is one match from a full-tree filename search.
type TreeEntry struct {
	Path     string
	BlobHash string
}

// CommitRef points at the most recent commit touching a path.
type CommitRef struct {
	Hash       string
	AuthorDate time.Time
}

// RepoInfo is the remote host's description of a repository, resolved when
// a repository is first connected.
type RepoInfo struct {
	RemoteID      int64
	FullName      string
	DefaultBranch string
}

// RemoteGateway abstracts the remote repository host. Every call is
// stateless and re-authenticates with the credential stored on the
// Repository passed in.
//
// All operations may fail with a *TransientError (network trouble, remote
// rate limiting) that callers must treat differently from the permanent
// ErrNotFound / ErrPermissionDenied sentinels.
type RemoteGateway interface {
	// ReadFile returns the file content and its content hash, or ErrNotFound.
	ReadFile(ctx context.Context, repo *domain.Repository, path string) (*FileContent, error)

	// WriteFile commits new content for path. expectedHash is the content
	// hash of the version being replaced; when it no longer matches the
	// remote file the write fails with ErrConflict and the remote content
	// is left untouched. An empty expectedHash creates the file.
	WriteFile(ctx context.Context, repo *domain.Repository, path string, content []byte, message, expectedHash string) (string, error)

	// SearchFilesByName lists every file in the repository tree whose base
	// name equals filename, in one recursive pass.
	SearchFilesByName(ctx context.Context, repo *domain.Repository, filename string) ([]TreeEntry, error)

	// LatestCommitForPath returns the most recent commit touching path, or
	// (nil, nil) when the path has no commit history.
	LatestCommitForPath(ctx context.Context, repo *domain.Repository, path string) (*CommitRef, error)

	// GetRepoInfo resolves the remote identifier and default branch.
	GetRepoInfo(ctx context.Context, repo *domain.Repository) (*RepoInfo, error)

	// CreateWebhook registers a push webhook and returns its remote id.
	CreateWebhook(ctx context.Context, repo *domain.Repository, url, secret string) (int64, error)

	// DeleteWebhook removes a previously created webhook.
	DeleteWebhook(ctx context.Context, repo *domain.Repository, webhookID int64) error
}
