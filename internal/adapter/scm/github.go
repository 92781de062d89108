// Package scm implements the remote repository gateway against the GitHub
// REST API.
package scm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
)

const defaultBaseURL = "https://api.github.com"

// HTTPClient is the subset of http.Client the gateway needs; injected so
// tests can stub transport behavior.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// GitHubGateway implements port.RemoteGateway. It holds no per-repository
// state; every call authenticates with the access token stored on the
// repository it is given.
type GitHubGateway struct {
	baseURL    string
	httpClient HTTPClient
}

// NewGitHubGateway creates a gateway. An empty baseURL selects the public
// GitHub API; a nil client gets a default with a request timeout.
func NewGitHubGateway(baseURL string, client HTTPClient) *GitHubGateway {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &GitHubGateway{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// --- API payload shapes ---

type contentsResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	SHA      string `json:"sha"`
}

type writeResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		SHA  string `json:"sha"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

type commitListEntry struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

type repoInfoResponse struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	DefaultBranch string `json:"default_branch"`
}

type hookResponse struct {
	ID int64 `json:"id"`
}

// ReadFile fetches a file through the contents API and returns its blob SHA
// as the content hash.
func (g *GitHubGateway) ReadFile(ctx context.Context, repo *domain.Repository, filePath string) (*port.FileContent, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.baseURL, repo.Owner, repo.Name, escapePath(filePath))

	var res contentsResponse
	if err := g.do(ctx, repo, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("read %s: %w", filePath, err)
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(res.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("read %s: decode content: %w", filePath, err)
	}
	return &port.FileContent{Path: filePath, Content: content, Hash: res.SHA}, nil
}

// WriteFile commits new content through the contents API. GitHub answers
// 409 when the provided SHA no longer matches the file, which maps to the
// ErrConflict guard; the remote file is left untouched in that case.
func (g *GitHubGateway) WriteFile(ctx context.Context, repo *domain.Repository, filePath string, content []byte, message, expectedHash string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s", g.baseURL, repo.Owner, repo.Name, escapePath(filePath))

	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
	}
	if expectedHash != "" {
		body["sha"] = expectedHash
	}

	var res writeResponse
	if err := g.do(ctx, repo, http.MethodPut, endpoint, body, &res); err != nil {
		return "", fmt.Errorf("write %s: %w", filePath, err)
	}
	return res.Commit.SHA, nil
}

// SearchFilesByName walks the full recursive tree of the default branch in
// a single call, so every manifest is discovered in one pass.
func (g *GitHubGateway) SearchFilesByName(ctx context.Context, repo *domain.Repository, filename string) ([]port.TreeEntry, error) {
	branch := repo.DefaultBranch
	if branch == "" {
		branch = "main"
	}
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1", g.baseURL, repo.Owner, repo.Name, url.PathEscape(branch))

	var res treeResponse
	if err := g.do(ctx, repo, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("search %s: %w", filename, err)
	}

	var entries []port.TreeEntry
	for _, node := range res.Tree {
		if node.Type != "blob" {
			continue
		}
		if path.Base(node.Path) == filename {
			entries = append(entries, port.TreeEntry{Path: node.Path, BlobHash: node.SHA})
		}
	}
	return entries, nil
}

// LatestCommitForPath returns the newest commit touching path, or nil when
// the path has no history.
func (g *GitHubGateway) LatestCommitForPath(ctx context.Context, repo *domain.Repository, filePath string) (*port.CommitRef, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits?path=%s&per_page=1", g.baseURL, repo.Owner, repo.Name, url.QueryEscape(filePath))

	var res []commitListEntry
	if err := g.do(ctx, repo, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("latest commit for %s: %w", filePath, err)
	}
	if len(res) == 0 {
		return nil, nil
	}
	return &port.CommitRef{Hash: res[0].SHA, AuthorDate: res[0].Commit.Author.Date}, nil
}

// GetRepoInfo resolves the remote id and default branch.
func (g *GitHubGateway) GetRepoInfo(ctx context.Context, repo *domain.Repository) (*port.RepoInfo, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s", g.baseURL, repo.Owner, repo.Name)

	var res repoInfoResponse
	if err := g.do(ctx, repo, http.MethodGet, endpoint, nil, &res); err != nil {
		return nil, fmt.Errorf("repo info %s/%s: %w", repo.Owner, repo.Name, err)
	}
	return &port.RepoInfo{RemoteID: res.ID, FullName: res.FullName, DefaultBranch: res.DefaultBranch}, nil
}

// CreateWebhook registers a push webhook delivering JSON payloads signed
// with secret.
func (g *GitHubGateway) CreateWebhook(ctx context.Context, repo *domain.Repository, hookURL, secret string) (int64, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/hooks", g.baseURL, repo.Owner, repo.Name)

	body := map[string]any{
		"name":   "web",
		"active": true,
		"events": []string{"push"},
		"config": map[string]string{
			"url":          hookURL,
			"content_type": "json",
			"secret":       secret,
		},
	}

	var res hookResponse
	if err := g.do(ctx, repo, http.MethodPost, endpoint, body, &res); err != nil {
		return 0, fmt.Errorf("create webhook: %w", err)
	}
	return res.ID, nil
}

// DeleteWebhook removes a webhook by id.
func (g *GitHubGateway) DeleteWebhook(ctx context.Context, repo *domain.Repository, webhookID int64) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/hooks/%d", g.baseURL, repo.Owner, repo.Name, webhookID)
	if err := g.do(ctx, repo, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("delete webhook %d: %w", webhookID, err)
	}
	return nil
}

// do performs one authenticated API request and maps the response status
// into the port error taxonomy.
func (g *GitHubGateway) do(ctx context.Context, repo *domain.Repository, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+repo.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &port.TransientError{Op: method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	if err := mapStatus(resp, method+" "+endpoint); err != nil {
		return err
	}
	if result == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// mapStatus translates HTTP status codes into the gateway error taxonomy.
// Rate-limited 403s carry X-RateLimit-Remaining: 0 and are transient, not
// permission failures.
func mapStatus(resp *http.Response, op string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return port.ErrNotFound
	case resp.StatusCode == http.StatusConflict:
		return port.ErrConflict
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// the contents API reports a stale SHA as 422 in some cases
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if strings.Contains(strings.ToLower(string(data)), "sha") {
			return port.ErrConflict
		}
		return fmt.Errorf("%s: status 422: %s", op, strings.TrimSpace(string(data)))
	case resp.StatusCode == http.StatusUnauthorized:
		return port.ErrPermissionDenied
	case resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return &port.TransientError{Op: op, Status: resp.StatusCode}
		}
		return port.ErrPermissionDenied
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &port.TransientError{Op: op, Status: resp.StatusCode}
	default:
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(data)))
	}
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
