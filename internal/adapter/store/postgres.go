// Package store persists repositories, tracked services, suggestions and
// audit logs in Postgres.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/port"
)

// PostgresStore handles all relational database operations. It implements
// port.Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// --- Repositories ---

const repositoryColumns = `id, owner, name, remote_id, default_branch, webhook_id, webhook_secret, access_token, active, created_at, updated_at`

func scanRepository(row interface{ Scan(...any) error }) (*domain.Repository, error) {
	var r domain.Repository
	err := row.Scan(
		&r.ID, &r.Owner, &r.Name, &r.RemoteID, &r.DefaultBranch,
		&r.WebhookID, &r.WebhookSecret, &r.AccessToken, &r.Active,
		&r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan repository: %w", err)
	}
	return &r, nil
}

// CreateRepository inserts a new repository record.
func (s *PostgresStore) CreateRepository(ctx context.Context, r *domain.Repository) (*domain.Repository, error) {
	query := `INSERT INTO repositories (owner, name, remote_id, default_branch, webhook_id, webhook_secret, access_token, active)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING ` + repositoryColumns

	row := s.db.QueryRowContext(ctx, query,
		r.Owner, r.Name, r.RemoteID, r.DefaultBranch, r.WebhookID, r.WebhookSecret, r.AccessToken, r.Active,
	)
	created, err := scanRepository(row)
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	return created, nil
}

// GetRepositoryByID returns a repository by its local id.
func (s *PostgresStore) GetRepositoryByID(ctx context.Context, id string) (*domain.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE id = $1`
	return scanRepository(s.db.QueryRowContext(ctx, query, id))
}

// GetRepositoryByRemoteID returns a repository by the remote host's id.
// Webhook ingress uses this to match push deliveries to tracked repos.
func (s *PostgresStore) GetRepositoryByRemoteID(ctx context.Context, remoteID int64) (*domain.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE remote_id = $1`
	return scanRepository(s.db.QueryRowContext(ctx, query, remoteID))
}

// ListActiveRepositories returns all repositories that have not been
// disconnected.
func (s *PostgresStore) ListActiveRepositories(ctx context.Context) ([]domain.Repository, error) {
	query := `SELECT ` + repositoryColumns + ` FROM repositories WHERE active ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list repositories: %w", err)
	}
	defer rows.Close()

	var repos []domain.Repository
	for rows.Next() {
		r, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, *r)
	}
	return repos, rows.Err()
}

// DeactivateRepository marks a repository inactive. Records are never
// physically removed on disconnect.
func (s *PostgresStore) DeactivateRepository(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE repositories SET active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate repository: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// --- Tracked services ---

const serviceColumns = `id, repository_id, manifest_path, service_name, status, current_task, progress,
	last_update, next_steps, dependencies, priority, health_status, last_commit_date, created_at, updated_at`

func scanService(row interface{ Scan(...any) error }) (*domain.TrackedService, error) {
	var (
		svc          domain.TrackedService
		nextSteps    []byte
		dependencies []byte
		lastCommit   sql.NullTime
	)
	err := row.Scan(
		&svc.ID, &svc.RepositoryID, &svc.ManifestPath, &svc.ServiceName, &svc.Status,
		&svc.CurrentTask, &svc.Progress, &svc.LastUpdate, &nextSteps, &dependencies,
		&svc.Priority, &svc.HealthStatus, &lastCommit, &svc.CreatedAt, &svc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan service: %w", err)
	}
	if err := json.Unmarshal(nextSteps, &svc.NextSteps); err != nil {
		return nil, fmt.Errorf("scan service next_steps: %w", err)
	}
	if len(dependencies) > 0 {
		if err := json.Unmarshal(dependencies, &svc.Dependencies); err != nil {
			return nil, fmt.Errorf("scan service dependencies: %w", err)
		}
	}
	if lastCommit.Valid {
		svc.LastCommitDate = &lastCommit.Time
	}
	return &svc, nil
}

// CreateService inserts a tracked service discovered by a scan.
func (s *PostgresStore) CreateService(ctx context.Context, svc *domain.TrackedService) (*domain.TrackedService, error) {
	nextSteps, err := json.Marshal(emptyIfNil(svc.NextSteps))
	if err != nil {
		return nil, fmt.Errorf("encode next_steps: %w", err)
	}
	dependencies, err := json.Marshal(emptyIfNil(svc.Dependencies))
	if err != nil {
		return nil, fmt.Errorf("encode dependencies: %w", err)
	}

	query := `INSERT INTO tracked_services
	          (repository_id, manifest_path, service_name, status, current_task, progress, last_update, next_steps, dependencies, priority, health_status)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb, $10, $11)
	          RETURNING ` + serviceColumns

	row := s.db.QueryRowContext(ctx, query,
		svc.RepositoryID, svc.ManifestPath, svc.ServiceName, svc.Status, svc.CurrentTask,
		svc.Progress, svc.LastUpdate, nextSteps, dependencies, svc.Priority, domain.HealthUnknown,
	)
	created, err := scanService(row)
	if err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return created, nil
}

// GetServiceByID returns a tracked service by id.
func (s *PostgresStore) GetServiceByID(ctx context.Context, id string) (*domain.TrackedService, error) {
	query := `SELECT ` + serviceColumns + ` FROM tracked_services WHERE id = $1`
	return scanService(s.db.QueryRowContext(ctx, query, id))
}

// GetServiceByPath returns the tracked service mirroring a manifest path.
// The path is unique within a repository.
func (s *PostgresStore) GetServiceByPath(ctx context.Context, repositoryID, manifestPath string) (*domain.TrackedService, error) {
	query := `SELECT ` + serviceColumns + ` FROM tracked_services WHERE repository_id = $1 AND manifest_path = $2`
	return scanService(s.db.QueryRowContext(ctx, query, repositoryID, manifestPath))
}

// ListServicesByRepository returns all tracked services of one repository.
func (s *PostgresStore) ListServicesByRepository(ctx context.Context, repositoryID string) ([]domain.TrackedService, error) {
	query := `SELECT ` + serviceColumns + ` FROM tracked_services WHERE repository_id = $1 ORDER BY manifest_path`
	rows, err := s.db.QueryContext(ctx, query, repositoryID)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	var services []domain.TrackedService
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, *svc)
	}
	return services, rows.Err()
}

// UpdateServiceManifest refreshes the denormalized manifest fields from a
// snapshot, either after a rescan or after a suggestion is applied.
func (s *PostgresStore) UpdateServiceManifest(ctx context.Context, id string, m domain.ServiceManifest) error {
	nextSteps, err := json.Marshal(emptyIfNil(m.NextSteps))
	if err != nil {
		return fmt.Errorf("encode next_steps: %w", err)
	}
	dependencies, err := json.Marshal(emptyIfNil(m.Dependencies))
	if err != nil {
		return fmt.Errorf("encode dependencies: %w", err)
	}

	query := `UPDATE tracked_services
	          SET service_name = $1, status = $2, current_task = $3, progress = $4, last_update = $5,
	              next_steps = $6::jsonb, dependencies = $7::jsonb, priority = $8, updated_at = NOW()
	          WHERE id = $9`
	res, err := s.db.ExecContext(ctx, query,
		m.ServiceName, m.Status, m.CurrentTask, m.Progress, m.LastUpdate,
		nextSteps, dependencies, m.Priority, id,
	)
	if err != nil {
		return fmt.Errorf("update service manifest: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// UpdateServiceHealth persists a health classification unconditionally.
func (s *PostgresStore) UpdateServiceHealth(ctx context.Context, id, healthStatus string, lastCommitDate *time.Time) error {
	query := `UPDATE tracked_services SET health_status = $1, last_commit_date = $2, updated_at = NOW() WHERE id = $3`
	res, err := s.db.ExecContext(ctx, query, healthStatus, lastCommitDate, id)
	if err != nil {
		return fmt.Errorf("update service health: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// --- Suggestions ---

const suggestionColumns = `id, service_id, commit_hash, commit_message, status, next_steps, proposed, applied, created_at`

func scanSuggestion(row interface{ Scan(...any) error }) (*domain.CommitSuggestion, error) {
	var (
		sug       domain.CommitSuggestion
		status    sql.NullString
		nextSteps []byte
		proposed  []byte
	)
	err := row.Scan(
		&sug.ID, &sug.ServiceID, &sug.CommitHash, &sug.CommitMessage,
		&status, &nextSteps, &proposed, &sug.Applied, &sug.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan suggestion: %w", err)
	}
	if status.Valid {
		sug.Status = status.String
	}
	if len(nextSteps) > 0 {
		if err := json.Unmarshal(nextSteps, &sug.NextSteps); err != nil {
			return nil, fmt.Errorf("scan suggestion next_steps: %w", err)
		}
	}
	if err := json.Unmarshal(proposed, &sug.Proposed); err != nil {
		return nil, fmt.Errorf("scan suggestion proposed: %w", err)
	}
	return &sug, nil
}

// CreateSuggestion inserts a new suggestion. Concurrent attempts for the
// same (service, commit) while one is unapplied are rejected by a partial
// unique index; that case comes back as a no-op with the existing row
// untouched.
func (s *PostgresStore) CreateSuggestion(ctx context.Context, sug *domain.CommitSuggestion) (*domain.CommitSuggestion, error) {
	nextSteps, err := json.Marshal(emptyIfNil(sug.NextSteps))
	if err != nil {
		return nil, fmt.Errorf("encode next_steps: %w", err)
	}
	proposed, err := json.Marshal(sug.Proposed)
	if err != nil {
		return nil, fmt.Errorf("encode proposed manifest: %w", err)
	}

	query := `INSERT INTO commit_suggestions (service_id, commit_hash, commit_message, status, next_steps, proposed, applied)
	          VALUES ($1, $2, $3, NULLIF($4, ''), $5::jsonb, $6::jsonb, FALSE)
	          ON CONFLICT DO NOTHING
	          RETURNING ` + suggestionColumns

	row := s.db.QueryRowContext(ctx, query,
		sug.ServiceID, sug.CommitHash, sug.CommitMessage, sug.Status, nextSteps, proposed,
	)
	created, err := scanSuggestion(row)
	if errors.Is(err, port.ErrNotFound) {
		// lost the race against an identical unapplied suggestion
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}
	return created, nil
}

// GetSuggestionByID returns a suggestion by id.
func (s *PostgresStore) GetSuggestionByID(ctx context.Context, id string) (*domain.CommitSuggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM commit_suggestions WHERE id = $1`
	return scanSuggestion(s.db.QueryRowContext(ctx, query, id))
}

// UnappliedSuggestionExists reports whether an unapplied suggestion already
// exists for the (service, commit) pair.
func (s *PostgresStore) UnappliedSuggestionExists(ctx context.Context, serviceID, commitHash string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM commit_suggestions WHERE service_id = $1 AND commit_hash = $2 AND NOT applied)`
	if err := s.db.QueryRowContext(ctx, query, serviceID, commitHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("check suggestion: %w", err)
	}
	return exists, nil
}

// ListSuggestionsByService returns suggestions for one service, newest
// first.
func (s *PostgresStore) ListSuggestionsByService(ctx context.Context, serviceID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	query := `SELECT ` + suggestionColumns + ` FROM commit_suggestions WHERE service_id = $1`
	if unappliedOnly {
		query += ` AND NOT applied`
	}
	query += ` ORDER BY created_at DESC`
	return s.querySuggestions(ctx, query, serviceID)
}

// ListSuggestionsByRepository returns suggestions across all services of a
// repository, newest first.
func (s *PostgresStore) ListSuggestionsByRepository(ctx context.Context, repositoryID string, unappliedOnly bool) ([]domain.CommitSuggestion, error) {
	query := `SELECT cs.id, cs.service_id, cs.commit_hash, cs.commit_message, cs.status, cs.next_steps, cs.proposed, cs.applied, cs.created_at
	          FROM commit_suggestions cs
	          JOIN tracked_services ts ON ts.id = cs.service_id
	          WHERE ts.repository_id = $1`
	if unappliedOnly {
		query += ` AND NOT cs.applied`
	}
	query += ` ORDER BY cs.created_at DESC`
	return s.querySuggestions(ctx, query, repositoryID)
}

func (s *PostgresStore) querySuggestions(ctx context.Context, query string, args ...any) ([]domain.CommitSuggestion, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestions: %w", err)
	}
	defer rows.Close()

	var suggestions []domain.CommitSuggestion
	for rows.Next() {
		sug, err := scanSuggestion(rows)
		if err != nil {
			return nil, err
		}
		suggestions = append(suggestions, *sug)
	}
	return suggestions, rows.Err()
}

// MarkSuggestionApplied flips the applied flag.
func (s *PostgresStore) MarkSuggestionApplied(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE commit_suggestions SET applied = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark suggestion applied: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// DeleteSuggestion removes a dismissed suggestion.
func (s *PostgresStore) DeleteSuggestion(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM commit_suggestions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete suggestion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return port.ErrNotFound
	}
	return nil
}

// --- Audit logs ---

// WriteAudit implements middleware.AuditWriter.
func (s *PostgresStore) WriteAudit(action, resource, details, ip, userAgent string) error {
	query := `INSERT INTO audit_logs (action, resource, details, ip, user_agent)
	          VALUES ($1, $2, $3::jsonb, $4, $5)`
	_, err := s.db.ExecContext(context.Background(), query, action, resource, details, ip, userAgent)
	return err
}

// ListAuditLogs returns recent audit logs, optionally filtered by action
// and resource.
func (s *PostgresStore) ListAuditLogs(ctx context.Context, limit int, action, resource string) ([]domain.AuditLog, error) {
	query := `SELECT id, action, resource, details, ip, user_agent, created_at FROM audit_logs`
	args := []any{}
	where := []string{}
	if action != "" {
		args = append(args, action)
		where = append(where, fmt.Sprintf("action = $%d", len(args)))
	}
	if resource != "" {
		args = append(args, resource)
		where = append(where, fmt.Sprintf("resource = $%d", len(args)))
	}
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var l domain.AuditLog
		if err := rows.Scan(&l.ID, &l.Action, &l.Resource, &l.Details, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
