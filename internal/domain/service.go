package domain

import "time"

// TrackedService is the local mirror of one remote manifest file. Manifest
// fields are denormalized for querying; the remote file stays the source of
// truth and wins on every rescan.
type TrackedService struct {
	ID             string     `json:"id"               db:"id"`
	RepositoryID   string     `json:"repository_id"    db:"repository_id"`
	ManifestPath   string     `json:"manifest_path"    db:"manifest_path"`
	ServiceName    string     `json:"service_name"     db:"service_name"`
	Status         string     `json:"status"           db:"status"`
	CurrentTask    string     `json:"current_task"     db:"current_task"`
	Progress       int        `json:"progress"         db:"progress"`
	LastUpdate     time.Time  `json:"last_update"      db:"last_update"`
	NextSteps      []string   `json:"next_steps"       db:"next_steps"`
	Dependencies   []string   `json:"dependencies"     db:"dependencies"`
	Priority       string     `json:"priority"         db:"priority"`
	HealthStatus   string     `json:"health_status"    db:"health_status"`
	LastCommitDate *time.Time `json:"last_commit_date" db:"last_commit_date"`
	CreatedAt      time.Time  `json:"created_at"       db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"       db:"updated_at"`
}

// Health status constants.
const (
	HealthHealthy  = "Healthy"
	HealthStale    = "Stale"
	HealthInactive = "Inactive"
	HealthUnknown  = "Unknown"
)

// Manifest rebuilds the manifest document from the denormalized fields.
func (s *TrackedService) Manifest() ServiceManifest {
	return ServiceManifest{
		ServiceName:  s.ServiceName,
		Status:       s.Status,
		CurrentTask:  s.CurrentTask,
		Progress:     s.Progress,
		LastUpdate:   s.LastUpdate,
		NextSteps:    s.NextSteps,
		Dependencies: s.Dependencies,
		Priority:     s.Priority,
	}
}

// ApplyManifest refreshes the denormalized fields from a manifest snapshot.
func (s *TrackedService) ApplyManifest(m ServiceManifest) {
	s.ServiceName = m.ServiceName
	s.Status = m.Status
	s.CurrentTask = m.CurrentTask
	s.Progress = m.Progress
	s.LastUpdate = m.LastUpdate
	s.NextSteps = m.NextSteps
	s.Dependencies = m.Dependencies
	s.Priority = m.Priority
}
