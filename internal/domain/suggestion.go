package domain

import "time"

// CommitSuggestion is a proposed manifest update derived from one commit,
// pending human approval. At most one unapplied suggestion exists per
// (service, commit hash) pair; duplicate creation attempts are no-ops.
type CommitSuggestion struct {
	ID            string          `json:"id"             db:"id"`
	ServiceID     string          `json:"service_id"     db:"service_id"`
	CommitHash    string          `json:"commit_hash"    db:"commit_hash"`
	CommitMessage string          `json:"commit_message" db:"commit_message"`
	Status        string          `json:"status,omitempty"     db:"status"`
	NextSteps     []string        `json:"next_steps,omitempty" db:"next_steps"`
	Proposed      ServiceManifest `json:"proposed"       db:"proposed"`
	Applied       bool            `json:"applied"        db:"applied"`
	CreatedAt     time.Time       `json:"created_at"     db:"created_at"`
}
