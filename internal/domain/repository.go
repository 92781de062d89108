package domain

import "time"

// Repository identifies a tracked remote code repository. The stored access
// token is the credential every gateway call re-authenticates with; the
// webhook secret signs inbound push deliveries for this repository.
type Repository struct {
	ID            string    `json:"id"             db:"id"`
	Owner         string    `json:"owner"          db:"owner"`
	Name          string    `json:"name"           db:"name"`
	RemoteID      int64     `json:"remote_id"      db:"remote_id"`
	DefaultBranch string    `json:"default_branch" db:"default_branch"`
	WebhookID     int64     `json:"webhook_id"     db:"webhook_id"`
	WebhookSecret string    `json:"-"              db:"webhook_secret"`
	AccessToken   string    `json:"-"              db:"access_token"`
	Active        bool      `json:"active"         db:"active"`
	CreatedAt     time.Time `json:"created_at"     db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"     db:"updated_at"`
}

// FullName returns the owner/name form used by the remote host.
func (r *Repository) FullName() string {
	return r.Owner + "/" + r.Name
}
