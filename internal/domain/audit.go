package domain

import "time"

// AuditLog records API and webhook activity for later inspection.
type AuditLog struct {
	ID        string    `json:"id"         db:"id"`
	Action    string    `json:"action"     db:"action"`
	Resource  string    `json:"resource"   db:"resource"`
	Details   string    `json:"details"    db:"details"` // JSON blob
	IP        string    `json:"ip"         db:"ip"`
	UserAgent string    `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Audit action constants.
const (
	AuditActionHTTPRequest     = "http_request"
	AuditActionWebhookDelivery = "webhook_delivery"
)
