package domain

import (
	"fmt"
	"time"
)

// ServiceManifest is the per-service status document committed alongside a
// service's source code (vibe.json). Field order here is the serialization
// order, so diffs of the written file stay readable.
type ServiceManifest struct {
	ServiceName  string    `json:"serviceName"`
	Status       string    `json:"status"`
	CurrentTask  string    `json:"currentTask"`
	Progress     int       `json:"progress"`
	LastUpdate   time.Time `json:"lastUpdate"`
	NextSteps    []string  `json:"nextSteps"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Priority     string    `json:"priority,omitempty"`
}

// Service status constants.
const (
	StatusBacklog    = "Backlog"
	StatusInProgress = "In Progress"
	StatusTesting    = "Testing"
	StatusDone       = "Done"
)

// Priority constants.
const (
	PriorityP1 = "P1"
	PriorityP2 = "P2"
	PriorityP3 = "P3"
)

// ValidStatus reports whether s is one of the four service statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusTesting, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of P1, P2, P3.
func ValidPriority(p string) bool {
	switch p {
	case PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// Validate checks the manifest against its schema. A manifest that fails
// validation is never persisted as tracked state.
func (m *ServiceManifest) Validate() error {
	if m.ServiceName == "" {
		return fmt.Errorf("serviceName must not be empty")
	}
	if !ValidStatus(m.Status) {
		return fmt.Errorf("status %q is not one of Backlog, In Progress, Testing, Done", m.Status)
	}
	if m.CurrentTask == "" {
		return fmt.Errorf("currentTask must not be empty")
	}
	if m.Progress < 0 || m.Progress > 100 {
		return fmt.Errorf("progress %d out of range [0,100]", m.Progress)
	}
	if m.Priority != "" && !ValidPriority(m.Priority) {
		return fmt.Errorf("priority %q is not one of P1, P2, P3", m.Priority)
	}
	return nil
}

// ClampProgress forces a progress value into [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
