// Package manifest holds the pure manifest operations: decoding and
// validating the JSON document, encoding it with a stable layout, and
// merging a parsed commit into a current manifest.
package manifest

import (
	"time"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// Merge produces the proposed manifest for a parsed commit. The output is
// always a full snapshot, never a partial patch. Fields are replaced
// wholesale when the commit carries them and retained otherwise; next steps
// are the deduplicated union with existing entries first.
//
// currentTask is promoted to the first merged next step only when the
// status changed to a different value and the merged list is non-empty.
// The promoted step deliberately stays inside nextSteps; it is only removed
// by an explicit promote operation later.
func Merge(current domain.ServiceManifest, pc domain.ParsedCommit, now time.Time) domain.ServiceManifest {
	proposed := current

	statusChanged := pc.Status != "" && pc.Status != current.Status
	if pc.Status != "" {
		proposed.Status = pc.Status
	}
	if pc.Progress != nil {
		proposed.Progress = domain.ClampProgress(*pc.Progress)
	}
	if pc.Priority != "" {
		proposed.Priority = pc.Priority
	}
	proposed.NextSteps = mergeSteps(current.NextSteps, pc.NextSteps)
	proposed.LastUpdate = now

	if statusChanged && len(proposed.NextSteps) > 0 {
		proposed.CurrentTask = proposed.NextSteps[0]
	}
	return proposed
}

// mergeSteps unions two step lists, eliminating exact-string duplicates.
// Existing entries keep their order; newly-seen entries follow in source
// order.
func mergeSteps(existing, incoming []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	merged := make([]string, 0, len(existing)+len(incoming))
	for _, s := range existing {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}
	for _, s := range incoming {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		merged = append(merged, s)
	}
	return merged
}
