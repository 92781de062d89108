package tags

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// statusMapping translates tag literals into the service-status domain.
var statusMapping = map[string]string{
	"BACKLOG":     domain.StatusBacklog,
	"IN_PROGRESS": domain.StatusInProgress,
	"TESTING":     domain.StatusTesting,
	"DONE":        domain.StatusDone,
}

// Interpret runs the tag parser over a commit message and derives the
// typed fields. Only the first STATUS and PROGRESS occurrence is adopted;
// duplicates of those two types surface as warnings. NEXT tags are
// cumulative. Values the second-stage mapping does not recognize are
// dropped silently rather than treated as errors.
func Interpret(hash, message string, author domain.CommitAuthor) domain.ParsedCommit {
	pc := domain.ParsedCommit{
		Hash:    hash,
		Message: message,
		Author:  author,
		Tags:    ParseTags(message),
	}

	statusSeen, progressSeen := 0, 0
	for _, tag := range pc.Tags {
		switch tag.Type {
		case domain.TagStatus:
			statusSeen++
			if statusSeen > 1 {
				continue
			}
			if mapped, ok := statusMapping[strings.ToUpper(strings.TrimSpace(tag.Value))]; ok {
				pc.Status = mapped
			}
		case domain.TagProgress:
			progressSeen++
			if progressSeen > 1 {
				continue
			}
			if n, ok := parseProgress(tag.Value); ok {
				pc.Progress = &n
			}
		case domain.TagNext:
			if step := strings.TrimSpace(tag.Value); step != "" {
				pc.NextSteps = append(pc.NextSteps, step)
			}
		case domain.TagPriority:
			if pc.Priority != "" {
				continue
			}
			p := strings.ToUpper(strings.TrimSpace(tag.Value))
			if domain.ValidPriority(p) {
				pc.Priority = p
			}
		}
	}

	if statusSeen > 1 {
		pc.Warnings = append(pc.Warnings, fmt.Sprintf("%d STATUS tags found, only the first is used", statusSeen))
	}
	if progressSeen > 1 {
		pc.Warnings = append(pc.Warnings, fmt.Sprintf("%d PROGRESS tags found, only the first is used", progressSeen))
	}
	return pc
}

// parseProgress accepts a 1-3 digit integer in [0,100].
func parseProgress(value string) (int, bool) {
	v := strings.TrimSpace(value)
	if len(v) == 0 || len(v) > 3 {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 100 {
		return 0, false
	}
	return n, true
}
