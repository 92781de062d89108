// Package tags extracts and interprets the bracketed status directives
// embedded in commit messages, e.g. [STATUS:DONE] [NEXT:Add caching].
package tags

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

// tagPattern matches [KEYWORD:value] with a case-insensitive keyword. The
// value is a single negated character class, so matching stays linear on
// arbitrary untrusted input.
var tagPattern = regexp.MustCompile(`(?i)\[(STATUS|NEXT|PROGRESS|PRIORITY):([^\]]*)\]`)

// ParseTags extracts every tag from a commit message in order of
// appearance. Malformed values (e.g. PROGRESS:150) are still returned with
// their literal value; interpretation decides what to adopt.
func ParseTags(message string) []domain.CommitTag {
	matches := tagPattern.FindAllStringSubmatch(message, -1)
	if len(matches) == 0 {
		return nil
	}
	tags := make([]domain.CommitTag, 0, len(matches))
	for _, m := range matches {
		tags = append(tags, domain.CommitTag{
			Type:  domain.TagType(strings.ToUpper(m[1])),
			Value: m[2],
			Raw:   m[0],
		})
	}
	return tags
}

// FormatTags renders tags back into their message form, space separated.
// Formatting then re-parsing yields an equal tag list.
func FormatTags(tags []domain.CommitTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, fmt.Sprintf("[%s:%s]", t.Type, t.Value))
	}
	return strings.Join(parts, " ")
}
