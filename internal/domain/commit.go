package domain

// TagType classifies a commit message directive.
type TagType string

// Tag types recognized inside commit messages.
const (
	TagStatus   TagType = "STATUS"
	TagNext     TagType = "NEXT"
	TagProgress TagType = "PROGRESS"
	TagPriority TagType = "PRIORITY"
)

// CommitTag is one bracketed directive extracted from a commit message,
// e.g. [STATUS:DONE]. Raw keeps the original matched text for traceability;
// malformed values are still captured here and only rejected when the commit
// is interpreted.
type CommitTag struct {
	Type  TagType `json:"type"`
	Value string  `json:"value"`
	Raw   string  `json:"raw"`
}

// CommitAuthor carries the author metadata of a push commit.
type CommitAuthor struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Date  string `json:"date"`
}

// ParsedCommit is the interpretation of one commit: the full ordered tag
// list plus the derived fields, each present only if a well-formed tag of
// that type appeared.
type ParsedCommit struct {
	Hash      string       `json:"hash"`
	Message   string       `json:"message"`
	Author    CommitAuthor `json:"author"`
	Tags      []CommitTag  `json:"tags"`
	Status    string       `json:"status,omitempty"`
	NextSteps []string     `json:"next_steps,omitempty"`
	Progress  *int         `json:"progress,omitempty"`
	Priority  string       `json:"priority,omitempty"`
	Warnings  []string     `json:"warnings,omitempty"`
}

// HasTags reports whether any tag was found in the commit message.
func (p *ParsedCommit) HasTags() bool {
	return len(p.Tags) > 0
}

// PushCommit is one commit from an inbound push delivery with the file
// paths it touched.
type PushCommit struct {
	ID       string       `json:"id"`
	Message  string       `json:"message"`
	Author   CommitAuthor `json:"author"`
	Added    []string     `json:"added"`
	Modified []string     `json:"modified"`
	Removed  []string     `json:"removed"`
}
