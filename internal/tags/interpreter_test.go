package tags

import (
	"reflect"
	"testing"

	"github.com/MuhammadLuqman-99/ContextFlow-sub000/internal/domain"
)

func TestInterpretStatusMapping(t *testing.T) {
	cases := []struct {
		literal string
		want    string
	}{
		{"BACKLOG", domain.StatusBacklog},
		{"IN_PROGRESS", domain.StatusInProgress},
		{"TESTING", domain.StatusTesting},
		{"DONE", domain.StatusDone},
		{"done", domain.StatusDone},
		{" testing ", domain.StatusTesting},
		{"SHIPPED", ""}, // unmapped literal yields no status, not an error
	}
	for _, tc := range cases {
		pc := Interpret("abc123", "[STATUS:"+tc.literal+"]", domain.CommitAuthor{})
		if pc.Status != tc.want {
			t.Errorf("STATUS:%s: got %q want %q", tc.literal, pc.Status, tc.want)
		}
		if len(pc.Tags) != 1 {
			t.Errorf("STATUS:%s: tag missing from raw list", tc.literal)
		}
	}
}

func TestInterpretProgressRange(t *testing.T) {
	cases := []struct {
		value string
		want  *int
	}{
		{"0", intp(0)},
		{"100", intp(100)},
		{"42", intp(42)},
		{"150", nil}, // parsed as a tag, never adopted
		{"-1", nil},
		{"1000", nil},
		{"abc", nil},
	}
	for _, tc := range cases {
		pc := Interpret("abc123", "[PROGRESS:"+tc.value+"]", domain.CommitAuthor{})
		if (pc.Progress == nil) != (tc.want == nil) {
			t.Errorf("PROGRESS:%s: got %v want %v", tc.value, pc.Progress, tc.want)
			continue
		}
		if tc.want != nil && *pc.Progress != *tc.want {
			t.Errorf("PROGRESS:%s: got %d want %d", tc.value, *pc.Progress, *tc.want)
		}
	}
}

func TestInterpretFirstOccurrenceWinsWithWarning(t *testing.T) {
	pc := Interpret("abc123", "[STATUS:TESTING] [STATUS:DONE] [PROGRESS:10] [PROGRESS:90]", domain.CommitAuthor{})
	if pc.Status != domain.StatusTesting {
		t.Fatalf("status: got %q want %q", pc.Status, domain.StatusTesting)
	}
	if pc.Progress == nil || *pc.Progress != 10 {
		t.Fatalf("progress: got %v want 10", pc.Progress)
	}
	if len(pc.Warnings) != 2 {
		t.Fatalf("expected 2 duplicate warnings, got %v", pc.Warnings)
	}
	if len(pc.Tags) != 4 {
		t.Fatalf("raw tag list truncated: %d", len(pc.Tags))
	}
}

func TestInterpretNextStepsCumulativeAndTrimmed(t *testing.T) {
	pc := Interpret("abc123", "[NEXT: Add caching ] feat [NEXT:Write docs] [NEXT:  ]", domain.CommitAuthor{})
	want := []string{"Add caching", "Write docs"}
	if !reflect.DeepEqual(pc.NextSteps, want) {
		t.Fatalf("next steps: got %v want %v", pc.NextSteps, want)
	}
}

func TestInterpretPriority(t *testing.T) {
	pc := Interpret("abc123", "[PRIORITY:p2]", domain.CommitAuthor{})
	if pc.Priority != domain.PriorityP2 {
		t.Fatalf("priority: got %q want P2", pc.Priority)
	}
	pc = Interpret("abc123", "[PRIORITY:P9]", domain.CommitAuthor{})
	if pc.Priority != "" {
		t.Fatalf("invalid priority adopted: %q", pc.Priority)
	}
}

func TestInterpretNoTags(t *testing.T) {
	pc := Interpret("abc123", "chore: bump deps", domain.CommitAuthor{Name: "dev"})
	if pc.HasTags() {
		t.Fatalf("expected no tags")
	}
	if pc.Hash != "abc123" || pc.Author.Name != "dev" {
		t.Fatalf("commit metadata not carried through")
	}
}

func intp(n int) *int { return &n }
