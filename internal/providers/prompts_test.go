package providers

import (
	"strings"
	"testing"

	"protoflow/internal/extract"
)

func TestDecisionPromptListsKnownStatuses(t *testing.T) {
	p := promptFor(extract.KindDecision, "טקסט")
	for _, s := range extract.KnownDecisionStatuses {
		if !strings.Contains(p, s) {
			t.Fatalf("prompt missing status %q", s)
		}
	}
}

func TestVotePromptAsksForJSON(t *testing.T) {
	p := promptFor(extract.KindVote, "טקסט")
	if !strings.HasSuffix(p, "JSON:") {
		t.Fatalf("vote prompt must end with the JSON cue: %q", p)
	}
	if !strings.Contains(p, `"unanimous"`) {
		t.Fatalf("vote prompt must pin the answer shape: %q", p)
	}
}

func TestPromptClipsLongText(t *testing.T) {
	long := strings.Repeat("א ", 3000)
	p := promptFor(extract.KindBudget, long)
	if len([]rune(p)) > promptClipRunes+300 {
		t.Fatalf("prompt not clipped: %d runes", len([]rune(p)))
	}
}
