package util

import (
	"strings"
	"testing"
)

func TestEvidenceSnippetFindsValue(t *testing.T) {
	text := "פרוטוקול ישיבת מועצה\nתאריך הישיבה: 15/03/2024 בשעה 18:00\nנוכחים: רחל כהן"
	out := EvidenceSnippet(text, "15/03/2024", 60)
	if !strings.Contains(out, "15/03/2024") {
		t.Fatalf("snippet must contain the value, got %q", out)
	}
	if len([]rune(out)) > 80 {
		t.Fatalf("snippet too long: %d runes", len([]rune(out)))
	}
}

func TestEvidenceSnippetFallsBackToHead(t *testing.T) {
	out := EvidenceSnippet("טקסט ללא הערך המבוקש", "123,456", 30)
	if out == "" {
		t.Fatalf("expected head fallback, got empty")
	}
}
