package util

import (
	"strings"
	"testing"
)

func TestClipRunes(t *testing.T) {
	text := strings.Repeat("שורה אחת ", 500)
	out := ClipRunes(text, 100)
	if len([]rune(out)) > 100 {
		t.Fatalf("clip exceeded limit: %d runes", len([]rune(out)))
	}
	if ClipRunes("קצר", 100) != "קצר" {
		t.Fatalf("short input must pass through unchanged")
	}
}

func TestFirstLines(t *testing.T) {
	lines := FirstLines("a\n\n  b  \nc\nd", 3)
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "b" || lines[2] != "c" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}
