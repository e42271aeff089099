package util

import (
	"strings"
	"unicode"
)

// EvidenceSnippet returns the text region around the first occurrence of the
// extracted value, for provenance display next to a candidate field.
// Falls back to the head of the text when the value is not found verbatim.
func EvidenceSnippet(text, value string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 200
	}
	text = SanitizeText(text)
	value = strings.TrimSpace(value)
	if text == "" {
		return ""
	}
	if value == "" {
		return ClipRunes(text, maxRunes)
	}
	idx := strings.Index(text, value)
	if idx < 0 {
		// Try again on collapsed whitespace; OCR text often breaks values across lines.
		collapsed := normalizeWhitespace(text)
		idx = strings.Index(collapsed, value)
		if idx < 0 {
			return ClipRunes(text, maxRunes)
		}
		text = collapsed
	}
	runes := []rune(text)
	pos := len([]rune(text[:idx]))
	pad := (maxRunes - len([]rune(value))) / 2
	if pad < 0 {
		pad = 0
	}
	start := pos - pad
	if start < 0 {
		start = 0
	}
	end := pos + len([]rune(value)) + pad
	if end > len(runes) {
		end = len(runes)
	}
	snippet := strings.TrimSpace(string(runes[start:end]))
	return normalizeWhitespace(snippet)
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
