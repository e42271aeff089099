package util

import "strings"

// SanitizeText strips the control bytes OCR dumps and PDF text layers leak
// into protocol lines. Postgres rejects NUL outright; the rest would only
// garble snippets. Line breaks and tabs stay, they carry layout.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	if !strings.ContainsFunc(s, isControlRune) {
		return strings.TrimSpace(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, ch := range s {
		if isControlRune(ch) {
			continue
		}
		b.WriteRune(ch)
	}
	return strings.TrimSpace(b.String())
}

func isControlRune(ch rune) bool {
	if ch == '\n' || ch == '\r' || ch == '\t' {
		return false
	}
	return ch < 0x20
}
