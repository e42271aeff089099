package util

import "strings"

// ClipRunes bounds text handed to LLM prompts and artifact snippets.
// Cuts on a whitespace boundary when one is near the limit.
func ClipRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 3000
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	cut := maxRunes
	for i := maxRunes; i > maxRunes-80 && i > 0; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' {
			cut = i - 1
			break
		}
	}
	return strings.TrimSpace(string(runes[:cut]))
}

// FirstLines returns up to n non-empty trimmed lines.
func FirstLines(s string, n int) []string {
	out := make([]string, 0, n)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
