package providers

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	codeFenceRe  = regexp.MustCompile("```[a-zA-Z]*\n?")
	jsonObjectRe = regexp.MustCompile(`\{[^{}]*\}`)
	jsonArrayRe  = regexp.MustCompile(`\[[^\[\]]*\]`)
)

// cleanAnswer reduces a model reply to the payload the extractors parse.
// Models wrap answers in fences and prose; the answer itself is either a
// flat JSON value or a single line. Returns the first JSON object or array
// that parses, otherwise the first non-empty line, and reports which.
func cleanAnswer(raw string) (string, bool) {
	s := codeFenceRe.ReplaceAllString(raw, "")
	s = strings.TrimSpace(s)
	for _, re := range []*regexp.Regexp{jsonObjectRe, jsonArrayRe} {
		if m := re.FindString(s); m != "" && json.Valid([]byte(m)) {
			return m, true
		}
	}
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ".")
		line = strings.Trim(line, "\"'` ")
		if line != "" {
			return line, false
		}
	}
	return "", false
}
