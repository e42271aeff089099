package hebrew

import (
	"regexp"
	"strings"
)

var (
	pageMarkerRe = regexp.MustCompile(`---\s*Page\s*\d+\s*---`)
	blankRunRe   = regexp.MustCompile(`\n{3,}`)
	spaceRunRe   = regexp.MustCompile(` {2,}`)
)

// CleanOCRText strips scanner artifacts: page markers, pipe noise and
// excess whitespace. Line structure is preserved.
func CleanOCRText(s string) string {
	if s == "" {
		return s
	}
	s = pageMarkerRe.ReplaceAllString(s, "\n")
	s = strings.ReplaceAll(s, "|", "")
	s = blankRunRe.ReplaceAllString(s, "\n\n")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
