package hebrew

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Anchored at start: Go's \b is ASCII-only, so an unanchored "מר" would also
// strip the tail of names like תמר.
var honorificRes = []*regexp.Regexp{
	regexp.MustCompile(`^עו["'׳״]+[דר]\s*`),
	regexp.MustCompile(`^רו["'׳״]+ח\s*`),
	regexp.MustCompile(`^ד["'׳״]+ר\s*`),
	regexp.MustCompile(`^פרופ['׳]?\s+`),
	regexp.MustCompile(`^מר\s+`),
	regexp.MustCompile(`^גב["'׳״]?\s+`),
	regexp.MustCompile(`^גברת\s+`),
	regexp.MustCompile(`^הרב\s+`),
	regexp.MustCompile(`^אדון\s+`),
}

var quoteCharsRe = regexp.MustCompile(`['"׳״]`)

// StripHonorifics removes leading titles, repeatedly, so stacked forms like
// `מר עו"ד` reduce to the bare name. Titles never count toward name matching.
func StripHonorifics(s string) string {
	s = strings.TrimSpace(s)
	for {
		before := s
		for _, re := range honorificRes {
			s = strings.TrimSpace(re.ReplaceAllString(s, ""))
		}
		if s == before {
			return s
		}
	}
}

// NormalizeKey canonicalizes a token for correction-store keys and roster
// comparison: compatibility fold, honorifics and quote marks out, whitespace
// collapsed. Two OCR readings of the same name share one key.
func NormalizeKey(s string) string {
	s = norm.NFKC.String(s)
	s = StripHonorifics(s)
	s = quoteCharsRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}
