package extract

import "regexp"

// sliceAfter returns the text between the end of the first start-anchor match
// and the earliest end-anchor match after it. RE2 has no lookahead, so
// section slicing is done by position arithmetic.
func sliceAfter(text string, start *regexp.Regexp, ends []*regexp.Regexp) (string, bool) {
	loc := start.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	rest := text[loc[1]:]
	cut := len(rest)
	for _, re := range ends {
		if m := re.FindStringIndex(rest); m != nil && m[0] < cut {
			cut = m[0]
		}
	}
	return rest[:cut], true
}
