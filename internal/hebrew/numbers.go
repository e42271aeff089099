package hebrew

import (
	"regexp"
	"strings"
)

// Fix records one normalization applied to a span of a single line.
type Fix struct {
	Start      int
	End        int
	Original   string
	Fixed      string
	Kind       string
	Confidence float64
}

const (
	FixDigits            = "digits"
	FixRoadNumber        = "road_number"
	FixReversalCandidate = "reversal_candidate"
	FixReversalSuspect   = "reversal_suspect"
)

// A correctly grouped number never begins with a zero group; OCR emits the
// digit run back-to-front, e.g. "000,052" for 250,000.
var reversedGroupedRe = regexp.MustCompile(`\b0{1,3},\d{1,3}(?:,\d{3})*\b`)

// FixReversedNumbers re-orders digit groups that OCR read left-to-right
// inside RTL text. Only digits and separators inside the token are touched;
// already-correct numbers pass through unchanged.
func FixReversedNumbers(s string) (string, []Fix) {
	if s == "" {
		return s, nil
	}
	locs := reversedGroupedRe.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return s, nil
	}
	var fixes []Fix
	var b strings.Builder
	b.Grow(len(s))
	prev := 0
	for _, loc := range locs {
		token := s[loc[0]:loc[1]]
		fixed := reverseDigitGroups(token)
		b.WriteString(s[prev:loc[0]])
		b.WriteString(fixed)
		prev = loc[1]
		if fixed == token {
			continue
		}
		fixes = append(fixes, Fix{
			Start:      loc[0],
			End:        loc[1],
			Original:   token,
			Fixed:      fixed,
			Kind:       FixDigits,
			Confidence: 0.95,
		})
	}
	b.WriteString(s[prev:])
	return b.String(), fixes
}

func reverseDigitGroups(token string) string {
	digits := strings.ReplaceAll(token, ",", "")
	if !strings.HasPrefix(digits, "0") || strings.Trim(digits, "0") == "" {
		return token
	}
	reversed := Reverse(digits)
	reversed = strings.TrimLeft(reversed, "0")
	if reversed == "" {
		reversed = "0"
	}
	return groupThousands(reversed)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Road numbers OCR swaps in budget lines; keyed by context word so an
// unrelated "64" is never touched.
var reversedRoadNumbers = map[string]string{
	"64": "46",
	"56": "65",
	"04": "40",
	"06": "60",
}

var roadNumberRe = regexp.MustCompile(`(?:כביש|דרך)\s+(?:מס['׳]\s*)?(\d{2})\b`)

// FixReversedRoadNumbers corrects known two-digit road numbers appearing
// after a road context word.
func FixReversedRoadNumbers(s string) (string, []Fix) {
	if s == "" {
		return s, nil
	}
	var fixes []Fix
	matches := roadNumberRe.FindAllStringSubmatchIndex(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		numStart, numEnd := matches[i][2], matches[i][3]
		wrong := s[numStart:numEnd]
		right, ok := reversedRoadNumbers[wrong]
		if !ok {
			continue
		}
		fixes = append(fixes, Fix{
			Start:      numStart,
			End:        numEnd,
			Original:   wrong,
			Fixed:      right,
			Kind:       FixRoadNumber,
			Confidence: 0.8,
		})
		s = s[:numStart] + right + s[numEnd:]
	}
	return s, fixes
}
