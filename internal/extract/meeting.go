package extract

import (
	"regexp"
	"strconv"
	"strings"

	"protoflow/internal/util"
)

type numberPattern struct {
	re         *regexp.Regexp
	confidence float64
}

// Meeting number phrasings, most explicit first. The last entry catches the
// reversed rendering OCR produces on back-to-front headers.
var meetingNumberPatterns = []numberPattern{
	{regexp.MustCompile(`ישיבה\s+מס['"׳]?\s*(\d+)`), 0.9},
	{regexp.MustCompile(`ישיבה\s+מספר\s+(\d+)`), 0.9},
	{regexp.MustCompile(`פרוטוקול\s+מס['"׳]?\s*(\d+)`), 0.85},
	{regexp.MustCompile(`מס['"׳]?\s*ישיבה[:\s]+(\d+)`), 0.8},
	{regexp.MustCompile(`ישיבה\s+(\d+)`), 0.6},
	{regexp.MustCompile(`(\d+)\s*['"׳]?\s*(?:סמ|םס)\s+(?:הבישי|לוקוטורפ)`), 0.75},
}

type typePattern struct {
	re    *regexp.Regexp
	value string
}

// Special types are checked before the regular ones so that
// "שלא מן המניין" never falls through to its "מן המניין" suffix.
var meetingTypePatterns = []typePattern{
	{regexp.MustCompile(`ישיבה\s+שלא\s+מן\s+המניין`), "שלא מן המניין"},
	{regexp.MustCompile(`ישיבה\s+מיוחדת`), "מיוחדת"},
	{regexp.MustCompile(`ישיבה\s+(?:דחופה|חירום)`), "דחופה"},
	{regexp.MustCompile(`ישיבה\s+חגיגית`), "חגיגית"},
	{regexp.MustCompile(`ישיבה\s+(?:מן\s+המניין|מהמניין|רגילה)`), "רגילה"},
}

func meetingNumberStrategies() []Strategy[int] {
	return []Strategy[int]{
		{Name: "header_patterns", Run: func(text string) []Field[int] {
			head := util.ClipRunes(text, 500)
			var out []Field[int]
			for _, p := range meetingNumberPatterns {
				m := p.re.FindStringSubmatch(head)
				if m == nil {
					continue
				}
				n, err := strconv.Atoi(m[1])
				if err != nil || n == 0 {
					continue
				}
				out = append(out, Field[int]{
					Value:      n,
					Confidence: p.confidence,
					Method:     MethodPattern,
					Source:     m[0],
				})
			}
			return out
		}},
	}
}

// MeetingType classifies the meeting. Protocols that state no type hold a
// regular one.
func MeetingType(text string) Field[string] {
	head := util.ClipRunes(text, 500)
	for _, p := range meetingTypePatterns {
		if m := p.re.FindString(head); m != "" {
			return Field[string]{Value: p.value, Confidence: 0.85, Method: MethodPattern, Source: m}
		}
	}
	return Field[string]{Value: "רגילה", Confidence: 0.5, Method: MethodInferred}
}

// Committee names the body holding the meeting when the header carries one.
func Committee(text string) (Field[string], bool) {
	head := util.ClipRunes(text, 500)
	for _, c := range KnownCommittees {
		if strings.Contains(head, c) {
			return Field[string]{Value: c, Confidence: 0.9, Method: MethodLexicon, Source: c}, true
		}
	}
	m := committeeRe.FindString(head)
	if m == "" {
		return Field[string]{}, false
	}
	return Field[string]{Value: m, Confidence: 0.6, Method: MethodPattern, Source: m}, true
}

var committeeRe = regexp.MustCompile(`(?:ועד[הת]\s+\S+|מליאת?\s+ה?מועצה|מועצת\s+העיר)`)
