package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"protoflow/internal/util"
)

var (
	numericDateRe = regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})`)

	// Anchored date phrasings, most protocol-specific first.
	datePatternRes = []*regexp.Regexp{
		regexp.MustCompile(`מיום\s+(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`בתאריך\s+(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`תאריך[:\s]+(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
		regexp.MustCompile(`נערכה?\s+ביום\s+(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`),
	}

	bareDateRe = regexp.MustCompile(`\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}`)

	textualDateRe = regexp.MustCompile(`(\d{1,2})\s+[בל]?([א-ת]{3,7})\s+(\d{4})`)
)

// ParseDayFirst parses an Israeli-format date (DD/MM/YYYY, dots and dashes
// accepted). Two-digit years pivot at 50. The second return reports whether
// day and month could also be read the other way around.
func ParseDayFirst(s string) (time.Time, bool, error) {
	m := numericDateRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false, util.ErrNoCandidate
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if year < 100 {
		if year < 50 {
			year += 2000
		} else {
			year += 1900
		}
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false, util.ErrNoCandidate
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		// Rolled over, e.g. 31/11.
		return time.Time{}, false, util.ErrNoCandidate
	}
	swappable := day != month && day >= 1 && day <= 12
	return t, swappable, nil
}

func dateStrategies() []Strategy[time.Time] {
	return []Strategy[time.Time]{
		{Name: "anchored_numeric", Run: func(text string) []Field[time.Time] {
			head := util.ClipRunes(text, 1000)
			var out []Field[time.Time]
			for _, re := range datePatternRes {
				m := re.FindStringSubmatch(head)
				if m == nil {
					continue
				}
				t, swappable, err := ParseDayFirst(m[1])
				if err != nil {
					continue
				}
				out = append(out, Field[time.Time]{
					Value:      t,
					Confidence: 0.9,
					Method:     MethodPattern,
					Source:     m[0],
					Ambiguous:  swappable,
				})
			}
			return out
		}},
		{Name: "textual_hebrew", Run: func(text string) []Field[time.Time] {
			head := util.ClipRunes(text, 1000)
			m := textualDateRe.FindStringSubmatch(head)
			if m == nil {
				return nil
			}
			month, ok := hebrewMonths[m[2]]
			if !ok {
				return nil
			}
			day, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[3])
			if day < 1 || day > 31 {
				return nil
			}
			t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
			if t.Day() != day {
				return nil
			}
			return []Field[time.Time]{{
				Value:      t,
				Confidence: 0.85,
				Method:     MethodLexicon,
				Source:     m[0],
			}}
		}},
		{Name: "bare_numeric", Run: func(text string) []Field[time.Time] {
			head := util.ClipRunes(text, 1000)
			m := bareDateRe.FindString(head)
			if m == "" {
				return nil
			}
			t, swappable, err := ParseDayFirst(m)
			if err != nil {
				return nil
			}
			return []Field[time.Time]{{
				Value:      t,
				Confidence: 0.7,
				Method:     MethodPattern,
				Source:     m,
				Ambiguous:  swappable,
			}}
		}},
	}
}
