package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// Amount labels protocols attach to a תב"ר line. The bare תב"ר pattern
	// insists on comma groups so a project number like תב"ר 1234 is never
	// read as the amount.
	budgetPatternRes = []*regexp.Regexp{
		regexp.MustCompile(`בסך\s+(?:של\s+)?([0-9,.]+)`),
		regexp.MustCompile(`סה["'׳]כ\s+ה?תב["'׳]ר[:\s-]+([0-9,.]+)`),
		regexp.MustCompile(`ה?תב["'׳]ר[:\s-]+(\d{1,3}(?:,\d{3})+(?:\.\d+)?)`),
		regexp.MustCompile(`תקציב[:\s]+([0-9,.]+)`),
		regexp.MustCompile(`עלות[:\s]+([0-9,.]+)`),
		regexp.MustCompile(`סכום[:\s]+([0-9,.]+)`),
	}

	// Millions shorthand: 2.5 מלש"ח = 2,500,000.
	millionsRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)\s*מלש["'׳]?ח`)

	currencyAmountRe = regexp.MustCompile(`(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)\s*(?:₪|ש["'׳]ח|שקל)`)

	fundingStartRes = []*regexp.Regexp{
		regexp.MustCompile(`מקורות?\s+ה?מימון[:\s-]*`),
		regexp.MustCompile(`מקור\s+מימון[:\s-]*`),
	}
	fundingEndRes = []*regexp.Regexp{
		regexp.MustCompile(`\n\s*\n`),
		regexp.MustCompile(`דברי\s+הסבר`),
		regexp.MustCompile(`סעיף\s+מס`),
		regexp.MustCompile(`הצבעה`),
	}

	fundingSourceRes = []*regexp.Regexp{
		regexp.MustCompile(`(הרשאת\s+משרד\s+[א-ת]+(?:\s+[א-ת]+)?)[:\s-]+([0-9,.]+)`),
		regexp.MustCompile(`(משרד\s+[א-ת]+(?:\s+[א-ת]+)?)[:\s-]+([0-9,.]+)`),
		regexp.MustCompile(`(קרנות?\s+ה?רשות)[:\s-]+([0-9,.]+)`),
		regexp.MustCompile(`(מימון\s+עצמי|השתתפות\s+עצמית)[:\s-]+([0-9,.]+)`),
		regexp.MustCompile(`(עיריי?ת?\s*[א-ת]*)[:\s-]+([0-9,.]+)\s*(?:₪|ש["'׳]ח)`),
	}
)

// Source is one funding source read off a budget section.
type Source struct {
	Name   string
	Amount float64
	Raw    string
}

// ParseAmount turns an OCR amount token into its numeric value. Currency
// marks, separators and stray whitespace are tolerated.
func ParseAmount(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '₪', '"', '\'', '׳', '״', ' ', '\t', 'ש', 'ח':
			return -1
		}
		return r
	}, s)
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if strings.Count(cleaned, ".") > 1 {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
	}
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

func budgetStrategies() []Strategy[float64] {
	return []Strategy[float64]{
		{Name: "labeled_amount", Run: func(text string) []Field[float64] {
			var out []Field[float64]
			for _, re := range budgetPatternRes {
				m := re.FindStringSubmatch(text)
				if m == nil {
					continue
				}
				if v := ParseAmount(m[1]); v > 0 {
					out = append(out, Field[float64]{
						Value:      v,
						Confidence: 0.85,
						Method:     MethodPattern,
						Source:     m[0],
					})
				}
			}
			return out
		}},
		{Name: "millions_shorthand", Run: func(text string) []Field[float64] {
			m := millionsRe.FindStringSubmatch(text)
			if m == nil {
				return nil
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v <= 0 {
				return nil
			}
			return []Field[float64]{{
				Value:      v * 1_000_000,
				Confidence: 0.8,
				Method:     MethodPattern,
				Source:     m[0],
			}}
		}},
		{Name: "largest_currency_amount", Run: func(text string) []Field[float64] {
			best := 0.0
			src := ""
			for _, m := range currencyAmountRe.FindAllStringSubmatch(text, -1) {
				if v := ParseAmount(m[1]); v > best {
					best = v
					src = m[0]
				}
			}
			if best == 0 {
				return nil
			}
			return []Field[float64]{{
				Value:      best,
				Confidence: 0.6,
				Method:     MethodPattern,
				Source:     src,
			}}
		}},
	}
}

// FundingSources reads the מקורות מימון block into deduplicated name/amount
// pairs. Without an explicit block the source patterns run over the whole
// item text.
func FundingSources(text string) []Source {
	if text == "" {
		return nil
	}
	area := text
	for _, start := range fundingStartRes {
		if sec, ok := sliceAfter(text, start, fundingEndRes); ok {
			area = sec
			break
		}
	}

	var out []Source
	seen := make(map[string]struct{})
	for _, re := range fundingSourceRes {
		for _, m := range re.FindAllStringSubmatch(area, -1) {
			name := strings.Join(strings.Fields(m[1]), " ")
			if len([]rune(name)) < 3 {
				continue
			}
			amount := ParseAmount(m[2])
			if amount <= 0 {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			// One line can match both the הרשאת משרד and the משרד
			// pattern; keep the longer reading only.
			dup := false
			for _, o := range out {
				if o.Amount == amount && (strings.Contains(o.Name, name) || strings.Contains(name, o.Name)) {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, Source{Name: name, Amount: amount, Raw: m[0]})
		}
	}
	return out
}
