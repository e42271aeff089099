package extract

import (
	"regexp"
	"sort"
	"strings"
)

// Section identifies one region of a protocol document.
type Section string

const (
	SectionHeader      Section = "header"
	SectionAttendees   Section = "attendees"
	SectionAbsent      Section = "absent"
	SectionStaff       Section = "staff"
	SectionAgenda      Section = "agenda"
	SectionDiscussions Section = "discussions"
)

// Anchor patterns per section. Order inside each list is specificity:
// per-anchor confidence is 1.0 minus 0.1 per position.
var sectionAnchorsNormal = map[Section][]*regexp.Regexp{
	SectionHeader: {
		regexp.MustCompile(`פרוטוקול`),
		regexp.MustCompile(`ישיבת\s*(?:מועצה|ועדה)`),
		regexp.MustCompile(`מועצת\s*(?:העיר|המקומית)`),
		regexp.MustCompile(`עיריית`),
		regexp.MustCompile(`מועצה\s*מקומית`),
	},
	SectionAttendees: {
		regexp.MustCompile(`נוכחים`),
		regexp.MustCompile(`משתתפים`),
		regexp.MustCompile(`חברי\s*(?:המועצה|הועדה)\s*הנוכחים`),
		regexp.MustCompile(`נכחו`),
		regexp.MustCompile(`השתתפו`),
	},
	SectionAbsent: {
		regexp.MustCompile(`נעדרים`),
		regexp.MustCompile(`חסרים`),
		regexp.MustCompile(`לא\s*נכחו`),
		regexp.MustCompile(`חברים\s*שנעדרו`),
	},
	SectionStaff: {
		regexp.MustCompile(`סגל`),
		regexp.MustCompile(`אנשי\s*מקצוע`),
		regexp.MustCompile(`נוכחים\s*נוספים`),
		regexp.MustCompile(`משתתפים\s*נוספים`),
		regexp.MustCompile(`עובדי\s*(?:העירייה|הרשות)`),
	},
	SectionAgenda: {
		regexp.MustCompile(`סדר\s*היום`),
		regexp.MustCompile(`על\s*סדר\s*היום`),
		regexp.MustCompile(`נושאים\s*לדיון`),
	},
	SectionDiscussions: {
		regexp.MustCompile(`סעיף\s*(?:מס['׳]?|מספר)?\s*\d+`),
		regexp.MustCompile(`סעיף\s+[א-ת]`),
		regexp.MustCompile(`נושא\s*(?:מס['׳]?|מספר)?\s*\d+`),
	},
}

var sectionAnchorsReversed = map[Section][]*regexp.Regexp{
	SectionHeader: {
		regexp.MustCompile(`לוקוטורפ`),
		regexp.MustCompile(`תבשי`),
		regexp.MustCompile(`תייריע`),
		regexp.MustCompile(`הצעומ`),
	},
	SectionAttendees: {
		regexp.MustCompile(`םיחכונ`),
		regexp.MustCompile(`םיפתתשמ`),
		regexp.MustCompile(`וחכנ`),
	},
	SectionAbsent: {
		regexp.MustCompile(`םירדענ`),
		regexp.MustCompile(`םירסח`),
	},
	SectionStaff: {
		regexp.MustCompile(`לגס`),
		regexp.MustCompile(`םיפסונ\s*םיחכונ`),
	},
	SectionAgenda: {
		regexp.MustCompile(`םויה\s*רדס`),
		regexp.MustCompile(`ןוידל?\s*םיאשונ`),
	},
	SectionDiscussions: {
		regexp.MustCompile(`\d+\s*['׳]?סמ\s*ףיעס`),
		regexp.MustCompile(`ףיעס`),
	},
}

// SectionInfo is one detected section with its boundaries in the document.
type SectionInfo struct {
	Type       Section
	Start      int
	End        int
	Text       string
	Confidence float64
	Reversed   bool
	Anchor     string
}

// Sections is the map of detected sections plus the direction verdict.
type Sections struct {
	BySection  map[Section]SectionInfo
	Reversed   bool
	Confidence float64
}

// Get returns a section when it was detected.
func (s Sections) Get(t Section) (SectionInfo, bool) {
	info, ok := s.BySection[t]
	return info, ok
}

// DetectDirection votes normal against reversed anchors. Header anchors
// weigh double; they are the least likely to be OCR noise.
func DetectDirection(text string) (bool, float64) {
	normal, reversed := 0, 0
	for _, s := range []struct {
		section Section
		weight  int
	}{
		{SectionHeader, 2},
		{SectionAttendees, 1},
		{SectionDiscussions, 1},
	} {
		for _, re := range sectionAnchorsNormal[s.section] {
			if re.MatchString(text) {
				normal += s.weight
			}
		}
		for _, re := range sectionAnchorsReversed[s.section] {
			if re.MatchString(text) {
				reversed += s.weight
			}
		}
	}
	total := normal + reversed
	if total == 0 {
		return false, 0
	}
	diff := normal - reversed
	if diff < 0 {
		diff = -diff
	}
	return reversed > normal, float64(diff) / float64(total)
}

type anchorHit struct {
	pos        int
	anchor     string
	confidence float64
}

func findAnchors(text string, anchors map[Section][]*regexp.Regexp) map[Section]anchorHit {
	out := make(map[Section]anchorHit)
	for section, res := range anchors {
		best := anchorHit{pos: -1}
		for i, re := range res {
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			if best.pos < 0 || loc[0] < best.pos {
				best = anchorHit{pos: loc[0], anchor: text[loc[0]:loc[1]], confidence: 1.0 - float64(i)*0.1}
			}
		}
		if best.pos >= 0 {
			out[section] = best
		}
	}
	return out
}

// DetectSections slices the document into its sections: anchors are found in
// the winning direction, sorted by position, and each section runs to the
// start of the next.
func DetectSections(text string) Sections {
	result := Sections{BySection: map[Section]SectionInfo{}}
	if strings.TrimSpace(text) == "" {
		return result
	}

	reversed, _ := DetectDirection(text)
	anchors := sectionAnchorsNormal
	if reversed {
		anchors = sectionAnchorsReversed
	}
	hits := findAnchors(text, anchors)
	if len(hits) == 0 {
		reversed = !reversed
		if reversed {
			anchors = sectionAnchorsReversed
		} else {
			anchors = sectionAnchorsNormal
		}
		hits = findAnchors(text, anchors)
	}

	type entry struct {
		section Section
		hit     anchorHit
	}
	sorted := make([]entry, 0, len(hits))
	for s, h := range hits {
		sorted = append(sorted, entry{s, h})
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].hit.pos < sorted[j].hit.pos })

	sum := 0.0
	for i, e := range sorted {
		end := len(text)
		if i+1 < len(sorted) {
			end = sorted[i+1].hit.pos
		}
		result.BySection[e.section] = SectionInfo{
			Type:       e.section,
			Start:      e.hit.pos,
			End:        end,
			Text:       strings.TrimSpace(text[e.hit.pos:end]),
			Confidence: e.hit.confidence,
			Reversed:   reversed,
			Anchor:     e.hit.anchor,
		}
		sum += e.hit.confidence
	}
	result.Reversed = reversed
	if len(sorted) > 0 {
		result.Confidence = sum / float64(len(sorted))
	}
	return result
}
