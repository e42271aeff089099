package extract

import (
	"regexp"
	"strings"

	"protoflow/internal/hebrew"
)

// AttendanceEntry is one elected member read off the attendance block.
type AttendanceEntry struct {
	Name    string
	Role    string
	Present bool
	Raw     string
}

var (
	presentSectionRe = regexp.MustCompile(`משתתפ[א-ת]*[:\s]+`)
	// Some protocols skip the participants header and list names right under
	// the opening line.
	openedLineRe    = regexp.MustCompile(`(?:הישיבה\s+נפתחה|נפתחה\s+בשעה)[^\n]*\n`)
	absentSectionRe = regexp.MustCompile(`(?:נעדרים|חסרים)[:\s]+`)

	presentEndRes = []*regexp.Regexp{
		regexp.MustCompile(`נעדרים`),
		regexp.MustCompile(`חסרים`),
		regexp.MustCompile(`נוכחים`),
		regexp.MustCompile(`סגל[:\s]`),
		regexp.MustCompile(`על\s+סדר\s+היום`),
		regexp.MustCompile(`---\s*Page`),
	}
	absentEndRes = []*regexp.Regexp{
		regexp.MustCompile(`נוכחים`),
		regexp.MustCompile(`סגל[:\s]`),
		regexp.MustCompile(`על\s+סדר\s+היום`),
		regexp.MustCompile(`---\s*Page`),
	}

	// Elected-role keywords, normal and back-to-front. A cheap gate; the
	// side split below decides name vs role.
	electedGateRe = regexp.MustCompile(`ראש|סגן|חבר|חברת|מועצה|שאר|ןגס|רבח|תרבח|הצעומ`)
	rolePhraseRe  = regexp.MustCompile(`ראש\s+העיר|סגן\s+ראש|מ"מ\s+ראש|חבר\s+מועצה|חברת\s+מועצה|ריעה\s+שאר|שאר\s+ןגס|הצעומ\s+רבח|הצעומ\s+תרבח`)

	// Scanner habits: 13 where בן stood, stray 7 for letter fragments.
	benMisreadRe   = regexp.MustCompile(`\b13\b`)
	sevenMisreadRe = regexp.MustCompile(`\b7\b`)
)

var attendanceLineSeparators = []string{" - ", " – ", "-", "–", "."}

// Attendance reads elected members out of the participants and absentees
// blocks. Only lines naming an elected role are taken; staff lines belong to
// Staff, and bare name runs without a role are too noisy to trust.
func Attendance(text string) []AttendanceEntry {
	if text == "" {
		return nil
	}
	var out []AttendanceEntry
	area, ok := sliceAfter(text, presentSectionRe, presentEndRes)
	if !ok {
		area, ok = sliceAfter(text, openedLineRe, presentEndRes)
	}
	if ok {
		out = append(out, attendanceLines(area, true)...)
	}
	if area, ok := sliceAfter(text, absentSectionRe, absentEndRes); ok {
		out = append(out, attendanceLines(area, false)...)
	}
	return out
}

func attendanceLines(area string, present bool) []AttendanceEntry {
	var out []AttendanceEntry
	for _, line := range strings.Split(area, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 5 {
			continue
		}
		if e, ok := splitAttendanceLine(line, present); ok {
			out = append(out, e)
		}
	}
	return out
}

func splitAttendanceLine(line string, present bool) (AttendanceEntry, bool) {
	if !electedGateRe.MatchString(line) {
		return AttendanceEntry{}, false
	}
	sep := ""
	for _, s := range attendanceLineSeparators {
		if strings.Contains(line, s) {
			sep = s
			break
		}
	}
	if sep == "" {
		return AttendanceEntry{}, false
	}
	parts := strings.SplitN(line, sep, 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])

	// Reversed lines put the role before the separator.
	var name, role string
	switch {
	case rolePhraseRe.MatchString(left) && !rolePhraseRe.MatchString(right):
		role, name = left, right
	case rolePhraseRe.MatchString(right):
		name, role = left, right
	default:
		return AttendanceEntry{}, false
	}
	if hasStaffKeyword(role) {
		return AttendanceEntry{}, false
	}

	name = hebrew.StripHonorifics(name)
	name = benMisreadRe.ReplaceAllString(name, "בן")
	name = sevenMisreadRe.ReplaceAllString(name, "")
	name = strings.TrimSpace(nonNameCharsRe.ReplaceAllString(name, ""))
	name = strings.Join(strings.Fields(name), " ")
	if n := len([]rune(name)); n < 3 || n > 50 {
		return AttendanceEntry{}, false
	}
	if strings.Count(name, " ") > 3 {
		return AttendanceEntry{}, false
	}

	return AttendanceEntry{Name: name, Role: role, Present: present, Raw: line}, true
}
