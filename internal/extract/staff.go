package extract

import (
	"regexp"
	"strings"

	"protoflow/internal/hebrew"
)

// StaffEntry is one (name, role) pair read off the staff block.
type StaffEntry struct {
	Name        string
	Role        string
	MatchedRole string
	Raw         string
}

var (
	staffSectionStartRe = regexp.MustCompile(`סגל[:\s]+`)
	attendanceSectionRe = regexp.MustCompile(`(?:משתתפים|נוכחים)[:\s]+`)
	staffSectionEndRes  = []*regexp.Regexp{
		regexp.MustCompile(`על\s+סדר\s+היום`),
		regexp.MustCompile(`---\s*Page`),
	}

	nonNameCharsRe = regexp.MustCompile(`[^א-ת\s'"]`)
)

var staffSeparators = []string{" - ", " – ", ", "}

// Staff extracts staff members with their roles. The block runs from the
// סגל header to על סדר היום; when OCR ate the header the whole attendance
// area is scanned and filtered by role keywords.
func Staff(text string) []StaffEntry {
	if text == "" {
		return nil
	}
	area, ok := sliceAfter(text, staffSectionStartRe, staffSectionEndRes)
	if !ok {
		area, ok = sliceAfter(text, attendanceSectionRe, staffSectionEndRes)
	}
	if !ok {
		return nil
	}

	var out []StaffEntry
	for _, line := range strings.Split(area, "\n") {
		line = strings.TrimSpace(line)
		if len([]rune(line)) < 5 {
			continue
		}
		if !hasStaffKeyword(line) {
			continue
		}
		entry, ok := splitStaffLine(line)
		if !ok {
			continue
		}
		out = append(out, entry)
	}
	return out
}

func hasStaffKeyword(s string) bool {
	for _, kw := range staffKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func splitStaffLine(line string) (StaffEntry, bool) {
	sep := ""
	for _, s := range staffSeparators {
		if strings.Contains(line, s) {
			sep = s
			break
		}
	}
	if sep == "" {
		return StaffEntry{}, false
	}
	parts := strings.SplitN(line, sep, 2)
	left := strings.TrimSpace(parts[0])
	right := strings.TrimSpace(parts[1])

	leftIsRole := hasStaffKeyword(left)
	rightIsRole := hasStaffKeyword(right)

	var name, role string
	switch {
	case leftIsRole && !rightIsRole:
		role, name = left, right
	case rightIsRole && !leftIsRole:
		name, role = left, right
	default:
		// Both or neither side reads as a role.
		return StaffEntry{}, false
	}

	name = hebrew.StripHonorifics(name)
	name = strings.TrimSpace(nonNameCharsRe.ReplaceAllString(name, ""))
	if len([]rune(name)) < 3 {
		return StaffEntry{}, false
	}

	return StaffEntry{
		Name:        name,
		Role:        role,
		MatchedRole: matchKnownRole(role),
		Raw:         line,
	}, true
}

func matchKnownRole(role string) string {
	for _, known := range KnownStaffRoles {
		if strings.Contains(role, known) || strings.Contains(known, role) {
			return known
		}
	}
	return ""
}
