package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"protoflow/internal/hebrew"
	"protoflow/internal/util"
)

// Item is one agenda item sliced out of the discussions section.
type Item struct {
	IssueNo     string
	Title       string
	Text        string
	Start       int
	End         int
	OutOfAgenda bool
	Repaired    bool
}

var (
	itemMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`סעיף\s*(?:מס['׳]?|מספר)?\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`נושא\s*(?:מס['׳]?|מספר)?\s*[:\-]?\s*(\d+)`),
		regexp.MustCompile(`(?m)^(\d+)\s*[.:\-]\s+`),
	}

	// Items raised outside the published agenda carry a star.
	starredMarkerRe = regexp.MustCompile(`(?m)^\*\s*(?:סעיף\s*)?(\d+)`)

	bareMarkerLineRe = regexp.MustCompile(`^(?:סעיף|נושא)?\s*(?:מס['׳]?|מספר)?\s*[:\-]?\s*\d+\s*[.:\-]?\s*$`)

	titleRejectRes = []*regexp.Regexp{
		regexp.MustCompile(`^(?:החלטה|הצבעה|בעד|נגד|נמנע|אושר|נדחה|פה\s*אחד)`),
		regexp.MustCompile(`^(?:וכן|אשר|כי|אבל|אולם|לפיכך)\s`),
		regexp.MustCompile(`^[.,:;\-]`),
	}
)

// itemMarkGap is the minimum distance between two markers before the second
// counts as a new item rather than an in-text reference.
const itemMarkGap = 50

type itemMark struct {
	pos     int
	issueNo string
	starred bool
}

func findItemMarks(text string) []itemMark {
	var marks []itemMark
	for _, re := range itemMarkerRes {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			marks = append(marks, itemMark{pos: m[0], issueNo: text[m[2]:m[3]]})
		}
	}
	for _, m := range starredMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		marks = append(marks, itemMark{pos: m[0], issueNo: text[m[2]:m[3]], starred: true})
	}
	if len(marks) == 0 {
		return nil
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].pos < marks[j].pos })
	filtered := marks[:1]
	for _, m := range marks[1:] {
		if m.pos-filtered[len(filtered)-1].pos > itemMarkGap {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// Items slices the discussions section into agenda items, repairs OCR'd item
// numbers that break the sequence, and picks a title line for each.
func Items(text string) []Item {
	if text == "" {
		return nil
	}
	marks := findItemMarks(text)
	if len(marks) == 0 {
		return nil
	}

	items := make([]Item, 0, len(marks))
	for i, m := range marks {
		end := len(text)
		if i+1 < len(marks) {
			end = marks[i+1].pos
		}
		body := text[m.pos:end]
		if i+1 == len(marks) {
			body = util.ClipRunes(body, 5000)
			end = m.pos + len(body)
		}
		items = append(items, Item{
			IssueNo:     m.issueNo,
			Title:       itemTitle(body),
			Text:        body,
			Start:       m.pos,
			End:         end,
			OutOfAgenda: m.starred,
		})
	}
	repairSequence(items)
	return items
}

func itemTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || bareMarkerLineRe.MatchString(line) {
			continue
		}
		// Drop the marker prefix so the title starts at the subject.
		if loc := starredMarkerRe.FindStringIndex(line); loc != nil && loc[0] == 0 {
			line = strings.TrimSpace(strings.TrimLeft(line[loc[1]:], ":-. "))
		}
		for _, re := range itemMarkerRes {
			if loc := re.FindStringIndex(line); loc != nil && loc[0] == 0 {
				line = strings.TrimSpace(strings.TrimLeft(line[loc[1]:], ":-. "))
				break
			}
		}
		if !validTitle(line) {
			continue
		}
		return util.ClipRunes(line, 200)
	}
	return ""
}

func validTitle(line string) bool {
	if len([]rune(line)) < 4 {
		return false
	}
	for _, re := range titleRejectRes {
		if re.MatchString(line) {
			return false
		}
	}
	words := hebrew.Words(line)
	if len(words) >= 2 {
		return true
	}
	return len(words) == 1 && strings.ContainsAny(line, "0123456789")
}

// repairSequence fixes a single misread item number when its neighbors agree
// on what it should have been.
func repairSequence(items []Item) {
	for i := 1; i+1 < len(items); i++ {
		prev, err1 := strconv.Atoi(items[i-1].IssueNo)
		cur, err2 := strconv.Atoi(items[i].IssueNo)
		next, err3 := strconv.Atoi(items[i+1].IssueNo)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		if cur != prev+1 && next == prev+2 {
			items[i].IssueNo = strconv.Itoa(prev + 1)
			items[i].Repaired = true
		}
	}
}
