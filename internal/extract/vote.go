package extract

import (
	"regexp"
	"strconv"
	"strings"

	"protoflow/internal/hebrew"
)

// VoteType classifies how a decision was reached.
type VoteType string

const (
	VoteUnanimous VoteType = "unanimous"
	VoteCounted   VoteType = "counted"
	VoteMajority  VoteType = "majority"
	VoteRejected  VoteType = "rejected"
	VoteUnknown   VoteType = "unknown"
)

// VoteResult is one extracted vote outcome. Unanimous results carry zero
// counts until commit resolves them against the present members.
type VoteResult struct {
	Type    VoteType
	Yes     int
	No      int
	Abstain int
}

// Cast is the number of votes actually counted.
func (v VoteResult) Cast() int { return v.Yes + v.No + v.Abstain }

var (
	// Direct unanimous phrasings, including the reversed rendering and the
	// פא אחד misread.
	unanimousDirectRes = []*regexp.Regexp{
		regexp.MustCompile(`הצבעה[:\s]+פה\s*אח[דר]`),
		regexp.MustCompile(`אושר[הו]?\s+פה\s*אח[דר]`),
		regexp.MustCompile(`פא\s+אחד`),
		regexp.MustCompile(`דחא\s+הפ`),
		regexp.MustCompile(`ללא\s+מתנגדים`),
		regexp.MustCompile(`ללא\s+הצבעה`),
	}

	barePhUnanimousRe = regexp.MustCompile(`פה\s*אח[דר]`)

	yesCountRes = []*regexp.Regexp{
		regexp.MustCompile(`בעד[\s:-]+(\d+)`),
		regexp.MustCompile(`(\d+)\s+בעד`),
		regexp.MustCompile(`3va[\s\x{200f}]*-\s*(\d+)`),
	}
	noCountRes = []*regexp.Regexp{
		regexp.MustCompile(`נגד[\s:-]+(\d+)`),
		regexp.MustCompile(`(\d+)\s+נגד`),
	}
	abstainCountRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:נמנעים|נמנע)[\s:-]+(\d+)`),
		regexp.MustCompile(`(\d+)\s+(?:נמנעים|נמנע)`),
		regexp.MustCompile(`גמנצים[\s:-]+(\d+)`),
	}

	majorityRe = regexp.MustCompile(`ברוב\s+(?:קולות|קולה)`)

	voteContextRe = regexp.MustCompile(`הצבעה|הוחלט|החלטה`)

	// Labeled name lists: בעד: שם, שם ושם
	yesNamesRe     = regexp.MustCompile(`בעד[:\s]+([א-ת"'׳ ,\-]+)`)
	noNamesRe      = regexp.MustCompile(`נגד[:\s]+([א-ת"'׳ ,\-]+)`)
	abstainNamesRe = regexp.MustCompile(`(?:נמנעים|נמנע)[:\s]+([א-ת"'׳ ,\-]+)`)

	groupedItemsRe = regexp.MustCompile(`סעיפים\s+(\d+)\s*[-–]\s*(\d+)`)
)

func firstCount(text string, res []*regexp.Regexp) (int, string, bool) {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			return n, m[0], true
		}
	}
	return 0, "", false
}

func countNames(list string) int {
	list = strings.TrimSpace(list)
	if list == "" {
		return 0
	}
	// ו before the last name acts as a separator too.
	list = strings.ReplaceAll(list, " ו", ", ")
	parts := strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == '\n' })
	n := 0
	for _, p := range parts {
		if len(hebrew.Words(p)) > 0 {
			n++
		}
	}
	return n
}

func voteStrategies() []Strategy[VoteResult] {
	return []Strategy[VoteResult]{
		{Name: "direct_unanimous", Run: func(text string) []Field[VoteResult] {
			for _, re := range unanimousDirectRes {
				if m := re.FindString(text); m != "" {
					return []Field[VoteResult]{{
						Value:      VoteResult{Type: VoteUnanimous},
						Confidence: 0.95,
						Method:     MethodPattern,
						Source:     m,
					}}
				}
			}
			return nil
		}},
		{Name: "labeled_counts", Run: func(text string) []Field[VoteResult] {
			v := VoteResult{Type: VoteCounted}
			src := ""
			found := false
			if n, s, ok := firstCount(text, yesCountRes); ok {
				v.Yes, src, found = n, s, true
			}
			if n, s, ok := firstCount(text, noCountRes); ok {
				v.No, found = n, true
				if src == "" {
					src = s
				}
			}
			if n, s, ok := firstCount(text, abstainCountRes); ok {
				v.Abstain, found = n, true
				if src == "" {
					src = s
				}
			}
			if !found {
				return nil
			}
			return []Field[VoteResult]{{
				Value:      v,
				Confidence: 0.9,
				Method:     MethodPattern,
				Source:     src,
			}}
		}},
		{Name: "majority_phrase", Run: func(text string) []Field[VoteResult] {
			m := majorityRe.FindString(text)
			if m == "" {
				return nil
			}
			return []Field[VoteResult]{{
				Value:      VoteResult{Type: VoteMajority},
				Confidence: 0.8,
				Method:     MethodPattern,
				Source:     m,
			}}
		}},
		{Name: "named_lists", Run: func(text string) []Field[VoteResult] {
			v := VoteResult{Type: VoteCounted}
			src := ""
			if m := yesNamesRe.FindStringSubmatch(text); m != nil {
				v.Yes = countNames(m[1])
				src = m[0]
			}
			if m := noNamesRe.FindStringSubmatch(text); m != nil {
				v.No = countNames(m[1])
			}
			if m := abstainNamesRe.FindStringSubmatch(text); m != nil {
				v.Abstain = countNames(m[1])
			}
			if v.Cast() == 0 {
				return nil
			}
			return []Field[VoteResult]{{
				Value:      v,
				Confidence: 0.7,
				Method:     MethodPattern,
				Source:     src,
			}}
		}},
		{Name: "bare_unanimous_in_context", Run: func(text string) []Field[VoteResult] {
			m := barePhUnanimousRe.FindString(text)
			if m == "" || !voteContextRe.MatchString(text) {
				return nil
			}
			return []Field[VoteResult]{{
				Value:      VoteResult{Type: VoteUnanimous},
				Confidence: 0.6,
				Method:     MethodPattern,
				Source:     m,
			}}
		}},
	}
}

// InferVoteType classifies counted results the protocol left unlabeled.
func InferVoteType(v VoteResult) VoteType {
	switch {
	case v.Yes > 0 && v.No == 0 && v.Abstain == 0:
		return VoteUnanimous
	case v.Yes > v.No:
		return VoteMajority
	case v.No > v.Yes:
		return VoteRejected
	}
	return VoteUnknown
}

// GroupedVote is one vote line covering a run of agenda items.
type GroupedVote struct {
	From   int
	To     int
	Result Field[VoteResult]
}

// GroupedVotes finds vote lines of the form "סעיפים 3-5 אושרו פה אחד" and
// fans the result out to each covered item number.
func GroupedVotes(text string) []GroupedVote {
	var out []GroupedVote
	for _, m := range groupedItemsRe.FindAllStringSubmatchIndex(text, -1) {
		from, err1 := strconv.Atoi(text[m[2]:m[3]])
		to, err2 := strconv.Atoi(text[m[4]:m[5]])
		if err1 != nil || err2 != nil || to < from || to-from > 30 {
			continue
		}
		// The verdict lives on the same line as the item range.
		lineEnd := strings.IndexByte(text[m[1]:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text) - m[1]
		}
		line := text[m[0] : m[1]+lineEnd]
		cands, err := RunChain(line, voteStrategies())
		if err != nil || len(cands) == 0 {
			continue
		}
		out = append(out, GroupedVote{From: from, To: to, Result: cands[0]})
	}
	return out
}
