package extract

import (
	"regexp"
	"strings"

	"protoflow/internal/util"
)

// DecisionResult is a classified decision with its quoted text when the
// protocol spells one out.
type DecisionResult struct {
	Status string
	Text   string
}

type decisionPattern struct {
	re     *regexp.Regexp
	status string
}

// Classification order matters: specific phrasings must win before the bare
// אושר at the bottom.
var decisionPatterns = []decisionPattern{
	{regexp.MustCompile(`אושר\s+פה\s*אחד`), "אושר פה אחד"},
	{regexp.MustCompile(`פה\s*אחד`), "אושר פה אחד"},
	{regexp.MustCompile(`נדח[הת]\s+ל(?:ישיבה|דיון)`), "נדחה לדיון נוסף"},
	{regexp.MustCompile(`הועבר\s+לדיון`), "נדחה לדיון נוסף"},
	{regexp.MustCompile(`הו(?:פנה|עבר)\s+לו?ועדה`), "הופנה לוועדה"},
	{regexp.MustCompile(`(?:ירד|הורד|הוסר)\s+מ?סדר`), "ירד מסדר היום"},
	{regexp.MustCompile(`לא\s+התקבלה\s+החלטה`), "לא התקבלה החלטה"},
	{regexp.MustCompile(`נדח[הת]`), "לא אושר"},
	{regexp.MustCompile(`לא\s+(?:אושר|התקבל)`), "לא אושר"},
	{regexp.MustCompile(`דיווח\s+ועדכון`), "דיווח ועדכון"},
	{regexp.MustCompile(`ל?לידיעה|להידיעה`), "דיווח ועדכון"},
	{regexp.MustCompile(`אושר\s+ברוב`), "אושר"},
	{regexp.MustCompile(`הוחלט\s+לאשר`), "אושר"},
	{regexp.MustCompile(`מועצת\s+העיר\s+מאשרת`), "אושר"},
	{regexp.MustCompile(`מ?אושר`), "אושר"},
	{regexp.MustCompile(`התקבל`), "אושר"},
}

var (
	decisionTextStartRes = []*regexp.Regexp{
		regexp.MustCompile(`החלטה[:\s]+`),
		regexp.MustCompile(`הוחלט[:\s]+`),
		regexp.MustCompile(`מחליטה[:\s]+`),
	}
	decisionTextEndRes = []*regexp.Regexp{
		regexp.MustCompile(`\n\s*\n`),
		regexp.MustCompile(`סעיף\s`),
	}
)

// Decision classifies the decision wording of one agenda item.
func Decision(text string) (Field[DecisionResult], error) {
	if text == "" {
		return Field[DecisionResult]{}, util.ErrNoCandidate
	}
	for _, p := range decisionPatterns {
		m := p.re.FindString(text)
		if m == "" {
			continue
		}
		res := DecisionResult{Status: p.status}
		conf := 0.7
		for _, start := range decisionTextStartRes {
			if body, ok := sliceAfter(text, start, decisionTextEndRes); ok {
				res.Text = util.ClipRunes(strings.TrimSpace(body), 500)
				conf = 0.8
				break
			}
		}
		return Field[DecisionResult]{
			Value:      res,
			Confidence: conf,
			Method:     MethodPattern,
			Source:     m,
		}, nil
	}
	return Field[DecisionResult]{}, util.ErrNoCandidate
}

// InferDecision supplies a status for items the protocol closed without
// wording one: agenda-only items fell off the agenda, un-voted items were
// briefings.
func InferDecision(agendaOnly, hasVote bool) (Field[DecisionResult], bool) {
	switch {
	case agendaOnly:
		return Field[DecisionResult]{
			Value:      DecisionResult{Status: "ירד מסדר היום"},
			Confidence: 0.5,
			Method:     MethodInferred,
		}, true
	case !hasVote:
		return Field[DecisionResult]{
			Value:      DecisionResult{Status: "דיווח ועדכון"},
			Confidence: 0.5,
			Method:     MethodInferred,
		}, true
	}
	return Field[DecisionResult]{}, false
}
