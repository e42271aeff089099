package extract

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"protoflow/internal/util"
)

// Fallback asks a language model about a text kind and returns its raw
// answer with a confidence. Implemented by the providers manager; nil
// disables LLM assistance entirely.
type Fallback func(ctx context.Context, kind, text string) (string, float64, error)

// Extractor runs the strategy chains and consults the fallback only when a
// chain comes up empty or below MinConfidence.
type Extractor struct {
	MinConfidence float64
	Fallback      Fallback
}

func New() *Extractor {
	return &Extractor{MinConfidence: 0.6}
}

// fallbackCap keeps an LLM answer from outranking a direct pattern hit.
const fallbackCap = 0.75

func (e *Extractor) needFallback(conf float64, err error) bool {
	if e.Fallback == nil {
		return false
	}
	if err != nil {
		return errors.Is(err, util.ErrNoCandidate)
	}
	return conf < e.MinConfidence
}

func (e *Extractor) capConfidence(llmConf, bestPattern float64) float64 {
	conf := llmConf
	if conf > fallbackCap {
		conf = fallbackCap
	}
	if bestPattern > 0 && conf >= bestPattern {
		conf = bestPattern - 0.05
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

// MeetingDate extracts the meeting date. Two-digit day/month pairs readable
// both ways come back flagged with ErrExtractionAmbiguous.
func (e *Extractor) MeetingDate(ctx context.Context, text string) (Field[time.Time], error) {
	f, err := One(RunChain(text, dateStrategies()))
	if !e.needFallback(f.Confidence, err) {
		return f, err
	}
	raw, conf, ferr := e.Fallback(ctx, KindMeetingDate, util.ClipRunes(text, 1500))
	if ferr != nil {
		return f, err
	}
	t, _, perr := ParseDayFirst(raw)
	if perr != nil {
		return f, err
	}
	return Field[time.Time]{
		Value:      t,
		Confidence: e.capConfidence(conf, f.Confidence),
		Method:     MethodLLM,
		Source:     raw,
	}, nil
}

// MeetingNumber extracts the running meeting number from the header area.
func (e *Extractor) MeetingNumber(ctx context.Context, text string) (Field[int], error) {
	f, err := One(RunChain(text, meetingNumberStrategies()))
	if !e.needFallback(f.Confidence, err) {
		return f, err
	}
	raw, conf, ferr := e.Fallback(ctx, KindMeetingNumber, util.ClipRunes(text, 800))
	if ferr != nil {
		return f, err
	}
	n, perr := strconv.Atoi(strings.TrimSpace(raw))
	if perr != nil || n <= 0 {
		return f, err
	}
	return Field[int]{
		Value:      n,
		Confidence: e.capConfidence(conf, f.Confidence),
		Method:     MethodLLM,
		Source:     raw,
	}, nil
}

// Budget extracts the total approved amount of an item.
func (e *Extractor) Budget(ctx context.Context, text string) (Field[float64], error) {
	f, err := One(RunChain(text, budgetStrategies()))
	if !e.needFallback(f.Confidence, err) {
		return f, err
	}
	raw, conf, ferr := e.Fallback(ctx, KindBudget, util.ClipRunes(text, 1500))
	if ferr != nil {
		return f, err
	}
	v := ParseAmount(raw)
	if v <= 0 {
		return f, err
	}
	return Field[float64]{
		Value:      v,
		Confidence: e.capConfidence(conf, f.Confidence),
		Method:     MethodLLM,
		Source:     raw,
	}, nil
}

// llmVote is the JSON shape the vote prompt asks for.
type llmVote struct {
	Type    string `json:"type"`
	Yes     int    `json:"yes"`
	No      int    `json:"no"`
	Abstain int    `json:"abstain"`
}

// Vote extracts the vote outcome of one agenda item.
func (e *Extractor) Vote(ctx context.Context, text string) (Field[VoteResult], error) {
	f, err := One(RunChain(text, voteStrategies()))
	if !e.needFallback(f.Confidence, err) {
		return f, err
	}
	raw, conf, ferr := e.Fallback(ctx, KindVote, util.ClipRunes(text, 1500))
	if ferr != nil {
		return f, err
	}
	var parsed llmVote
	if jerr := json.Unmarshal([]byte(raw), &parsed); jerr != nil {
		return f, err
	}
	v := VoteResult{Type: VoteCounted, Yes: parsed.Yes, No: parsed.No, Abstain: parsed.Abstain}
	if parsed.Type == string(VoteUnanimous) {
		v = VoteResult{Type: VoteUnanimous}
	} else if v.Cast() == 0 {
		return f, err
	}
	return Field[VoteResult]{
		Value:      v,
		Confidence: e.capConfidence(conf, f.Confidence),
		Method:     MethodLLM,
		Source:     raw,
	}, nil
}

// Decision classifies the decision of one agenda item, asking the fallback
// only when no known wording matched.
func (e *Extractor) Decision(ctx context.Context, text string) (Field[DecisionResult], error) {
	f, err := Decision(text)
	if !e.needFallback(f.Confidence, err) {
		return f, err
	}
	raw, conf, ferr := e.Fallback(ctx, KindDecision, util.ClipRunes(text, 1500))
	if ferr != nil {
		return f, err
	}
	status := strings.TrimSpace(raw)
	known := false
	for _, s := range KnownDecisionStatuses {
		if s == status {
			known = true
			break
		}
	}
	if !known {
		return f, err
	}
	return Field[DecisionResult]{
		Value:      DecisionResult{Status: status},
		Confidence: e.capConfidence(conf, f.Confidence),
		Method:     MethodLLM,
		Source:     raw,
	}, nil
}

// ItemDetail is one agenda item with everything read out of its text.
// AgendaOnly marks items listed on the agenda that the meeting never took up.
type ItemDetail struct {
	Item
	AgendaOnly bool
	Vote       *Field[VoteResult]
	Decision   *Field[DecisionResult]
	Budget     *Field[float64]
	Sources    []Source
}

// agendaOnlyRunes is the body size under which an unvoted item counts as
// listed-but-not-discussed.
const agendaOnlyRunes = 200

// Discussions slices the discussions section and extracts vote, decision and
// budget for every item. Grouped vote lines fan out to the items they cover.
func (e *Extractor) Discussions(ctx context.Context, text string) []ItemDetail {
	items := Items(text)
	if len(items) == 0 {
		return nil
	}
	grouped := GroupedVotes(text)

	out := make([]ItemDetail, 0, len(items))
	for _, it := range items {
		d := ItemDetail{Item: it}

		if v, err := e.Vote(ctx, it.Text); err == nil {
			d.Vote = &v
		} else if g, ok := groupedFor(grouped, it.IssueNo); ok {
			d.Vote = &g
		}
		d.AgendaOnly = d.Vote == nil && len([]rune(it.Text)) < agendaOnlyRunes

		if dec, err := e.Decision(ctx, it.Text); err == nil {
			d.Decision = &dec
		} else if inf, ok := InferDecision(d.AgendaOnly, d.Vote != nil); ok {
			d.Decision = &inf
		}

		if b, err := e.Budget(ctx, it.Text); err == nil {
			d.Budget = &b
		}
		d.Sources = FundingSources(it.Text)

		out = append(out, d)
	}
	return out
}

func groupedFor(grouped []GroupedVote, issueNo string) (Field[VoteResult], bool) {
	n, err := strconv.Atoi(issueNo)
	if err != nil {
		return Field[VoteResult]{}, false
	}
	for _, g := range grouped {
		if n >= g.From && n <= g.To {
			return g.Result, true
		}
	}
	return Field[VoteResult]{}, false
}
