package extract

import (
	"sort"

	"protoflow/internal/util"
)

// Extraction methods recorded on every candidate for the review UI and the
// learning store.
const (
	MethodPattern  = "pattern"
	MethodLexicon  = "lexicon"
	MethodLearned  = "learned"
	MethodLLM      = "llm_fallback"
	MethodInferred = "inferred"
)

// Text kinds a fallback provider can be asked about.
const (
	KindMeetingDate   = "meeting_date"
	KindMeetingNumber = "meeting_number"
	KindVote          = "vote"
	KindDecision      = "decision"
	KindBudget        = "budget"
	KindPersonName    = "person_name"
)

// Field is one extracted candidate with its provenance. Source carries the
// evidence snippet the value was read from.
type Field[T comparable] struct {
	Value      T
	Confidence float64
	Method     string
	Source     string
	Ambiguous  bool
}

// Strategy is one way of reading a field out of protocol text. A chain runs
// its strategies in declaration order; earlier entries are more specific.
type Strategy[T comparable] struct {
	Name string
	Run  func(text string) []Field[T]
}

// ambiguityGap is the confidence distance under which two distinct leading
// values count as a tie.
const ambiguityGap = 0.05

// RunChain returns the candidates of the first strategy that produced any,
// highest confidence first, duplicates folded. When two distinct values tie
// within ambiguityGap the leader is flagged for human confirmation.
func RunChain[T comparable](text string, chain []Strategy[T]) ([]Field[T], error) {
	for _, s := range chain {
		cands := s.Run(text)
		if len(cands) == 0 {
			continue
		}
		sort.SliceStable(cands, func(i, j int) bool {
			return cands[i].Confidence > cands[j].Confidence
		})
		cands = dedupe(cands)
		if len(cands) > 1 && cands[0].Confidence-cands[1].Confidence < ambiguityGap {
			cands[0].Ambiguous = true
		}
		return cands, nil
	}
	return nil, util.ErrNoCandidate
}

// One reduces a candidate list to its leader. An ambiguous leader is still
// returned so the caller can present it, alongside ErrExtractionAmbiguous.
func One[T comparable](cands []Field[T], err error) (Field[T], error) {
	var zero Field[T]
	if err != nil {
		return zero, err
	}
	if len(cands) == 0 {
		return zero, util.ErrNoCandidate
	}
	if cands[0].Ambiguous {
		return cands[0], util.ErrExtractionAmbiguous
	}
	return cands[0], nil
}

func dedupe[T comparable](cands []Field[T]) []Field[T] {
	seen := make(map[T]int, len(cands))
	out := cands[:0]
	for _, c := range cands {
		if i, ok := seen[c.Value]; ok {
			if c.Confidence > out[i].Confidence {
				out[i] = c
			}
			continue
		}
		seen[c.Value] = len(out)
		out = append(out, c)
	}
	return out
}
