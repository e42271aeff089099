package learning

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"protoflow/internal/hebrew"
	"protoflow/internal/models"
)

// Store is the append-only corrections persistence the learner sits on.
// Rows come back in recording order.
type Store interface {
	Append(ctx context.Context, c models.Correction) error
	ListAll(ctx context.Context) ([]models.Correction, error)
}

// Mapping is one learned OCR→accepted correction.
type Mapping struct {
	Accepted    string
	Confidence  float64
	Count       int
	WasReversed bool
}

// minedMinCount is how often a reversal correction must repeat before its
// token is exported to the reversal lexicon.
const minedMinCount = 2

type indexKey struct {
	key  string
	kind string
}

// keyState tracks the accepted values recorded for one normalized key. The
// newest accepted value wins; its repeat count drives the confidence.
type keyState struct {
	accepted    string
	wasReversed bool
	counts      map[string]int
	reversal    int
}

// Learner keeps human corrections and answers lookups before extraction and
// matching run. The index is in memory; the store is the source of truth.
type Learner struct {
	store Store

	mu    sync.RWMutex
	index map[indexKey]*keyState
}

func New(store Store) *Learner {
	return &Learner{store: store, index: make(map[indexKey]*keyState)}
}

// Load replays the stored corrections into the index. Called once at
// startup; Record keeps the index current afterwards.
func (l *Learner) Load(ctx context.Context) error {
	rows, err := l.store.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load corrections: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.index = make(map[indexKey]*keyState, len(rows))
	for _, c := range rows {
		l.apply(c)
	}
	return nil
}

// Record stores one confirmed correction and updates the index. Confirming
// a value identical to the OCR reading is a no-op; no correction happened.
func (l *Learner) Record(ctx context.Context, original, fieldKind, accepted string, wasReversed bool) error {
	key := hebrew.NormalizeKey(original)
	if key == "" || key == hebrew.NormalizeKey(accepted) {
		return nil
	}
	c := models.Correction{
		OriginalText:  original,
		NormalizedKey: key,
		AcceptedValue: accepted,
		FieldKind:     fieldKind,
		WasReversed:   wasReversed,
	}
	if err := l.store.Append(ctx, c); err != nil {
		return fmt.Errorf("append correction: %w", err)
	}
	l.mu.Lock()
	l.apply(c)
	l.mu.Unlock()
	return nil
}

// apply folds one correction into the index. Caller holds the write lock.
func (l *Learner) apply(c models.Correction) {
	k := indexKey{key: c.NormalizedKey, kind: c.FieldKind}
	st := l.index[k]
	if st == nil {
		st = &keyState{counts: make(map[string]int)}
		l.index[k] = st
	}
	st.accepted = c.AcceptedValue
	st.wasReversed = c.WasReversed
	st.counts[c.AcceptedValue]++
	if hebrew.NormalizeKey(hebrew.SmartReverse(c.OriginalText)) == hebrew.NormalizeKey(c.AcceptedValue) {
		st.reversal++
	}
}

// Lookup returns the newest mapping for the normalized key, probing the
// reversed reading too. Confidence grows with repeat count, full at three.
// A straight hit reports the reversal flag recorded with the correction; a
// hit through the reversed probe reports true.
func (l *Learner) Lookup(text, fieldKind string) (Mapping, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if st, ok := l.index[indexKey{key: hebrew.NormalizeKey(text), kind: fieldKind}]; ok {
		return mappingFrom(st, st.wasReversed), true
	}
	revKey := hebrew.NormalizeKey(hebrew.SmartReverse(text))
	if st, ok := l.index[indexKey{key: revKey, kind: fieldKind}]; ok {
		return mappingFrom(st, true), true
	}
	return Mapping{}, false
}

func mappingFrom(st *keyState, wasReversed bool) Mapping {
	count := st.counts[st.accepted]
	conf := float64(count) / 3
	if conf > 1 {
		conf = 1
	}
	return Mapping{
		Accepted:    st.accepted,
		Confidence:  conf,
		Count:       count,
		WasReversed: wasReversed,
	}
}

// MinedReversalPatterns returns the normalized tokens whose corrections
// repeatedly turned out to be straight reversals. They seed the reversal
// lexicon so the normalizer flags them before anyone has to correct them
// again.
func (l *Learner) MinedReversalPatterns() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for k, st := range l.index {
		if st.reversal >= minedMinCount {
			out = append(out, k.key)
		}
	}
	sort.Strings(out)
	return out
}

// SeedLexicon exports the mined reversal tokens into a reversal lexicon.
func (l *Learner) SeedLexicon(lex *hebrew.Lexicon) int {
	tokens := l.MinedReversalPatterns()
	for _, tok := range tokens {
		lex.Add(tok)
	}
	return len(tokens)
}

// topCorrectedLimit caps the most-corrected list in the report.
const topCorrectedLimit = 20

// TopCorrection is one frequently corrected input in the report.
type TopCorrection struct {
	NormalizedKey string `json:"normalized_key"`
	FieldKind     string `json:"field_kind"`
	Accepted      string `json:"accepted"`
	Count         int    `json:"count"`
}

// Report summarizes what the learner has accumulated.
type Report struct {
	TotalCorrections int             `json:"total_corrections"`
	KnownKeys        int             `json:"known_keys"`
	ByFieldKind      map[string]int  `json:"by_field_kind"`
	TopCorrected     []TopCorrection `json:"top_corrected"`
}

// Report aggregates correction counts per field kind and lists the inputs
// corrected most often.
func (l *Learner) Report() Report {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rep := Report{
		KnownKeys:   len(l.index),
		ByFieldKind: make(map[string]int),
	}
	for k, st := range l.index {
		total := 0
		for _, n := range st.counts {
			total += n
		}
		rep.TotalCorrections += total
		rep.ByFieldKind[k.kind] += total
		rep.TopCorrected = append(rep.TopCorrected, TopCorrection{
			NormalizedKey: k.key,
			FieldKind:     k.kind,
			Accepted:      st.accepted,
			Count:         total,
		})
	}
	sort.Slice(rep.TopCorrected, func(i, j int) bool {
		a, b := rep.TopCorrected[i], rep.TopCorrected[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.NormalizedKey < b.NormalizedKey
	})
	if len(rep.TopCorrected) > topCorrectedLimit {
		rep.TopCorrected = rep.TopCorrected[:topCorrectedLimit]
	}
	return rep
}
