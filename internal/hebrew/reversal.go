package hebrew

import (
	"strings"
	"sync"
)

// Thresholds tune the reversal heuristics. Cutoffs are configuration, not
// constants, because they are tuned against live scan batches.
type Thresholds struct {
	// PrefixRatio: share of multi-letter words starting with a common Hebrew
	// suffix letter (ה/ת/י) above which the run is judged reversed.
	PrefixRatio float64
	// SuffixRatio: share of multi-letter words ending with a common Hebrew
	// prefix letter above which the run is judged reversed.
	SuffixRatio float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{PrefixRatio: 0.5, SuffixRatio: 0.6}
}

// Lexicon holds tokens known to appear reversed in scans: seeded with role
// titles, common names and protocol terms, extended at runtime from learned
// corrections.
type Lexicon struct {
	mu      sync.RWMutex
	entries map[string]struct{}
}

var lexiconSeed = []string{
	// First names as OCR emits them back-to-front.
	"ןורש", "ןנור", "ןועמש", "ןרהא", "ןתנוי", "ןד", "ןור", "ןב",
	"הרש", "ריאמ", "יול", "יגח", "לאינד", "לכימ", "ילא", "הלא",
	// Surnames.
	"ןהכ", "ןומימ", "ןמטור", "רלימ", "דעס", "קינזר", "ירשוב",
	"רקניפ", "סילקמ", "ןמנירג", "ץרפ", "ןמדירפ", "ןמרבליז",
	// Role titles.
	"ל\"כנמ", "לכנמ", "רבזג", "ש\"מעוי", "רקבמ", "סדנהמ", "להנמ",
	// Protocol terms.
	"יפסכה", "רושיא", "הטלחה", "תנשל", "הייריעה", "הצעומה",
}

func NewLexicon() *Lexicon {
	l := &Lexicon{entries: make(map[string]struct{}, len(lexiconSeed))}
	for _, e := range lexiconSeed {
		l.entries[e] = struct{}{}
	}
	return l
}

func (l *Lexicon) Add(token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	l.mu.Lock()
	l.entries[token] = struct{}{}
	l.mu.Unlock()
}

func (l *Lexicon) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// ContainsAny reports whether any lexicon entry occurs in s.
func (l *Lexicon) ContainsAny(s string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for e := range l.entries {
		if strings.Contains(s, e) {
			return true
		}
	}
	return false
}

// Detection is the outcome of the reversal heuristics on one text run.
type Detection struct {
	Reversed   bool
	Confidence float64
	Signal     string
}

const (
	SignalFinalAtStart = "final_letter_at_word_start"
	SignalFinalMidWord = "final_letter_mid_word"
	SignalLexicon      = "reversed_token_lexicon"
	SignalPrefixRatio  = "suffix_letters_at_word_start"
	SignalSuffixRatio  = "prefix_letters_at_word_end"
)

// DetectReversal runs the heuristics in strength order and stops at the first
// hit. A final form at word start cannot occur in correct Hebrew, so it is
// the strongest signal; the ratio heuristics are statistical and weakest.
func DetectReversal(s string, lex *Lexicon, thr Thresholds) Detection {
	trimmed := strings.TrimSpace(s)
	if len([]rune(trimmed)) < 2 {
		return Detection{}
	}
	words := Words(trimmed)
	if len(words) == 0 {
		return Detection{}
	}

	for _, w := range words {
		runes := []rune(w)
		if len(runes) > 1 && IsFinalLetter(runes[0]) {
			return Detection{Reversed: true, Confidence: 0.95, Signal: SignalFinalAtStart}
		}
	}

	for _, w := range words {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		for _, r := range runes[1 : len(runes)-1] {
			if IsFinalLetter(r) {
				return Detection{Reversed: true, Confidence: 0.9, Signal: SignalFinalMidWord}
			}
		}
	}

	if lex != nil && lex.ContainsAny(trimmed) {
		return Detection{Reversed: true, Confidence: 0.85, Signal: SignalLexicon}
	}

	multi := 0
	prefixHits := 0
	suffixHits := 0
	for _, w := range words {
		runes := []rune(w)
		if len(runes) <= 2 {
			continue
		}
		multi++
		switch runes[0] {
		case 'ה', 'ת', 'י':
			prefixHits++
		}
		switch runes[len(runes)-1] {
		case 'ה', 'ב', 'ו', 'ל', 'מ', 'ש', 'כ':
			suffixHits++
		}
	}
	if multi > 0 {
		if float64(prefixHits) >= float64(multi)*thr.PrefixRatio {
			return Detection{Reversed: true, Confidence: 0.7, Signal: SignalPrefixRatio}
		}
		if float64(suffixHits) >= float64(multi)*thr.SuffixRatio {
			return Detection{Reversed: true, Confidence: 0.6, Signal: SignalSuffixRatio}
		}
	}
	return Detection{}
}

// CorrectReversal returns s reading direction fixed when the heuristics judge
// it reversed, with the detection that drove the decision. Unmatched text
// passes through unchanged; it is never dropped.
func CorrectReversal(s string, lex *Lexicon, thr Thresholds) (string, Detection) {
	det := DetectReversal(s, lex, thr)
	if !det.Reversed {
		return s, det
	}
	return SmartReverse(s), det
}
