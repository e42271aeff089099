package match

import (
	"strings"

	"protoflow/internal/hebrew"
	"protoflow/internal/models"
	"protoflow/internal/util"
)

// Field kinds reported to and looked up from the correction learner.
const (
	FieldPersonName = "person_name"
	FieldRole       = "role"
)

// Match methods, most certain first.
const (
	MethodLearned     = "learned"
	MethodExact       = "exact"
	MethodWordOverlap = "word_overlap"
	MethodContained   = "contained"
	MethodFirstName   = "first_name"
	MethodRatio       = "ratio"
)

// Thresholds are the minimum ratio scores per matching context. Staff
// matching is stricter than attendance names; named vote tokens are often
// first names only and get the loosest bar.
type Thresholds struct {
	Name       float64
	Staff      float64
	Role       float64
	Discussion float64
	Vote       float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Name: 0.7, Staff: 0.8, Role: 0.7, Discussion: 0.4, Vote: 0.6}
}

// LearnedLookup consults recorded corrections. A hit short-circuits matching
// entirely; the learner handles key normalization and the reversed probe.
type LearnedLookup func(text, fieldKind string) (accepted string, wasReversed bool, ok bool)

// Matcher resolves OCR name and role tokens against a canonical roster.
type Matcher struct {
	Thresholds Thresholds
	Learned    LearnedLookup
}

func New() *Matcher {
	return &Matcher{Thresholds: DefaultThresholds()}
}

// Result is one roster match. A nil Person with a nil error means no match;
// callers route that to the new-person branch, never drop the token.
type Result struct {
	Person      *models.Person
	Matched     string
	Score       float64
	Method      string
	WasReversed bool
}

// Person matches an attendance name token against the roster.
func (m *Matcher) Person(token string, roster []models.Person) (Result, error) {
	return m.person(token, roster, m.Thresholds.Name)
}

// StaffPerson matches a staff name token. Staff rosters are small and
// false positives costly, so the ratio bar is higher.
func (m *Matcher) StaffPerson(token string, roster []models.Person) (Result, error) {
	return m.person(token, roster, m.Thresholds.Staff)
}

// Voter matches a name off a named vote list. Those are often first names
// only.
func (m *Matcher) Voter(token string, roster []models.Person) (Result, error) {
	return m.person(token, roster, m.Thresholds.Vote)
}

func (m *Matcher) person(token string, roster []models.Person, threshold float64) (Result, error) {
	if m.Learned != nil {
		if accepted, wasReversed, ok := m.Learned(token, FieldPersonName); ok {
			res := Result{
				Matched:     accepted,
				Score:       1.0,
				Method:      MethodLearned,
				WasReversed: wasReversed,
			}
			key := cleanToken(accepted)
			for i := range roster {
				if cleanToken(roster[i].FullName) == key {
					res.Person = &roster[i]
					break
				}
			}
			return res, nil
		}
	}

	clean := cleanToken(token)
	if len([]rune(clean)) < 2 || len(roster) == 0 {
		return Result{}, nil
	}

	idx := indexRoster(roster)

	straight, serr := scoreAgainst(clean, idx, threshold)
	reversed := Result{}
	var rerr error
	if rev := cleanToken(hebrew.SmartReverse(clean)); rev != clean {
		reversed, rerr = scoreAgainst(rev, idx, threshold)
	}

	// Higher score wins; a conflict outranks silence so the caller still
	// learns the token was blocked rather than merely unknown.
	switch {
	case reversed.Person != nil && (straight.Person == nil || reversed.Score > straight.Score):
		reversed.WasReversed = true
		return reversed, nil
	case straight.Person != nil:
		return straight, nil
	case serr != nil:
		return Result{}, serr
	case rerr != nil:
		return Result{}, rerr
	}
	return Result{}, nil
}

type rosterIndex struct {
	roster    []models.Person
	keys      []string
	words     [][]string
	wordCount map[string]int
}

func indexRoster(roster []models.Person) rosterIndex {
	idx := rosterIndex{
		roster:    roster,
		keys:      make([]string, len(roster)),
		words:     make([][]string, len(roster)),
		wordCount: make(map[string]int),
	}
	for i := range roster {
		key := cleanToken(roster[i].FullName)
		idx.keys[i] = key
		idx.words[i] = strings.Fields(key)
		seen := map[string]bool{}
		for _, w := range idx.words[i] {
			if !seen[w] {
				idx.wordCount[w]++
				seen[w] = true
			}
		}
	}
	return idx
}

// scoreAgainst runs the matching cascade for one reading of the token:
// exact, word overlap under the strict single-shared-word rule, containment,
// first-name fallback, then the ratio threshold.
func scoreAgainst(clean string, idx rosterIndex, threshold float64) (Result, error) {
	for i, key := range idx.keys {
		if key == clean {
			return Result{Person: &idx.roster[i], Matched: idx.roster[i].FullName, Score: 1.0, Method: MethodExact}, nil
		}
	}

	tokenWords := strings.Fields(clean)
	bestShared, bestIdx := 0, -1
	var sharedWord string
	for i, words := range idx.words {
		shared := 0
		word := ""
		for _, tw := range tokenWords {
			for _, rw := range words {
				if tw == rw {
					shared++
					word = tw
					break
				}
			}
		}
		if shared > bestShared {
			bestShared, bestIdx, sharedWord = shared, i, word
		}
	}
	if bestShared >= 2 {
		return Result{Person: &idx.roster[bestIdx], Matched: idx.roster[bestIdx].FullName, Score: 0.95, Method: MethodWordOverlap}, nil
	}
	if bestShared == 1 {
		if idx.wordCount[sharedWord] == 1 {
			return Result{Person: &idx.roster[bestIdx], Matched: idx.roster[bestIdx].FullName, Score: 0.8, Method: MethodWordOverlap}, nil
		}
		// The shared word repeats across the roster. A unique reading as
		// somebody's given name still resolves it; anything else is
		// blocked rather than guessed.
		if i, ok := uniqueFirstName(clean, idx); ok {
			return Result{Person: &idx.roster[i], Matched: idx.roster[i].FullName, Score: 0.75, Method: MethodFirstName}, nil
		}
		return Result{}, util.ErrMatchConflict
	}

	containIdx, containN := -1, 0
	for i, key := range idx.keys {
		if strings.Contains(key, clean) || strings.Contains(clean, key) {
			containIdx = i
			containN++
		}
	}
	if containN == 1 {
		return Result{Person: &idx.roster[containIdx], Matched: idx.roster[containIdx].FullName, Score: 0.9, Method: MethodContained}, nil
	}
	if containN > 1 {
		return Result{}, util.ErrMatchConflict
	}

	bestScore, bestRatioIdx := 0.0, -1
	for i, key := range idx.keys {
		if s := Ratio(clean, key); s > bestScore {
			bestScore, bestRatioIdx = s, i
		}
	}
	if bestRatioIdx >= 0 && bestScore > threshold {
		return Result{Person: &idx.roster[bestRatioIdx], Matched: idx.roster[bestRatioIdx].FullName, Score: bestScore, Method: MethodRatio}, nil
	}
	return Result{}, nil
}

func uniqueFirstName(clean string, idx rosterIndex) (int, bool) {
	if strings.ContainsRune(clean, ' ') {
		return 0, false
	}
	found, n := -1, 0
	for i, words := range idx.words {
		if len(words) > 0 && words[0] == clean {
			found = i
			n++
		}
	}
	return found, n == 1
}

func cleanToken(s string) string {
	return strings.ToLower(hebrew.NormalizeKey(s))
}

// RoleMatch is the outcome of matching a role string against the known set.
type RoleMatch struct {
	Role        string
	Score       float64
	Method      string
	WasReversed bool
}

// Role matches an OCR role token against the canonical role list, trying the
// reversed reading too.
func (m *Matcher) Role(token string, roles []string) (RoleMatch, bool) {
	if m.Learned != nil {
		if accepted, wasReversed, ok := m.Learned(token, FieldRole); ok {
			return RoleMatch{Role: accepted, Score: 1.0, Method: MethodLearned, WasReversed: wasReversed}, true
		}
	}
	best, ok := roleOnce(cleanToken(token), roles, m.Thresholds.Role)
	if rev := cleanToken(hebrew.SmartReverse(token)); rev != cleanToken(token) {
		if r, rok := roleOnce(rev, roles, m.Thresholds.Role); rok && (!ok || r.Score > best.Score) {
			r.WasReversed = true
			return r, true
		}
	}
	return best, ok
}

func roleOnce(clean string, roles []string, threshold float64) (RoleMatch, bool) {
	if clean == "" {
		return RoleMatch{}, false
	}
	for _, r := range roles {
		key := cleanToken(r)
		if key == clean {
			return RoleMatch{Role: r, Score: 1.0, Method: MethodExact}, true
		}
		if strings.Contains(clean, key) || strings.Contains(key, clean) {
			return RoleMatch{Role: r, Score: 0.9, Method: MethodContained}, true
		}
	}
	best, bestScore := "", 0.0
	for _, r := range roles {
		if s := Ratio(clean, cleanToken(r)); s > bestScore {
			best, bestScore = r, s
		}
	}
	if bestScore > threshold {
		return RoleMatch{Role: best, Score: bestScore, Method: MethodRatio}, true
	}
	return RoleMatch{}, false
}
