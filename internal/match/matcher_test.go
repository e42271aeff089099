package match

import (
	"errors"
	"testing"

	"protoflow/internal/models"
	"protoflow/internal/util"
)

func roster(names ...string) []models.Person {
	out := make([]models.Person, len(names))
	for i, n := range names {
		out[i] = models.Person{PersonID: i + 1, FullName: n}
	}
	return out
}

func TestPersonExactWithHonorific(t *testing.T) {
	m := New()
	got, err := m.Person("גב' רחל כהן", roster("רחל כהן", "דוד לוי"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Person.FullName != "רחל כהן" {
		t.Fatalf("result = %+v", got)
	}
	if got.Method != MethodExact || got.Score != 1.0 || got.WasReversed {
		t.Fatalf("result = %+v", got)
	}
}

func TestPersonReversedToken(t *testing.T) {
	m := New()
	got, err := m.Person("ןהכ לחר", roster("רחל כהן", "דוד לוי"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Person.FullName != "רחל כהן" {
		t.Fatalf("result = %+v", got)
	}
	if !got.WasReversed {
		t.Fatalf("reversal not reported: %+v", got)
	}
}

func TestPersonSharedSurnameBlocked(t *testing.T) {
	m := New()
	_, err := m.Person("מימון", roster("חיים מימון", "הדר מימון"))
	if !errors.Is(err, util.ErrMatchConflict) {
		t.Fatalf("err = %v, want ErrMatchConflict", err)
	}
}

func TestPersonUniqueSingleWord(t *testing.T) {
	m := New()
	got, err := m.Person("חיים", roster("חיים מימון", "הדר מימון"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Person.FullName != "חיים מימון" {
		t.Fatalf("result = %+v", got)
	}
	if got.Method != MethodWordOverlap {
		t.Fatalf("method = %q", got.Method)
	}
}

func TestPersonSharedFirstNameBlocked(t *testing.T) {
	m := New()
	_, err := m.Person("רחל", roster("רחל כהן", "רחל לוי"))
	if !errors.Is(err, util.ErrMatchConflict) {
		t.Fatalf("err = %v, want ErrMatchConflict", err)
	}
}

func TestPersonSwappedWordOrder(t *testing.T) {
	m := New()
	got, err := m.Person("כהן רחל", roster("רחל כהן", "דוד לוי"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Method != MethodWordOverlap || got.Score != 0.95 {
		t.Fatalf("result = %+v", got)
	}
}

func TestPersonFragmentContainment(t *testing.T) {
	m := New()
	got, err := m.Person("וסי", roster("יוסי לוי", "דוד כהן"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Person.FullName != "יוסי לוי" || got.Method != MethodContained {
		t.Fatalf("result = %+v", got)
	}

	_, err = m.Person("וסי", roster("יוסי לוי", "יוסי כהן"))
	if !errors.Is(err, util.ErrMatchConflict) {
		t.Fatalf("ambiguous fragment: err = %v, want ErrMatchConflict", err)
	}
}

func TestPersonRatioThresholds(t *testing.T) {
	m := New()
	people := roster("שרה לוי", "דן כץ")

	got, err := m.Person("שרהל וין", people)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person == nil || got.Method != MethodRatio {
		t.Fatalf("result = %+v", got)
	}

	// The same reading is not enough for the stricter staff bar.
	got, err = m.StaffPerson("שרהל וין", people)
	if err != nil {
		t.Fatalf("staff match: %v", err)
	}
	if got.Person != nil {
		t.Fatalf("staff matched below its threshold: %+v", got)
	}
}

func TestPersonNoMatch(t *testing.T) {
	m := New()
	got, err := m.Person("אבי גל", roster("רחל כהן"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Person != nil {
		t.Fatalf("unexpected match: %+v", got)
	}
}

func TestPersonLearnedShortCircuit(t *testing.T) {
	m := New()
	m.Learned = func(text, fieldKind string) (string, bool, bool) {
		if fieldKind != FieldPersonName {
			t.Fatalf("field kind = %q", fieldKind)
		}
		return "רחל כהן", true, true
	}
	got, err := m.Person("טקסט שאיננו שם", roster("רחל כהן"))
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if got.Method != MethodLearned || got.Score != 1.0 || !got.WasReversed {
		t.Fatalf("result = %+v", got)
	}
	if got.Person == nil || got.Person.FullName != "רחל כהן" {
		t.Fatalf("learned hit not resolved onto roster: %+v", got)
	}
}

func TestRoleMatching(t *testing.T) {
	roles := []string{"גזבר", "מנכ\"ל", "יועץ משפטי"}
	m := New()

	got, ok := m.Role("גזבר", roles)
	if !ok || got.Method != MethodExact {
		t.Fatalf("exact role = %+v ok=%v", got, ok)
	}

	got, ok = m.Role("גזבר העירייה", roles)
	if !ok || got.Role != "גזבר" || got.Method != MethodContained {
		t.Fatalf("contained role = %+v ok=%v", got, ok)
	}

	got, ok = m.Role("רבזג", roles)
	if !ok || got.Role != "גזבר" || !got.WasReversed {
		t.Fatalf("reversed role = %+v ok=%v", got, ok)
	}

	if _, ok = m.Role("נהג", roles); ok {
		t.Fatalf("unknown role matched")
	}
}
