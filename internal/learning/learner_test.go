package learning

import (
	"context"
	"errors"
	"testing"

	"protoflow/internal/hebrew"
	"protoflow/internal/models"
)

type memStore struct {
	rows      []models.Correction
	appendErr error
}

func (m *memStore) Append(_ context.Context, c models.Correction) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.rows = append(m.rows, c)
	return nil
}

func (m *memStore) ListAll(_ context.Context) ([]models.Correction, error) {
	return append([]models.Correction(nil), m.rows...), nil
}

func TestRecordThenLookupReturnsAccepted(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	if err := l.Record(ctx, "ןהכ לחר", "person_name", "רחל כהן", true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	m, ok := l.Lookup("ןהכ לחר", "person_name")
	if !ok {
		t.Fatal("Lookup miss after Record")
	}
	if m.Accepted != "רחל כהן" {
		t.Errorf("Accepted = %q, want רחל כהן", m.Accepted)
	}
	if !m.WasReversed {
		t.Error("WasReversed = false, want recorded flag true")
	}
	if m.Count != 1 {
		t.Errorf("Count = %d, want 1", m.Count)
	}
	if m.Confidence < 0.33 || m.Confidence > 0.34 {
		t.Errorf("Confidence = %v, want one third", m.Confidence)
	}
}

func TestLookupProbesReversedKey(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	if err := l.Record(ctx, "אבי כהן", "person_name", "אבי הכהן", false); err != nil {
		t.Fatalf("Record: %v", err)
	}

	m, ok := l.Lookup("אבי כהן", "person_name")
	if !ok {
		t.Fatal("straight lookup miss")
	}
	if m.WasReversed {
		t.Error("straight hit reported WasReversed")
	}

	// The same correction answers for the back-to-front reading too.
	m, ok = l.Lookup("ןהכ יבא", "person_name")
	if !ok {
		t.Fatal("reversed-probe lookup miss")
	}
	if m.Accepted != "אבי הכהן" {
		t.Errorf("Accepted = %q, want אבי הכהן", m.Accepted)
	}
	if !m.WasReversed {
		t.Error("reversed-probe hit did not report WasReversed")
	}
}

func TestRecordIdenticalValueSkipped(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	l := New(store)

	// Honorific aside, the confirmed value equals the reading; nothing to learn.
	if err := l.Record(ctx, "מר יוסי לוי", "person_name", "יוסי לוי", false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatalf("store has %d rows, want 0", len(store.rows))
	}
	if _, ok := l.Lookup("יוסי לוי", "person_name"); ok {
		t.Error("Lookup hit for an identity confirmation")
	}

	if err := l.Record(ctx, "   ", "person_name", "יוסי לוי", false); err != nil {
		t.Fatalf("Record blank original: %v", err)
	}
	if len(store.rows) != 0 {
		t.Fatalf("blank original reached the store")
	}
}

func TestNewestMappingWins(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	if err := l.Record(ctx, "דוד לוי", "person_name", "דוד הלוי", false); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(ctx, "דוד לוי", "person_name", "דויד לוי", false); err != nil {
		t.Fatalf("Record: %v", err)
	}

	m, ok := l.Lookup("דוד לוי", "person_name")
	if !ok {
		t.Fatal("Lookup miss")
	}
	if m.Accepted != "דויד לוי" {
		t.Errorf("Accepted = %q, want newest value דויד לוי", m.Accepted)
	}
	if m.Count != 1 {
		t.Errorf("Count = %d, want 1 for the newest value", m.Count)
	}
}

func TestConfidenceSaturatesAtThree(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	for i := 0; i < 3; i++ {
		if err := l.Record(ctx, "השמ ןב", "person_name", "בן משה", true); err != nil {
			t.Fatalf("Record #%d: %v", i+1, err)
		}
	}

	m, ok := l.Lookup("השמ ןב", "person_name")
	if !ok {
		t.Fatal("Lookup miss")
	}
	if m.Count != 3 {
		t.Errorf("Count = %d, want 3", m.Count)
	}
	if m.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0", m.Confidence)
	}

	if err := l.Record(ctx, "השמ ןב", "person_name", "בן משה", true); err != nil {
		t.Fatalf("Record #4: %v", err)
	}
	m, _ = l.Lookup("השמ ןב", "person_name")
	if m.Count != 4 || m.Confidence != 1.0 {
		t.Errorf("after fourth record Count = %d Confidence = %v, want 4 and 1.0", m.Count, m.Confidence)
	}
}

func TestFieldKindsAreIsolated(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	if err := l.Record(ctx, "רבזג", "role", "גזבר", true); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, ok := l.Lookup("רבזג", "person_name"); ok {
		t.Error("role correction answered a person_name lookup")
	}
	if _, ok := l.Lookup("רבזג", "role"); !ok {
		t.Error("role lookup missed its own correction")
	}
}

func TestLoadReplaysStore(t *testing.T) {
	ctx := context.Background()
	store := &memStore{rows: []models.Correction{
		{OriginalText: "ןהכ לחר", NormalizedKey: "ןהכ לחר", AcceptedValue: "רחל כהן", FieldKind: "person_name", WasReversed: true},
		{OriginalText: "רבזג", NormalizedKey: "רבזג", AcceptedValue: "גזבר", FieldKind: "role", WasReversed: true},
	}}

	l := New(store)
	if _, ok := l.Lookup("ןהכ לחר", "person_name"); ok {
		t.Fatal("Lookup hit before Load")
	}
	if err := l.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}

	m, ok := l.Lookup("ןהכ לחר", "person_name")
	if !ok || m.Accepted != "רחל כהן" {
		t.Errorf("person lookup after Load = %+v ok=%v", m, ok)
	}
	if _, ok := l.Lookup("רבזג", "role"); !ok {
		t.Error("role lookup miss after Load")
	}

	// Reload replaces the index instead of double counting.
	if err := l.Load(ctx); err != nil {
		t.Fatalf("second Load: %v", err)
	}
	m, _ = l.Lookup("ןהכ לחר", "person_name")
	if m.Count != 1 {
		t.Errorf("Count after reload = %d, want 1", m.Count)
	}
}

func TestMinedReversalPatterns(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	// Twice-confirmed straight reversal: mined.
	for i := 0; i < 2; i++ {
		if err := l.Record(ctx, "דקש הנפד", "person_name", "דפנה שקד", true); err != nil {
			t.Fatalf("Record reversal: %v", err)
		}
	}
	// Twice-confirmed but not a reversal: spelling fix only.
	for i := 0; i < 2; i++ {
		if err := l.Record(ctx, "אבי כהן", "person_name", "אבי הכהן", false); err != nil {
			t.Fatalf("Record spelling: %v", err)
		}
	}
	// Reversal seen once: below the mining floor.
	if err := l.Record(ctx, "השמ ןב", "person_name", "בן משה", true); err != nil {
		t.Fatalf("Record single: %v", err)
	}

	got := l.MinedReversalPatterns()
	if len(got) != 1 || got[0] != "דקש הנפד" {
		t.Fatalf("MinedReversalPatterns = %q, want [דקש הנפד]", got)
	}

	lex := hebrew.NewLexicon()
	if lex.ContainsAny("דקש הנפד") {
		t.Fatal("token already in the seeded lexicon, test value needs changing")
	}
	if n := l.SeedLexicon(lex); n != 1 {
		t.Errorf("SeedLexicon = %d, want 1", n)
	}
	if !lex.ContainsAny("דקש הנפד") {
		t.Error("lexicon misses the mined token")
	}
}

func TestReport(t *testing.T) {
	ctx := context.Background()
	l := New(&memStore{})

	for i := 0; i < 2; i++ {
		if err := l.Record(ctx, "ןהכ לחר", "person_name", "רחל כהן", true); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := l.Record(ctx, "רבזג", "role", "גזבר", true); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rep := l.Report()
	if rep.TotalCorrections != 3 {
		t.Errorf("TotalCorrections = %d, want 3", rep.TotalCorrections)
	}
	if rep.KnownKeys != 2 {
		t.Errorf("KnownKeys = %d, want 2", rep.KnownKeys)
	}
	if rep.ByFieldKind["person_name"] != 2 || rep.ByFieldKind["role"] != 1 {
		t.Errorf("ByFieldKind = %v", rep.ByFieldKind)
	}
	if len(rep.TopCorrected) != 2 {
		t.Fatalf("TopCorrected has %d entries, want 2", len(rep.TopCorrected))
	}
	if rep.TopCorrected[0].NormalizedKey != "ןהכ לחר" || rep.TopCorrected[0].Count != 2 {
		t.Errorf("TopCorrected[0] = %+v", rep.TopCorrected[0])
	}
	if rep.TopCorrected[1].NormalizedKey != "רבזג" {
		t.Errorf("TopCorrected[1] = %+v", rep.TopCorrected[1])
	}
}

func TestRecordStoreErrorPropagates(t *testing.T) {
	ctx := context.Background()
	wantErr := errors.New("connection reset")
	l := New(&memStore{appendErr: wantErr})

	if err := l.Record(ctx, "ןהכ לחר", "person_name", "רחל כהן", true); !errors.Is(err, wantErr) {
		t.Fatalf("Record error = %v, want %v", err, wantErr)
	}
	if _, ok := l.Lookup("ןהכ לחר", "person_name"); ok {
		t.Error("index updated although the store rejected the row")
	}
}
