package hebrew

import "testing"

func TestFixReversedNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"אישור תב\"ר בסך 000,052 ש\"ח", "אישור תב\"ר בסך 250,000 ש\"ח"},
		{"000,001", "100,000"},
		{"00,5", "500"},
		{"תקציב של 000,23 לשנה", "תקציב של 32,000 לשנה"},
		// Correctly grouped numbers pass through untouched.
		{"250,000", "250,000"},
		{"סך של 1,500,000 ש\"ח", "סך של 1,500,000 ש\"ח"},
		// All zeros is not a reversal, leave it alone.
		{"0,000", "0,000"},
		{"", ""},
	}
	for _, c := range cases {
		got, _ := FixReversedNumbers(c.in)
		if got != c.want {
			t.Fatalf("FixReversedNumbers(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFixReversedNumbersIdempotent(t *testing.T) {
	once, fixes := FixReversedNumbers("סך 000,052 ועוד 000,08")
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}
	twice, again := FixReversedNumbers(once)
	if twice != once {
		t.Fatalf("second pass changed text: %q -> %q", once, twice)
	}
	if len(again) != 0 {
		t.Fatalf("second pass reported %d fixes on corrected text", len(again))
	}
}

func TestFixReversedNumbersMarks(t *testing.T) {
	out, fixes := FixReversedNumbers("בסך 000,052 ש\"ח")
	if len(fixes) != 1 {
		t.Fatalf("expected 1 fix, got %d", len(fixes))
	}
	f := fixes[0]
	if f.Original != "000,052" || f.Fixed != "250,000" || f.Kind != FixDigits {
		t.Fatalf("unexpected fix: %+v", f)
	}
	if out[f.Start:f.Start+len(f.Fixed)] != f.Fixed {
		t.Fatalf("fix offset does not point at corrected value in %q", out)
	}
}

func TestFixReversedRoadNumbers(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"הרחבת כביש 04 בתחום העיר", "הרחבת כביש 40 בתחום העיר"},
		{"עבודות בדרך מס' 64", "עבודות בדרך מס' 46"},
		{"כביש 06 וכביש 56", "כביש 60 וכביש 65"},
		// Not in the known swap set, or not two digits.
		{"כביש 44", "כביש 44"},
		{"כביש 431", "כביש 431"},
		{"חדר 04", "חדר 04"},
	}
	for _, c := range cases {
		got, _ := FixReversedRoadNumbers(c.in)
		if got != c.want {
			t.Fatalf("FixReversedRoadNumbers(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
