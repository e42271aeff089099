package hebrew

import "testing"

func TestNormalizeFinalLetters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// Word-final regular forms take their final variant.
		{"שלומ רב", "שלום רב"},
		// Final forms may not stand mid-word.
		{"םולש", "מולש"},
		{"רחל כהן", "רחל כהן"},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeFinalLetters(c.in); got != c.want {
			t.Fatalf("NormalizeFinalLetters(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSmartReverse(t *testing.T) {
	if got := SmartReverse("ןהכ לחר"); got != "רחל כהן" {
		t.Fatalf("SmartReverse = %q, want רחל כהן", got)
	}
	// A mid-word final in the source lands mid-word after reversal and is
	// repaired to its regular form.
	if got := SmartReverse("תביםה"); got != "המיבת" {
		t.Fatalf("SmartReverse = %q, want המיבת", got)
	}
}

func TestWords(t *testing.T) {
	got := Words("ישיבה מס' 14 - שלא מן המניין")
	want := []string{"ישיבה", "מס", "שלא", "מן", "המניין"}
	if len(got) != len(want) {
		t.Fatalf("Words = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Words[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
