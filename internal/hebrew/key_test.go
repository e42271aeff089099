package hebrew

import "testing"

func TestStripHonorifics(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"מר דוד לוי", "דוד לוי"},
		{"גב' רחל כהן", "רחל כהן"},
		{"עו\"ד יוסי מזרחי", "יוסי מזרחי"},
		{"ד\"ר שרה פרץ", "שרה פרץ"},
		{"רו\"ח אבי כץ", "אבי כץ"},
		// Stacked titles strip one after the other.
		{"מר עו\"ד דוד לוי", "דוד לוי"},
		// Names that merely begin with title letters stay whole.
		{"תמר כהן", "תמר כהן"},
		{"מרדכי גולן", "מרדכי גולן"},
		{"גבריאל סעד", "גבריאל סעד"},
	}
	for _, c := range cases {
		if got := StripHonorifics(c.in); got != c.want {
			t.Fatalf("StripHonorifics(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"מר  דוד   לוי", "דוד לוי"},
		{"ד\"ר יוסי כ״ץ", "יוסי כץ"},
		{"  רחל כהן  ", "רחל כהן"},
		{"גב' מיכל בן־דוד", "מיכל בן־דוד"},
	}
	for _, c := range cases {
		if got := NormalizeKey(c.in); got != c.want {
			t.Fatalf("NormalizeKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if NormalizeKey("מר דוד לוי") != NormalizeKey("דוד  לוי") {
		t.Fatalf("same person must normalize to the same key")
	}
}
