package extract

import "testing"

func TestStaffSection(t *testing.T) {
	text := "סגל: \n" +
		"יוסי לוי - גזבר העירייה\n" +
		"גב' רחל כהן - מנכ\"לית\n" +
		"דוד ישראלי, מהנדס העיר\n" +
		"על סדר היום:\n1. אישור תב\"ר"
	got := Staff(text)
	if len(got) != 3 {
		t.Fatalf("staff = %+v, want 3 entries", got)
	}
	if got[0].Name != "יוסי לוי" || got[0].MatchedRole != "גזבר" {
		t.Fatalf("first entry = %+v", got[0])
	}
	if got[1].Name != "רחל כהן" {
		t.Fatalf("honorific not stripped: %+v", got[1])
	}
	if got[1].MatchedRole != "מנכ\"ל" {
		t.Fatalf("feminine form should map onto the canonical role: %+v", got[1])
	}
	if got[2].Name != "דוד ישראלי" || got[2].MatchedRole != "מהנדס העיר" {
		t.Fatalf("comma-separated entry = %+v", got[2])
	}
}

func TestStaffRoleOnLeft(t *testing.T) {
	got := Staff("סגל: \nמזכירת העירייה - דנה לוי\nעל סדר היום")
	if len(got) != 1 {
		t.Fatalf("staff = %+v, want 1 entry", got)
	}
	if got[0].Name != "דנה לוי" || got[0].Role != "מזכירת העירייה" {
		t.Fatalf("entry = %+v", got[0])
	}
}

func TestStaffUnmatchedRole(t *testing.T) {
	got := Staff("סגל: \nעו\"ד מיכל ברק - יועצת משפטית\nעל סדר היום")
	if len(got) != 1 {
		t.Fatalf("staff = %+v, want 1 entry", got)
	}
	if got[0].Name != "מיכל ברק" {
		t.Fatalf("honorific not stripped: %+v", got[0])
	}
	if got[0].MatchedRole != "" {
		t.Fatalf("role %q should not map onto a known role", got[0].Role)
	}
}

func TestStaffFallsBackToAttendance(t *testing.T) {
	text := "נוכחים: \n" +
		"מר אבי כהן - מנכ\"ל העירייה\n" +
		"רחל גבאי - חברת מועצה\n" +
		"על סדר היום"
	got := Staff(text)
	if len(got) != 1 {
		t.Fatalf("staff = %+v, want the staff line only", got)
	}
	if got[0].Name != "אבי כהן" {
		t.Fatalf("entry = %+v", got[0])
	}
}

func TestStaffSkipsAmbiguousLines(t *testing.T) {
	text := "סגל: \n" +
		"גזבר - מנכ\"ל\n" + // both sides read as roles
		"מר - גזבר\n" + // name collapses under the honorific
		"על סדר היום"
	if got := Staff(text); len(got) != 0 {
		t.Fatalf("staff = %+v, want none", got)
	}
}

func TestStaffNoSection(t *testing.T) {
	if got := Staff("טקסט חופשי בלי כותרות"); got != nil {
		t.Fatalf("staff = %+v, want nil", got)
	}
	if got := Staff(""); got != nil {
		t.Fatalf("staff on empty = %+v", got)
	}
}
