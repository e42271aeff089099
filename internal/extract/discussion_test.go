package extract

import "testing"

func TestItemsSlicing(t *testing.T) {
	text := "סעיף 1: אישור תב\"ר 1234 לשיפוץ בית ספר\n" +
		"החלטה: אושר פה אחד\n" +
		"סעיף 2: הצעת חוק עזר לשמירת הניקיון\n" +
		"הצבעה: בעד 5, נגד 2"
	got := Items(text)
	if len(got) != 2 {
		t.Fatalf("items = %d, want 2", len(got))
	}
	if got[0].IssueNo != "1" || got[1].IssueNo != "2" {
		t.Fatalf("issue numbers = %q, %q", got[0].IssueNo, got[1].IssueNo)
	}
	if got[0].Title != "אישור תב\"ר 1234 לשיפוץ בית ספר" {
		t.Fatalf("title = %q", got[0].Title)
	}
	if got[1].Title != "הצעת חוק עזר לשמירת הניקיון" {
		t.Fatalf("title = %q", got[1].Title)
	}
	if got[0].End != got[1].Start {
		t.Fatalf("item boundary gap: %d vs %d", got[0].End, got[1].Start)
	}
	if got[0].OutOfAgenda || got[1].OutOfAgenda {
		t.Fatalf("regular items marked out of agenda")
	}
}

func TestItemTitleOnNextLine(t *testing.T) {
	got := Items("סעיף 3\nאישור תקציב החינוך לשנת 2023\nדיון ממושך בנושא")
	if len(got) != 1 {
		t.Fatalf("items = %d, want 1", len(got))
	}
	if got[0].Title != "אישור תקציב החינוך לשנת 2023" {
		t.Fatalf("title = %q", got[0].Title)
	}
}

func TestItemTitleSkipsDecisionLines(t *testing.T) {
	got := Items("סעיף 6\nהחלטה: אושר\nהצעת התייעלות אנרגטית במבני ציבור")
	if len(got) != 1 {
		t.Fatalf("items = %d, want 1", len(got))
	}
	if got[0].Title != "הצעת התייעלות אנרגטית במבני ציבור" {
		t.Fatalf("title = %q", got[0].Title)
	}
}

func TestItemsInTextReferenceNotSplit(t *testing.T) {
	got := Items("סעיף 4: ראו סעיף 2 לעיל בנושא התקציב השנתי")
	if len(got) != 1 {
		t.Fatalf("items = %+v, want a single item", got)
	}
	if got[0].IssueNo != "4" {
		t.Fatalf("issue number = %q, want 4", got[0].IssueNo)
	}
}

func TestItemsStarredOutOfAgenda(t *testing.T) {
	got := Items("*5 הצעה דחופה מחוץ לסדר היום בנושא תאורת רחוב")
	if len(got) != 1 {
		t.Fatalf("items = %d, want 1", len(got))
	}
	if !got[0].OutOfAgenda {
		t.Fatalf("starred item not marked out of agenda")
	}
	if got[0].Title != "הצעה דחופה מחוץ לסדר היום בנושא תאורת רחוב" {
		t.Fatalf("title = %q", got[0].Title)
	}
}

func TestItemsSequenceRepair(t *testing.T) {
	pad := "דיון ארוך מאוד בנושא עם פירוט רב ונימוקים לכאן ולכאן\n"
	text := "סעיף 1: נושא ראשון לדיון\n" + pad +
		"סעיף 12: נושא שני לדיון\n" + pad +
		"סעיף 3: נושא שלישי לדיון\n" + pad
	got := Items(text)
	if len(got) != 3 {
		t.Fatalf("items = %d, want 3", len(got))
	}
	if got[1].IssueNo != "2" || !got[1].Repaired {
		t.Fatalf("misread number not repaired: %+v", got[1])
	}
	if got[0].Repaired || got[2].Repaired {
		t.Fatalf("neighbors wrongly marked repaired")
	}
}

func TestItemsNone(t *testing.T) {
	if got := Items(""); got != nil {
		t.Fatalf("items on empty = %+v", got)
	}
	if got := Items("טקסט חופשי ללא סעיפים ממוספרים"); got != nil {
		t.Fatalf("items on unmarked text = %+v", got)
	}
}
