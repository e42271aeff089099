package extract

import "testing"

const normalProtocol = "פרוטוקול ישיבת מועצה מס' 14\n" +
	"נוכחים: אבי כהן, רחל לוי\n" +
	"נעדרים: דוד ברק\n" +
	"סגל: יוסי גל - גזבר\n" +
	"על סדר היום:\n1. אישור תב\"ר\n" +
	"סעיף 1: אישור תב\"ר 250"

func TestDetectDirectionNormal(t *testing.T) {
	reversed, conf := DetectDirection(normalProtocol)
	if reversed {
		t.Fatalf("normal protocol read as reversed")
	}
	if conf != 1 {
		t.Fatalf("confidence = %v, want 1", conf)
	}
}

func TestDetectDirectionReversed(t *testing.T) {
	text := "41 'סמ הבישי לוקוטורפ\nיול השמ ,ןהכ יבא :םיחכונ\n1 סמ ףיעס"
	reversed, conf := DetectDirection(text)
	if !reversed {
		t.Fatalf("reversed protocol read as normal")
	}
	if conf <= 0 {
		t.Fatalf("confidence = %v, want > 0", conf)
	}
}

func TestDetectDirectionNoSignal(t *testing.T) {
	if reversed, conf := DetectDirection("שלום עולם"); reversed || conf != 0 {
		t.Fatalf("direction on anchorless text = %v conf %v", reversed, conf)
	}
}

func TestDetectSections(t *testing.T) {
	got := DetectSections(normalProtocol)
	if got.Reversed {
		t.Fatalf("sections read as reversed")
	}
	if len(got.BySection) != 6 {
		t.Fatalf("detected %d sections, want 6: %+v", len(got.BySection), got.BySection)
	}

	header, ok := got.Get(SectionHeader)
	if !ok || header.Start != 0 {
		t.Fatalf("header = %+v ok=%v", header, ok)
	}
	if header.Confidence != 1.0 {
		t.Fatalf("header confidence = %v, want 1.0", header.Confidence)
	}

	// Sections tile the document without gaps.
	order := []Section{SectionHeader, SectionAttendees, SectionAbsent, SectionStaff, SectionAgenda, SectionDiscussions}
	for i := 0; i < len(order)-1; i++ {
		cur, _ := got.Get(order[i])
		next, _ := got.Get(order[i+1])
		if cur.End != next.Start {
			t.Fatalf("%s ends at %d but %s starts at %d", order[i], cur.End, order[i+1], next.Start)
		}
	}
	last, _ := got.Get(SectionDiscussions)
	if last.End != len(normalProtocol) {
		t.Fatalf("last section ends at %d, want %d", last.End, len(normalProtocol))
	}
}

func TestDetectSectionsReversed(t *testing.T) {
	text := "41 'סמ הבישי לוקוטורפ\nיול השמ ,ןהכ יבא :םיחכונ\nםויה רדס\n1 סמ ףיעס"
	got := DetectSections(text)
	if !got.Reversed {
		t.Fatalf("reversed protocol not flagged")
	}
	for _, s := range []Section{SectionHeader, SectionAttendees, SectionAgenda, SectionDiscussions} {
		info, ok := got.Get(s)
		if !ok {
			t.Fatalf("section %s missing: %+v", s, got.BySection)
		}
		if !info.Reversed {
			t.Fatalf("section %s not marked reversed", s)
		}
	}
}

func TestDetectSectionsEmpty(t *testing.T) {
	got := DetectSections("   ")
	if len(got.BySection) != 0 || got.Confidence != 0 {
		t.Fatalf("sections on blank text = %+v", got)
	}
}

func TestDetectSectionsNoAnchors(t *testing.T) {
	got := DetectSections("שיחה כללית על מזג האוויר")
	if len(got.BySection) != 0 {
		t.Fatalf("sections = %+v, want none", got.BySection)
	}
}
