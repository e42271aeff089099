package extract

import (
	"errors"
	"testing"

	"protoflow/internal/util"
)

func TestDecisionSpecificStatusBeatsBareApproved(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"החלטה: ההצעה אושרה פה אחד", "אושר פה אחד"},
		{"הנושא נדחה לישיבה הבאה", "נדחה לדיון נוסף"},
		{"הסעיף הופנה לוועדה להמשך טיפול", "הופנה לוועדה"},
		{"הנושא ירד מסדר היום", "ירד מסדר היום"},
		{"ההצעה לא אושרה", "לא אושר"},
		{"הובא לידיעה בלבד", "דיווח ועדכון"},
		{"התב\"ר אושר ברוב קולות", "אושר"},
		{"מועצת העיר מאשרת את ההסכם", "אושר"},
	}
	for _, c := range cases {
		f, err := Decision(c.text)
		if err != nil {
			t.Fatalf("Decision(%q): %v", c.text, err)
		}
		if f.Value.Status != c.want {
			t.Fatalf("Decision(%q) status = %q, want %q", c.text, f.Value.Status, c.want)
		}
		if f.Method != MethodPattern {
			t.Fatalf("Decision(%q) method = %q", c.text, f.Method)
		}
	}
}

func TestDecisionQuotedText(t *testing.T) {
	text := "סעיף 3: אישור תב\"ר 456\n" +
		"החלטה: מועצת העיר מאשרת את התב\"ר בסך 250,000 ש\"ח.\n\n" +
		"סעיף 4: דוח רבעוני"
	f, err := Decision(text)
	if err != nil {
		t.Fatalf("Decision: %v", err)
	}
	if f.Value.Status != "אושר" {
		t.Fatalf("status = %q", f.Value.Status)
	}
	if f.Value.Text != "מועצת העיר מאשרת את התב\"ר בסך 250,000 ש\"ח." {
		t.Fatalf("quoted text = %q", f.Value.Text)
	}
	if f.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8 with quoted text", f.Confidence)
	}
}

func TestDecisionNoWordingConfidence(t *testing.T) {
	f, err := Decision("הנושא התקבל")
	if err != nil {
		t.Fatalf("Decision: %v", err)
	}
	if f.Value.Text != "" {
		t.Fatalf("text = %q, want empty", f.Value.Text)
	}
	if f.Confidence != 0.7 {
		t.Fatalf("confidence = %v, want 0.7 without quoted text", f.Confidence)
	}
}

func TestDecisionNone(t *testing.T) {
	if _, err := Decision(""); !errors.Is(err, util.ErrNoCandidate) {
		t.Fatalf("empty text err = %v", err)
	}
	if _, err := Decision("דיון כללי על מצב העיר"); !errors.Is(err, util.ErrNoCandidate) {
		t.Fatalf("no decision wording err = %v", err)
	}
}

func TestInferDecision(t *testing.T) {
	f, ok := InferDecision(true, true)
	if !ok || f.Value.Status != "ירד מסדר היום" {
		t.Fatalf("agenda-only infer = %+v ok=%v", f.Value, ok)
	}
	f, ok = InferDecision(false, false)
	if !ok || f.Value.Status != "דיווח ועדכון" {
		t.Fatalf("no-vote infer = %+v ok=%v", f.Value, ok)
	}
	if f.Method != MethodInferred {
		t.Fatalf("method = %q", f.Method)
	}
	if _, ok = InferDecision(false, true); ok {
		t.Fatalf("voted item should not get an inferred status")
	}
}
