package hebrew

import (
	"strings"
	"testing"
)

func TestCleanOCRText(t *testing.T) {
	in := "--- Page 1 ---\nפרוטוקול ישיבה | מס' 14\n\n\n\nסדר  היום:\n--- Page 2 ---\nאישור תקציב"
	out := CleanOCRText(in)
	if strings.Contains(out, "Page") {
		t.Fatalf("page marker survived: %q", out)
	}
	if strings.Contains(out, "|") {
		t.Fatalf("pipe noise survived: %q", out)
	}
	if strings.Contains(out, "\n\n\n") {
		t.Fatalf("blank run survived: %q", out)
	}
	if strings.Contains(out, "  ") {
		t.Fatalf("space run survived: %q", out)
	}
	if !strings.Contains(out, "פרוטוקול ישיבה מס' 14") {
		t.Fatalf("content lost: %q", out)
	}
}
