package providers

import "testing"

func TestCleanAnswerExtractsFencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"type\": \"unanimous\", \"yes\": 0, \"no\": 0, \"abstain\": 0}\n```\n"
	got, isJSON := cleanAnswer(raw)
	if !isJSON {
		t.Fatalf("expected JSON answer, got %q", got)
	}
	if got != `{"type": "unanimous", "yes": 0, "no": 0, "abstain": 0}` {
		t.Fatalf("unexpected payload: %q", got)
	}
}

func TestCleanAnswerIgnoresBrokenJSON(t *testing.T) {
	got, isJSON := cleanAnswer("{oops not json}\nאושר")
	if isJSON {
		t.Fatalf("broken JSON must not count: %q", got)
	}
	if got != "{oops not json}" {
		t.Fatalf("expected first line fallback, got %q", got)
	}
}

func TestCleanAnswerBareLine(t *testing.T) {
	got, isJSON := cleanAnswer("\n  \"15/03/2023\". \n")
	if isJSON {
		t.Fatalf("date is not JSON")
	}
	if got != "15/03/2023" {
		t.Fatalf("expected trimmed date, got %q", got)
	}
}

func TestCleanAnswerEmpty(t *testing.T) {
	if got, _ := cleanAnswer("```\n```"); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}
