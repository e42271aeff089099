package extract

import (
	"errors"
	"testing"

	"protoflow/internal/util"
)

func TestVoteLabeledCounts(t *testing.T) {
	cands, err := RunChain("הצבעה: בעד: 7, נגד: 2, נמנע: 1", voteStrategies())
	if err != nil {
		t.Fatalf("RunChain: %v", err)
	}
	got := cands[0]
	want := VoteResult{Type: VoteCounted, Yes: 7, No: 2, Abstain: 1}
	if got.Value != want {
		t.Fatalf("counts = %+v, want %+v", got.Value, want)
	}
	if got.Confidence < 0.9 {
		t.Fatalf("labeled counts confidence = %v, want >= 0.9", got.Confidence)
	}
	if got.Method != MethodPattern {
		t.Fatalf("method = %q", got.Method)
	}
}

func TestVoteUnanimousDirect(t *testing.T) {
	for _, text := range []string{
		"הצבעה: פה אחד",
		"ההצעה אושרה פה אחד",
		"דחא הפ :העבצה",
		"אושר ללא מתנגדים",
	} {
		cands, err := RunChain(text, voteStrategies())
		if err != nil {
			t.Fatalf("RunChain(%q): %v", text, err)
		}
		if cands[0].Value.Type != VoteUnanimous {
			t.Fatalf("%q type = %v, want unanimous", text, cands[0].Value.Type)
		}
		if cands[0].Confidence < 0.9 {
			t.Fatalf("%q confidence = %v", text, cands[0].Confidence)
		}
	}
}

func TestVoteMajorityPhrase(t *testing.T) {
	cands, err := RunChain("ההצעה התקבלה ברוב קולות", voteStrategies())
	if err != nil {
		t.Fatalf("RunChain: %v", err)
	}
	if cands[0].Value.Type != VoteMajority {
		t.Fatalf("type = %v, want majority", cands[0].Value.Type)
	}
}

func TestVoteNamedLists(t *testing.T) {
	text := "בעד: רחל כהן, דוד לוי\nנגד: יוסי מזרחי"
	cands, err := RunChain(text, voteStrategies())
	if err != nil {
		t.Fatalf("RunChain: %v", err)
	}
	v := cands[0].Value
	if v.Yes != 2 || v.No != 1 || v.Abstain != 0 {
		t.Fatalf("counts = %+v", v)
	}
}

func TestVoteBareUnanimousNeedsContext(t *testing.T) {
	if _, err := RunChain("פה אחד", voteStrategies()); !errors.Is(err, util.ErrNoCandidate) {
		t.Fatalf("bare phrase without vote context must not match, got %v", err)
	}
	cands, err := RunChain("לאחר הצבעה התקבל פה אחד", voteStrategies())
	if err != nil {
		t.Fatalf("RunChain: %v", err)
	}
	if cands[0].Value.Type != VoteUnanimous || cands[0].Confidence > 0.7 {
		t.Fatalf("unexpected candidate: %+v", cands[0])
	}
}

func TestInferVoteType(t *testing.T) {
	cases := []struct {
		v    VoteResult
		want VoteType
	}{
		{VoteResult{Yes: 5}, VoteUnanimous},
		{VoteResult{Yes: 5, No: 3, Abstain: 1}, VoteMajority},
		{VoteResult{Yes: 2, No: 5}, VoteRejected},
		{VoteResult{}, VoteUnknown},
	}
	for _, c := range cases {
		if got := InferVoteType(c.v); got != c.want {
			t.Fatalf("InferVoteType(%+v) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestGroupedVotes(t *testing.T) {
	text := "סעיפים 3-5 אושרו פה אחד\nסעיף 6: דיון נפרד"
	groups := GroupedVotes(text)
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}
	g := groups[0]
	if g.From != 3 || g.To != 5 {
		t.Fatalf("range = %d-%d", g.From, g.To)
	}
	if g.Result.Value.Type != VoteUnanimous {
		t.Fatalf("grouped type = %v", g.Result.Value.Type)
	}
}
