package match

import (
	"testing"

	"protoflow/internal/models"
)

func TestDiscussions(t *testing.T) {
	db := []models.Discussion{
		{DiscussionID: 10, IssueNo: "1", Title: "אישור תב\"ר לשיפוץ בית הספר"},
		{DiscussionID: 11, IssueNo: "2", Title: "חוק עזר לשמירת הניקיון"},
	}
	refs := []DiscussionRef{
		{IssueNo: "1", Title: "אישור תב\"ר לשיפוץ בית ספר"},
		{IssueNo: "2", Title: "הצעת חוק עזר לשמירת הניקיון"},
	}

	m := New()
	got := m.Discussions(refs, db)
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].DB == nil || got[0].DB.DiscussionID != 10 {
		t.Fatalf("first match = %+v", got[0])
	}
	if got[1].DB == nil || got[1].DB.DiscussionID != 11 {
		t.Fatalf("second match = %+v", got[1])
	}
	if got[0].Score <= m.Thresholds.Discussion {
		t.Fatalf("score = %v, want above threshold", got[0].Score)
	}

	if un := Unmatched(db, got); len(un) != 0 {
		t.Fatalf("unmatched = %+v, want none", un)
	}
}

func TestDiscussionsClaimRowsOnce(t *testing.T) {
	db := []models.Discussion{
		{DiscussionID: 10, IssueNo: "1", Title: "אישור תקציב החינוך"},
	}
	refs := []DiscussionRef{
		{IssueNo: "1", Title: "אישור תקציב החינוך"},
		{IssueNo: "1", Title: "אישור תקציב החינוך"},
	}

	m := New()
	got := m.Discussions(refs, db)
	if got[0].DB == nil {
		t.Fatalf("first ref unmatched: %+v", got[0])
	}
	if got[1].DB != nil {
		t.Fatalf("database row claimed twice: %+v", got[1])
	}
}

func TestDiscussionsUnmatchedRows(t *testing.T) {
	db := []models.Discussion{
		{DiscussionID: 10, IssueNo: "1", Title: "אישור תקציב החינוך"},
		{DiscussionID: 11, IssueNo: "7", Title: "מינוי ועדת ביקורת"},
	}
	refs := []DiscussionRef{{IssueNo: "1", Title: "אישור תקציב החינוך"}}

	m := New()
	got := m.Discussions(refs, db)
	un := Unmatched(db, got)
	if len(un) != 1 || un[0].DiscussionID != 11 {
		t.Fatalf("unmatched = %+v", un)
	}
}

func TestDiscussionsBelowThreshold(t *testing.T) {
	db := []models.Discussion{
		{DiscussionID: 10, IssueNo: "9", Title: "מינוי ועדת ביקורת"},
	}
	refs := []DiscussionRef{{IssueNo: "1", Title: "אישור הסכם פינוי אשפה"}}

	m := New()
	got := m.Discussions(refs, db)
	if got[0].DB != nil {
		t.Fatalf("unrelated titles matched: %+v", got[0])
	}
}
