package match

import (
	"testing"
	"time"

	"protoflow/internal/models"
)

func TestScoreMeetings(t *testing.T) {
	d1 := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 4, 2, 0, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{MeetingID: 1, MeetingNo: "82/14", MeetingDate: &d1},
		{MeetingID: 2, MeetingNo: "83/14", MeetingDate: &d2},
		{MeetingID: 3, MeetingNo: "81/14"},
	}

	got := ScoreMeetings("8214", &d1, meetings)
	if len(got) != 1 {
		t.Fatalf("scores = %+v, want the single positive candidate", got)
	}
	if got[0].Meeting.MeetingID != 1 || got[0].Score != 150 {
		t.Fatalf("top = %+v, want meeting 1 at 150", got[0])
	}

	rec, ok := Recommend(got)
	if !ok || rec.MeetingID != 1 {
		t.Fatalf("recommend = %+v ok=%v", rec, ok)
	}
}

func TestScoreMeetingsDateOnlyNotRecommended(t *testing.T) {
	d := time.Date(2023, 3, 15, 10, 30, 0, 0, time.UTC)
	meetingDay := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{MeetingID: 1, MeetingNo: "82/14", MeetingDate: &meetingDay},
	}

	got := ScoreMeetings("99", &d, meetings)
	if len(got) != 1 || got[0].Score != 50 {
		t.Fatalf("scores = %+v, want a 50-point date hit", got)
	}
	if _, ok := Recommend(got); ok {
		t.Fatalf("date-only hit must not be auto-recommended")
	}
}

func TestScoreMeetingsOrdersByScore(t *testing.T) {
	d := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	other := time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC)
	meetings := []models.Meeting{
		{MeetingID: 1, MeetingNo: "70/14", MeetingDate: &other},
		{MeetingID: 2, MeetingNo: "82/14", MeetingDate: &d},
	}

	got := ScoreMeetings("82/14", &d, meetings)
	if len(got) != 2 {
		t.Fatalf("scores = %+v, want 2", got)
	}
	if got[0].Meeting.MeetingID != 2 || got[0].Score != 150 || got[1].Score != 50 {
		t.Fatalf("ordering = %+v", got)
	}
}

func TestScoreMeetingsNoSignal(t *testing.T) {
	meetings := []models.Meeting{{MeetingID: 1, MeetingNo: "82/14"}}
	if got := ScoreMeetings("", nil, meetings); len(got) != 0 {
		t.Fatalf("scores = %+v, want none", got)
	}
}
