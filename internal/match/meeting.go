package match

import (
	"sort"
	"strings"
	"time"

	"protoflow/internal/models"
)

// Meeting search scoring: an exact meeting-number hit outweighs everything,
// a same-day date supports it.
const (
	meetingNoScore   = 100
	meetingDateScore = 50

	// RecommendScore is the bar over which the top candidate is offered
	// for loading without a manual pick.
	RecommendScore = 100
)

// MeetingScore is one scored meeting candidate.
type MeetingScore struct {
	Meeting models.Meeting
	Score   int
}

// ScoreMeetings ranks meetings against the extracted number and date,
// dropping candidates that score zero. Slashes in meeting numbers are
// ignored; 82/14 and 8214 read the same.
func ScoreMeetings(meetingNo string, date *time.Time, meetings []models.Meeting) []MeetingScore {
	wantNo := strings.ReplaceAll(meetingNo, "/", "")
	var out []MeetingScore
	for _, m := range meetings {
		score := 0
		haveNo := strings.ReplaceAll(m.MeetingNo, "/", "")
		if wantNo != "" && haveNo != "" && wantNo == haveNo {
			score += meetingNoScore
		}
		if date != nil && m.MeetingDate != nil && sameDay(*date, *m.MeetingDate) {
			score += meetingDateScore
		}
		if score > 0 {
			out = append(out, MeetingScore{Meeting: m, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Recommend returns the top candidate when it clears the recommendation bar.
func Recommend(scores []MeetingScore) (models.Meeting, bool) {
	if len(scores) > 0 && scores[0].Score >= RecommendScore {
		return scores[0].Meeting, true
	}
	return models.Meeting{}, false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
