package commit

import (
	"strconv"
	"time"

	"protoflow/internal/models"
	"protoflow/internal/session"
)

// meetingDiff lists the fields where the buffered meeting and the row
// now in storage disagree. Equal fields are omitted so the reviewer only
// sees what actually moved under them.
func meetingDiff(buf session.MeetingUpdate, cur models.Meeting) []session.FieldDiff {
	var diffs []session.FieldDiff
	add := func(field, buffered, current string) {
		if buffered == current {
			return
		}
		diffs = append(diffs, session.FieldDiff{
			Entity:   "meeting",
			Field:    field,
			Buffered: buffered,
			Current:  current,
		})
	}

	add("meeting_no", buf.MeetingNo, cur.MeetingNo)
	add("meeting_date", dateString(buf.MeetingDate), dateString(cur.MeetingDate))
	add("meeting_type", buf.MeetingType, cur.MeetingType)
	return diffs
}

func discussionDiff(buf session.DiscussionChange, cur models.Discussion) []session.FieldDiff {
	var diffs []session.FieldDiff
	add := func(field, buffered, current string) {
		if buffered == current {
			return
		}
		diffs = append(diffs, session.FieldDiff{
			Entity:   "discussion " + buf.IssueNo,
			Field:    field,
			Buffered: buffered,
			Current:  current,
		})
	}

	add("title", buf.Title, cur.Title)
	add("category", buf.Category, cur.Category)
	add("discussion_type", buf.DiscType, cur.DiscType)
	add("decision", buf.Decision, cur.Decision)
	add("yes_count", strconv.Itoa(buf.YesCount), strconv.Itoa(cur.YesCount))
	add("no_count", strconv.Itoa(buf.NoCount), strconv.Itoa(cur.NoCount))
	add("abstain_count", strconv.Itoa(buf.AbstainCount), strconv.Itoa(cur.AbstainCount))
	add("missing_count", strconv.Itoa(buf.MissingCount), strconv.Itoa(cur.MissingCount))
	add("total_budget", budgetString(buf.TotalBudget), budgetString(cur.TotalBudget))
	return diffs
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func budgetString(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
