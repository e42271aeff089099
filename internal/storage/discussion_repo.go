package storage

import (
	"context"
	"fmt"

	"protoflow/internal/models"
)

type DiscussionRepo struct {
	db *DB
}

func NewDiscussionRepo(db *DB) *DiscussionRepo {
	return &DiscussionRepo{db: db}
}

// ListDiscussionsByMeeting returns a meeting's items for the discussion
// matcher, in agenda order.
func (r *DiscussionRepo) ListDiscussionsByMeeting(ctx context.Context, meetingID int) ([]models.Discussion, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT discussion_id, meeting_id, COALESCE(issue_no,''), title, COALESCE(category,''), COALESCE(discussion_type,''),
       COALESCE(decision,''), yes_count, no_count, abstain_count, missing_count, COALESCE(total_budget,0), agenda_only, version
FROM discussions
WHERE meeting_id=$1
ORDER BY discussion_id ASC`, meetingID)
	if err != nil {
		return nil, fmt.Errorf("list discussions by meeting: %w", err)
	}
	defer rows.Close()

	out := make([]models.Discussion, 0)
	for rows.Next() {
		var d models.Discussion
		if err := rows.Scan(&d.DiscussionID, &d.MeetingID, &d.IssueNo, &d.Title, &d.Category, &d.DiscType,
			&d.Decision, &d.YesCount, &d.NoCount, &d.AbstainCount, &d.MissingCount, &d.TotalBudget, &d.AgendaOnly, &d.Version); err != nil {
			return nil, fmt.Errorf("scan discussion: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate discussions: %w", err)
	}
	return out, nil
}
