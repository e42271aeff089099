package storage

import (
	"context"
	"fmt"

	"protoflow/internal/models"
)

type MeetingRepo struct {
	db *DB
}

func NewMeetingRepo(db *DB) *MeetingRepo {
	return &MeetingRepo{db: db}
}

// ListRecentMeetings returns the candidate pool the meeting matcher scores,
// newest first. Version rides along so session buffers pin the row they
// were built against.
func (r *MeetingRepo) ListRecentMeetings(ctx context.Context, limit int) ([]models.Meeting, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT meeting_id, meeting_no, meeting_date, COALESCE(meeting_type,''), term_id, version, created_at, updated_at
FROM meetings
ORDER BY meeting_date DESC NULLS LAST, meeting_id DESC
LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent meetings: %w", err)
	}
	defer rows.Close()

	out := make([]models.Meeting, 0, limit)
	for rows.Next() {
		var m models.Meeting
		if err := rows.Scan(&m.MeetingID, &m.MeetingNo, &m.MeetingDate, &m.MeetingType, &m.TermID, &m.Version, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan meeting: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meetings: %w", err)
	}
	return out, nil
}

func (r *MeetingRepo) GetMeetingByID(ctx context.Context, meetingID int) (models.Meeting, error) {
	var m models.Meeting
	err := r.db.Pool.QueryRow(ctx, `
SELECT meeting_id, meeting_no, meeting_date, COALESCE(meeting_type,''), term_id, version, created_at, updated_at
FROM meetings
WHERE meeting_id=$1`, meetingID).
		Scan(&m.MeetingID, &m.MeetingNo, &m.MeetingDate, &m.MeetingType, &m.TermID, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("get meeting by id: %w", err)
	}
	return m, nil
}
