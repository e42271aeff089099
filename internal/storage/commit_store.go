package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"protoflow/internal/commit"
	"protoflow/internal/models"
)

// CommitStore opens the single transaction a session commit runs in.
type CommitStore struct {
	db *DB
}

func NewCommitStore(db *DB) *CommitStore {
	return &CommitStore{db: db}
}

func (s *CommitStore) Begin(ctx context.Context) (commit.Tx, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &commitTx{tx: tx}, nil
}

type commitTx struct {
	tx pgx.Tx
}

func (t *commitTx) InsertPerson(ctx context.Context, p models.Person) (int, error) {
	var id int
	err := t.tx.QueryRow(ctx, `
INSERT INTO persons (full_name, faction, term_id, is_active, is_staff, role)
VALUES ($1, NULLIF($2,''), $3, $4, $5, NULLIF($6,''))
RETURNING person_id`,
		p.FullName, p.Faction, p.TermID, p.IsActive, p.IsStaff, p.Role).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

func (t *commitTx) InsertMeeting(ctx context.Context, m models.Meeting) (int, error) {
	var id int
	err := t.tx.QueryRow(ctx, `
INSERT INTO meetings (meeting_no, meeting_date, meeting_type, term_id)
VALUES ($1, $2, NULLIF($3,''), $4)
RETURNING meeting_id`,
		m.MeetingNo, m.MeetingDate, m.MeetingType, m.TermID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert meeting: %w", err)
	}
	return id, nil
}

// UpdateMeetingVersioned bumps the row only if nobody moved it since the
// session read it. False with no error means the version guard missed.
func (t *commitTx) UpdateMeetingVersioned(ctx context.Context, m models.Meeting, expected int) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
UPDATE meetings
SET meeting_no=$2, meeting_date=$3, meeting_type=NULLIF($4,''), version=version+1, updated_at=NOW()
WHERE meeting_id=$1 AND version=$5`,
		m.MeetingID, m.MeetingNo, m.MeetingDate, m.MeetingType, expected)
	if err != nil {
		return false, fmt.Errorf("update meeting: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *commitTx) GetMeeting(ctx context.Context, meetingID int) (models.Meeting, error) {
	var m models.Meeting
	err := t.tx.QueryRow(ctx, `
SELECT meeting_id, meeting_no, meeting_date, COALESCE(meeting_type,''), term_id, version, created_at, updated_at
FROM meetings
WHERE meeting_id=$1`, meetingID).
		Scan(&m.MeetingID, &m.MeetingNo, &m.MeetingDate, &m.MeetingType, &m.TermID, &m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return models.Meeting{}, fmt.Errorf("get meeting: %w", err)
	}
	return m, nil
}

func (t *commitTx) UpsertAttendance(ctx context.Context, a models.Attendance) error {
	_, err := t.tx.Exec(ctx, `
INSERT INTO attendance (meeting_id, person_id, is_present)
VALUES ($1, $2, $3)
ON CONFLICT (meeting_id, person_id) DO UPDATE SET is_present = EXCLUDED.is_present`,
		a.MeetingID, a.PersonID, a.IsPresent)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

func (t *commitTx) InsertDiscussion(ctx context.Context, d models.Discussion) (int, error) {
	var id int
	err := t.tx.QueryRow(ctx, `
INSERT INTO discussions (meeting_id, issue_no, title, category, discussion_type, decision,
                         yes_count, no_count, abstain_count, missing_count, total_budget, agenda_only)
VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), $7, $8, $9, $10, NULLIF($11,0), $12)
RETURNING discussion_id`,
		d.MeetingID, d.IssueNo, d.Title, d.Category, d.DiscType, d.Decision,
		d.YesCount, d.NoCount, d.AbstainCount, d.MissingCount, d.TotalBudget, d.AgendaOnly).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert discussion: %w", err)
	}
	return id, nil
}

func (t *commitTx) UpdateDiscussionVersioned(ctx context.Context, d models.Discussion, expected int) (bool, error) {
	tag, err := t.tx.Exec(ctx, `
UPDATE discussions
SET issue_no=NULLIF($2,''), title=$3, category=NULLIF($4,''), discussion_type=NULLIF($5,''), decision=NULLIF($6,''),
    yes_count=$7, no_count=$8, abstain_count=$9, missing_count=$10, total_budget=NULLIF($11,0), agenda_only=$12,
    version=version+1
WHERE discussion_id=$1 AND version=$13`,
		d.DiscussionID, d.IssueNo, d.Title, d.Category, d.DiscType, d.Decision,
		d.YesCount, d.NoCount, d.AbstainCount, d.MissingCount, d.TotalBudget, d.AgendaOnly, expected)
	if err != nil {
		return false, fmt.Errorf("update discussion: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (t *commitTx) GetDiscussion(ctx context.Context, discussionID int) (models.Discussion, error) {
	var d models.Discussion
	err := t.tx.QueryRow(ctx, `
SELECT discussion_id, meeting_id, COALESCE(issue_no,''), title, COALESCE(category,''), COALESCE(discussion_type,''),
       COALESCE(decision,''), yes_count, no_count, abstain_count, missing_count, COALESCE(total_budget,0), agenda_only, version
FROM discussions
WHERE discussion_id=$1`, discussionID).
		Scan(&d.DiscussionID, &d.MeetingID, &d.IssueNo, &d.Title, &d.Category, &d.DiscType,
			&d.Decision, &d.YesCount, &d.NoCount, &d.AbstainCount, &d.MissingCount, &d.TotalBudget, &d.AgendaOnly, &d.Version)
	if err != nil {
		return models.Discussion{}, fmt.Errorf("get discussion: %w", err)
	}
	return d, nil
}

func (t *commitTx) ReplaceFundingSources(ctx context.Context, discussionID int, sources []models.FundingSource) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM funding_sources WHERE discussion_id=$1`, discussionID); err != nil {
		return fmt.Errorf("clear funding sources: %w", err)
	}
	for _, s := range sources {
		_, err := t.tx.Exec(ctx, `
INSERT INTO funding_sources (discussion_id, source_name, amount)
VALUES ($1, $2, $3)`, discussionID, s.SourceName, s.Amount)
		if err != nil {
			return fmt.Errorf("insert funding source %s: %w", s.SourceName, err)
		}
	}
	return nil
}

func (t *commitTx) ReplaceVotes(ctx context.Context, discussionID int, votes []models.Vote) error {
	if _, err := t.tx.Exec(ctx, `DELETE FROM votes WHERE discussion_id=$1`, discussionID); err != nil {
		return fmt.Errorf("clear votes: %w", err)
	}
	for _, v := range votes {
		_, err := t.tx.Exec(ctx, `
INSERT INTO votes (discussion_id, person_id, value)
VALUES ($1, $2, $3)`, discussionID, v.PersonID, v.Value)
		if err != nil {
			return fmt.Errorf("insert vote for person %d: %w", v.PersonID, err)
		}
	}
	return nil
}

func (t *commitTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *commitTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
