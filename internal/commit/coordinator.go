package commit

import (
	"context"
	"fmt"

	"protoflow/internal/models"
	"protoflow/internal/session"
	"protoflow/internal/util"
)

// Store opens commit transactions. The storage package implements it on a
// pgx transaction; tests swap in a fake.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is one all-or-nothing application of a session buffer. Versioned
// updates report false when the row moved since the session read it.
type Tx interface {
	InsertPerson(ctx context.Context, p models.Person) (int, error)
	InsertMeeting(ctx context.Context, m models.Meeting) (int, error)
	UpdateMeetingVersioned(ctx context.Context, m models.Meeting, expected int) (bool, error)
	GetMeeting(ctx context.Context, meetingID int) (models.Meeting, error)
	UpsertAttendance(ctx context.Context, a models.Attendance) error
	InsertDiscussion(ctx context.Context, d models.Discussion) (int, error)
	UpdateDiscussionVersioned(ctx context.Context, d models.Discussion, expected int) (bool, error)
	GetDiscussion(ctx context.Context, discussionID int) (models.Discussion, error)
	ReplaceFundingSources(ctx context.Context, discussionID int, sources []models.FundingSource) error
	ReplaceVotes(ctx context.Context, discussionID int, votes []models.Vote) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Coordinator turns a finalized session buffer into durable rows, all or
// nothing.
type Coordinator struct {
	store Store
}

func New(store Store) *Coordinator {
	return &Coordinator{store: store}
}

// Commit applies the whole buffer in one transaction: new persons, then
// the meeting, then attendance, then discussions with their funding and
// votes. A version guard that misses aborts everything, attaches the
// field diff to the session and leaves it in FINALIZE for re-review. On
// success the session is closed; its key answers expired from then on.
func (c *Coordinator) Commit(ctx context.Context, sess *session.Session) error {
	if sess.State() != session.StateFinalize {
		return util.ErrInvalidTransition
	}
	buf := sess.Pending()
	if buf.PendingCount() == 0 || buf.Meeting == nil {
		return util.ErrNothingToCommit
	}

	tx, err := c.store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin commit tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	personIDs := make(map[string]int, len(buf.NewPersons))
	for _, p := range buf.NewPersons {
		id, err := tx.InsertPerson(ctx, models.Person{
			FullName: p.FullName,
			Role:     p.Role,
			IsStaff:  p.IsStaff,
			IsActive: true,
		})
		if err != nil {
			return fmt.Errorf("insert person %s: %w", p.FullName, err)
		}
		personIDs[p.FullName] = id
	}

	meetingID, err := c.applyMeeting(ctx, tx, sess, *buf.Meeting)
	if err != nil {
		return err
	}

	for _, a := range buf.Attendance {
		att := models.Attendance{MeetingID: meetingID, PersonID: a.PersonID, IsPresent: a.IsPresent}
		if err := tx.UpsertAttendance(ctx, att); err != nil {
			return fmt.Errorf("upsert attendance for person %d: %w", a.PersonID, err)
		}
	}
	for _, p := range buf.NewPersons {
		if !p.IsPresent {
			continue
		}
		att := models.Attendance{MeetingID: meetingID, PersonID: personIDs[p.FullName], IsPresent: true}
		if err := tx.UpsertAttendance(ctx, att); err != nil {
			return fmt.Errorf("upsert attendance for %s: %w", p.FullName, err)
		}
	}

	for _, d := range buf.Discussions {
		if err := c.applyDiscussion(ctx, tx, sess, meetingID, d); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session tx: %w", err)
	}
	sess.SetConflicts(nil)
	return sess.MarkCommitted()
}

func (c *Coordinator) applyMeeting(ctx context.Context, tx Tx, sess *session.Session, u session.MeetingUpdate) (int, error) {
	row := models.Meeting{
		MeetingID:   u.MeetingID,
		MeetingNo:   u.MeetingNo,
		MeetingDate: u.MeetingDate,
		MeetingType: u.MeetingType,
	}
	if u.MeetingID == 0 {
		id, err := tx.InsertMeeting(ctx, row)
		if err != nil {
			return 0, fmt.Errorf("insert meeting: %w", err)
		}
		return id, nil
	}

	ok, err := tx.UpdateMeetingVersioned(ctx, row, u.BaseVersion)
	if err != nil {
		return 0, fmt.Errorf("update meeting %d: %w", u.MeetingID, err)
	}
	if !ok {
		cur, err := tx.GetMeeting(ctx, u.MeetingID)
		if err != nil {
			return 0, fmt.Errorf("read conflicting meeting %d: %w", u.MeetingID, err)
		}
		sess.SetConflicts(meetingDiff(u, cur))
		return 0, fmt.Errorf("meeting %d: %w", u.MeetingID, util.ErrCommitConflict)
	}
	return u.MeetingID, nil
}

func (c *Coordinator) applyDiscussion(ctx context.Context, tx Tx, sess *session.Session, meetingID int, d session.DiscussionChange) error {
	row := models.Discussion{
		DiscussionID: d.DiscussionID,
		MeetingID:    meetingID,
		IssueNo:      d.IssueNo,
		Title:        d.Title,
		Category:     d.Category,
		DiscType:     d.DiscType,
		Decision:     d.Decision,
		YesCount:     d.YesCount,
		NoCount:      d.NoCount,
		AbstainCount: d.AbstainCount,
		MissingCount: d.MissingCount,
		TotalBudget:  d.TotalBudget,
		AgendaOnly:   d.AgendaOnly,
	}

	discussionID := d.DiscussionID
	if discussionID == 0 {
		id, err := tx.InsertDiscussion(ctx, row)
		if err != nil {
			return fmt.Errorf("insert discussion %s: %w", d.IssueNo, err)
		}
		discussionID = id
	} else {
		ok, err := tx.UpdateDiscussionVersioned(ctx, row, d.BaseVersion)
		if err != nil {
			return fmt.Errorf("update discussion %d: %w", d.DiscussionID, err)
		}
		if !ok {
			cur, err := tx.GetDiscussion(ctx, d.DiscussionID)
			if err != nil {
				return fmt.Errorf("read conflicting discussion %d: %w", d.DiscussionID, err)
			}
			sess.SetConflicts(discussionDiff(d, cur))
			return fmt.Errorf("discussion %s: %w", d.IssueNo, util.ErrCommitConflict)
		}
	}

	if len(d.Sources) > 0 {
		sources := make([]models.FundingSource, 0, len(d.Sources))
		for _, s := range d.Sources {
			sources = append(sources, models.FundingSource{
				DiscussionID: discussionID,
				SourceName:   s.SourceName,
				Amount:       s.Amount,
			})
		}
		if err := tx.ReplaceFundingSources(ctx, discussionID, sources); err != nil {
			return fmt.Errorf("replace funding sources for discussion %d: %w", discussionID, err)
		}
	}

	votes := c.resolveVotes(sess.Pending(), discussionID, d)
	if len(votes) > 0 {
		if err := tx.ReplaceVotes(ctx, discussionID, votes); err != nil {
			return fmt.Errorf("replace votes for discussion %d: %w", discussionID, err)
		}
	}
	return nil
}

// resolveVotes turns the buffered vote changes into rows. A unanimous
// item becomes one yes per present elected member.
func (c *Coordinator) resolveVotes(buf *session.Buffer, discussionID int, d session.DiscussionChange) []models.Vote {
	if d.Unanimous {
		var votes []models.Vote
		for _, a := range buf.Attendance {
			if !a.IsPresent || !a.Elected {
				continue
			}
			votes = append(votes, models.Vote{
				DiscussionID: discussionID,
				PersonID:     a.PersonID,
				Value:        models.VoteYes,
			})
		}
		return votes
	}
	votes := make([]models.Vote, 0, len(d.Votes))
	for _, v := range d.Votes {
		votes = append(votes, models.Vote{
			DiscussionID: discussionID,
			PersonID:     v.PersonID,
			Value:        v.Value,
		})
	}
	return votes
}

// Discard abandons the session without touching storage. Nothing durable
// ever existed for it.
func (c *Coordinator) Discard(sess *session.Session) error {
	return sess.Discard()
}
