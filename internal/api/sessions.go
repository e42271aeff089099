package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"protoflow/internal/extract"
	"protoflow/internal/match"
	"protoflow/internal/models"
	"protoflow/internal/session"
	"protoflow/internal/util"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// meetingCandidate is the stored meeting the draft most likely updates,
// pinned to the version the reviewer saw, with its existing discussions so
// the review edits rows instead of duplicating them.
type meetingCandidate struct {
	MeetingID   int                 `json:"meeting_id"`
	MeetingNo   string              `json:"meeting_no"`
	MeetingDate *time.Time          `json:"meeting_date,omitempty"`
	MeetingType string              `json:"meeting_type"`
	BaseVersion int                 `json:"base_version"`
	Discussions []models.Discussion `json:"discussions,omitempty"`
}

// correctionReport is one reviewer override carried on a step submission.
// Recording happens before buffering, so the learner keeps the confirmation
// even when the reviewer later discards the session.
type correctionReport struct {
	Original    string `json:"original"`
	FieldKind   string `json:"field_kind"`
	Accepted    string `json:"accepted"`
	WasReversed bool   `json:"was_reversed,omitempty"`
}

// staffResolution settles one unresolved attendance name: onto an existing
// roster member, as a new person, or rejected as scanner noise.
type staffResolution struct {
	OCRName     string                    `json:"ocr_name"`
	Action      string                    `json:"action"`
	Existing    *session.AttendanceChange `json:"existing,omitempty"`
	NewPerson   *session.NewPerson        `json:"new_person,omitempty"`
	WasReversed bool                      `json:"was_reversed,omitempty"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		ProtocolID string `json:"protocol_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.ProtocolID = strings.TrimSpace(req.ProtocolID)
	if req.ProtocolID == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("protocol_id is required"))
		return
	}

	draft, err := s.extractionRepo.GetDraft(r.Context(), req.ProtocolID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeErr(w, http.StatusNotFound, fmt.Errorf("no draft for protocol %s", req.ProtocolID))
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	candidate, err := s.meetingCandidateFor(r.Context(), draft)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	roster, err := s.personRepo.ListActivePersons(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	matched, unmatched := proposeAttendance(s.matcher, roster, draft.Attendance)

	key := uuid.NewString()
	sess := s.sessions.Create(key, req.ProtocolID, draft)

	resp := map[string]any{
		"session_id":  key,
		"protocol_id": req.ProtocolID,
		"state":       sess.State(),
		"expires_at":  time.Now().Add(time.Duration(s.cfg.SessionTTLMinutes) * time.Minute),
		"draft":       sess.Draft(),
		"attendance": map[string]any{
			"matched":   matched,
			"unmatched": unmatched,
		},
	}
	if candidate != nil {
		resp["meeting_candidate"] = candidate
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/sessions/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	id := parts[0]

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleSessionGet(w, id)
		return
	}
	if len(parts) != 2 {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}

	op := parts[1]
	if op == "pending" {
		if r.Method != http.MethodGet {
			writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
			return
		}
		s.handleSessionPending(w, id)
		return
	}
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	switch op {
	case "meeting":
		s.handleSessionMeeting(w, r, id)
	case "attendance":
		s.handleSessionAttendance(w, r, id)
	case "staff":
		s.handleSessionStaff(w, r, id)
	case "discussions":
		s.handleSessionDiscussions(w, r, id)
	case "back":
		s.handleSessionBack(w, r, id)
	case "commit":
		s.handleSessionCommit(w, r, id)
	case "discard":
		s.handleSessionDiscard(w, id)
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

// acquireSession holds the session's interaction lock for one request and
// turns registry refusals into their HTTP answers.
func (s *Server) acquireSession(w http.ResponseWriter, id string) (*session.Session, func(), bool) {
	sess, release, err := s.sessions.Acquire(id)
	if err != nil {
		writeErr(w, sessionErrStatus(err), err)
		return nil, nil, false
	}
	return sess, release, true
}

// sessionErrStatus maps session and commit sentinels onto HTTP statuses.
// Expired keys answer 410 so clients restart instead of retrying.
func sessionErrStatus(err error) int {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, util.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, util.ErrSessionBusy),
		errors.Is(err, util.ErrInvalidTransition),
		errors.Is(err, util.ErrUnresolvedStaff),
		errors.Is(err, util.ErrCommitConflict):
		return http.StatusConflict
	case errors.Is(err, util.ErrNothingToCommit):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) handleSessionGet(w http.ResponseWriter, id string) {
	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	resp := map[string]any{
		"session_id":    sess.Key,
		"protocol_id":   sess.ProtocolID,
		"state":         sess.State(),
		"created_at":    sess.CreatedAt,
		"expires_at":    time.Now().Add(time.Duration(s.cfg.SessionTTLMinutes) * time.Minute),
		"pending_count": sess.Pending().PendingCount(),
		"draft":         sess.Draft(),
		"unresolved":    sess.Unresolved(),
	}
	if diffs := sess.Conflicts(); len(diffs) > 0 {
		resp["conflicts"] = diffs
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionPending(w http.ResponseWriter, id string) {
	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	buf := sess.Pending()
	writeJSON(w, http.StatusOK, map[string]any{
		"pending_count": buf.PendingCount(),
		"changes":       buf,
	})
}

func (s *Server) handleSessionMeeting(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Meeting     session.MeetingUpdate `json:"meeting"`
		Corrections []correctionReport    `json:"corrections,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Meeting.MeetingNo) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("meeting_no is required"))
		return
	}

	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.recordCorrections(r.Context(), sess, req.Corrections); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := sess.ConfirmMeetingDetails(req.Meeting); err != nil {
		writeErr(w, sessionErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         sess.State(),
		"pending_count": sess.Pending().PendingCount(),
	})
}

func (s *Server) handleSessionAttendance(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Changes     []session.AttendanceChange `json:"changes"`
		Unmatched   []string                   `json:"unmatched,omitempty"`
		Corrections []correctionReport         `json:"corrections,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.recordCorrections(r.Context(), sess, req.Corrections); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if err := sess.SubmitAttendance(req.Changes, req.Unmatched); err != nil {
		writeErr(w, sessionErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         sess.State(),
		"unresolved":    sess.Unresolved(),
		"pending_count": sess.Pending().PendingCount(),
	})
}

func (s *Server) handleSessionStaff(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Resolutions []staffResolution  `json:"resolutions"`
		Corrections []correctionReport `json:"corrections,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.recordCorrections(r.Context(), sess, req.Corrections); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	for _, res := range req.Resolutions {
		res.OCRName = strings.TrimSpace(res.OCRName)
		if res.OCRName == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("resolution is missing ocr_name"))
			return
		}
		switch res.Action {
		case "existing":
			if res.Existing == nil {
				writeErr(w, http.StatusBadRequest, fmt.Errorf("existing resolution needs a person"))
				return
			}
			if err := s.learner.Record(r.Context(), res.OCRName, match.FieldPersonName, res.Existing.Name, res.WasReversed); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			sess.NoteCorrection()
			if err := sess.ResolveExisting(res.OCRName, *res.Existing); err != nil {
				writeErr(w, sessionErrStatus(err), err)
				return
			}
		case "new":
			if res.NewPerson == nil {
				writeErr(w, http.StatusBadRequest, fmt.Errorf("new resolution needs person details"))
				return
			}
			if err := s.learner.Record(r.Context(), res.OCRName, match.FieldPersonName, res.NewPerson.FullName, res.WasReversed); err != nil {
				writeErr(w, http.StatusInternalServerError, err)
				return
			}
			sess.NoteCorrection()
			if err := sess.ResolveNew(res.OCRName, *res.NewPerson); err != nil {
				writeErr(w, sessionErrStatus(err), err)
				return
			}
		case "reject":
			if err := sess.Reject(res.OCRName); err != nil {
				writeErr(w, sessionErrStatus(err), err)
				return
			}
		default:
			writeErr(w, http.StatusBadRequest, fmt.Errorf("unknown resolution action %q", res.Action))
			return
		}
	}

	// The step closes itself once nothing is left to resolve.
	if sess.State() == session.StateStaff && len(sess.Unresolved()) == 0 {
		if err := sess.ToDiscussions(); err != nil {
			writeErr(w, sessionErrStatus(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         sess.State(),
		"unresolved":    sess.Unresolved(),
		"pending_count": sess.Pending().PendingCount(),
	})
}

func (s *Server) handleSessionDiscussions(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		Discussions []session.DiscussionChange `json:"discussions"`
		Corrections []correctionReport         `json:"corrections,omitempty"`
		Finalize    bool                       `json:"finalize,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.recordCorrections(r.Context(), sess, req.Corrections); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	for _, d := range req.Discussions {
		if strings.TrimSpace(d.IssueNo) == "" || strings.TrimSpace(d.Title) == "" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("discussion needs issue_no and title"))
			return
		}
		if err := sess.ConfirmDiscussion(d); err != nil {
			writeErr(w, sessionErrStatus(err), err)
			return
		}
	}
	if req.Finalize {
		if err := sess.ToFinalize(); err != nil {
			writeErr(w, sessionErrStatus(err), err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         sess.State(),
		"pending_count": sess.Pending().PendingCount(),
	})
}

func (s *Server) handleSessionBack(w http.ResponseWriter, r *http.Request, id string) {
	var req struct {
		To string `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := sess.Back(session.State(req.To)); err != nil {
		writeErr(w, sessionErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": sess.State()})
}

func (s *Server) handleSessionCommit(w http.ResponseWriter, r *http.Request, id string) {
	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.committer.Commit(r.Context(), sess); err != nil {
		if errors.Is(err, util.ErrCommitConflict) {
			apiErr := toAPIError(http.StatusConflict, err)
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]any{
					"code":    apiErr.Code,
					"message": apiErr.Message,
				},
				"conflicts": sess.Conflicts(),
			})
			return
		}
		writeErr(w, sessionErrStatus(err), err)
		return
	}
	if err := s.protocolRepo.UpdateProtocolStatus(r.Context(), sess.ProtocolID, "committed", ""); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"state":       sess.State(),
		"protocol_id": sess.ProtocolID,
	})
}

func (s *Server) handleSessionDiscard(w http.ResponseWriter, id string) {
	sess, release, ok := s.acquireSession(w, id)
	if !ok {
		return
	}
	defer release()

	if err := s.committer.Discard(sess); err != nil {
		writeErr(w, sessionErrStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"state": sess.State()})
}

func (s *Server) handleLearningReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, s.learner.Report())
}

func (s *Server) recordCorrections(ctx context.Context, sess *session.Session, reports []correctionReport) error {
	for _, c := range reports {
		if strings.TrimSpace(c.Original) == "" || strings.TrimSpace(c.Accepted) == "" {
			continue
		}
		kind := c.FieldKind
		if kind == "" {
			kind = match.FieldPersonName
		}
		if err := s.learner.Record(ctx, c.Original, kind, c.Accepted, c.WasReversed); err != nil {
			return fmt.Errorf("record correction for %q: %w", c.Original, err)
		}
		sess.NoteCorrection()
	}
	return nil
}

// meetingCandidateFor pairs the draft with the stored meeting it most
// likely updates. No hit means the commit will insert a fresh meeting.
func (s *Server) meetingCandidateFor(ctx context.Context, draft session.Draft) (*meetingCandidate, error) {
	meetings, err := s.meetingRepo.ListRecentMeetings(ctx, s.cfg.MeetingSearchLimit)
	if err != nil {
		return nil, err
	}
	cand := findMeetingCandidate(meetings, draft)
	if cand == nil {
		return nil, nil
	}
	discussions, err := s.discussionRepo.ListDiscussionsByMeeting(ctx, cand.MeetingID)
	if err != nil {
		return nil, err
	}
	cand.Discussions = discussions
	return cand, nil
}

// findMeetingCandidate scores stored meetings against the extracted number
// and date and offers the top candidate only when it clears the
// recommendation bar. A date-only hit stays a manual pick.
func findMeetingCandidate(meetings []models.Meeting, draft session.Draft) *meetingCandidate {
	var wantNo string
	if draft.MeetingNumber != nil {
		wantNo = strconv.Itoa(draft.MeetingNumber.Value)
	}
	var wantDate *time.Time
	if draft.MeetingDate != nil {
		wantDate = &draft.MeetingDate.Value
	}
	m, ok := match.Recommend(match.ScoreMeetings(wantNo, wantDate, meetings))
	if !ok {
		return nil
	}
	return &meetingCandidate{
		MeetingID:   m.MeetingID,
		MeetingNo:   m.MeetingNo,
		MeetingDate: m.MeetingDate,
		MeetingType: m.MeetingType,
		BaseVersion: m.Version,
	}
}

// proposeAttendance resolves draft attendance against the roster. Names the
// matcher cannot place safely carry into the staff step as unresolved.
func proposeAttendance(m *match.Matcher, roster []models.Person, entries []extract.AttendanceEntry) ([]session.AttendanceChange, []string) {
	matched := make([]session.AttendanceChange, 0, len(entries))
	var unmatched []string
	for _, e := range entries {
		res, err := m.Person(e.Name, roster)
		if err != nil || res.Person == nil {
			unmatched = append(unmatched, e.Name)
			continue
		}
		matched = append(matched, session.AttendanceChange{
			PersonID:  res.Person.PersonID,
			Name:      res.Person.FullName,
			IsPresent: e.Present,
			Elected:   !res.Person.IsStaff,
		})
	}
	return matched, unmatched
}
