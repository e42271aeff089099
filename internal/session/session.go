package session

import (
	"sync"
	"time"

	"protoflow/internal/extract"
	"protoflow/internal/util"
)

// State is a review step. Steps run in a fixed order; each one only sees
// confirmed output of the steps before it.
type State string

const (
	StateMeetingDetails State = "MEETING_DETAILS"
	StateAttendance     State = "ATTENDANCE"
	StateStaff          State = "STAFF"
	StateDiscussions    State = "DISCUSSIONS"
	StateFinalize       State = "FINALIZE"
	StateCommitted      State = "COMMITTED"
	StateDiscarded      State = "DISCARDED"
)

var stepOrder = map[State]int{
	StateMeetingDetails: 0,
	StateAttendance:     1,
	StateStaff:          2,
	StateDiscussions:    3,
	StateFinalize:       4,
}

func (s State) Terminal() bool {
	return s == StateCommitted || s == StateDiscarded
}

// Draft is everything extraction produced for one protocol, presented to
// the reviewer step by step. It is read-only; edits land in the buffer.
type Draft struct {
	ProtocolID    string                    `json:"protocol_id"`
	MeetingNumber *extract.Field[int]       `json:"meeting_number,omitempty"`
	MeetingDate   *extract.Field[time.Time] `json:"meeting_date,omitempty"`
	MeetingType   *extract.Field[string]    `json:"meeting_type,omitempty"`
	Committee     *extract.Field[string]    `json:"committee,omitempty"`
	Attendance    []extract.AttendanceEntry `json:"attendance,omitempty"`
	Staff         []extract.StaffEntry      `json:"staff,omitempty"`
	Items         []extract.ItemDetail      `json:"items,omitempty"`
	Reversed      bool                      `json:"document_reversed,omitempty"`
}

// FieldDiff is one buffered-vs-current divergence found at commit time,
// attached to the session for re-review.
type FieldDiff struct {
	Entity   string `json:"entity"`
	Field    string `json:"field"`
	Buffered string `json:"buffered"`
	Current  string `json:"current"`
}

// Session is one reviewer's pass over one protocol. All mutating access
// goes through Registry.Acquire, which holds mu for the interaction.
type Session struct {
	Key        string
	ProtocolID string
	CreatedAt  time.Time

	mu         sync.Mutex
	state      State
	draft      Draft
	buf        Buffer
	unresolved []string
	conflicts  []FieldDiff
	lastSeen   time.Time
}

func New(key, protocolID string, draft Draft) *Session {
	now := time.Now()
	return &Session{
		Key:        key,
		ProtocolID: protocolID,
		CreatedAt:  now,
		state:      StateMeetingDetails,
		draft:      draft,
		lastSeen:   now,
	}
}

func (s *Session) State() State { return s.state }

func (s *Session) Draft() *Draft { return &s.draft }

func (s *Session) Pending() *Buffer { return &s.buf }

// Unresolved lists the attendance names still awaiting a staff-step
// resolution.
func (s *Session) Unresolved() []string {
	return append([]string(nil), s.unresolved...)
}

// Conflicts returns the field diffs of a failed commit, if any.
func (s *Session) Conflicts() []FieldDiff { return s.conflicts }

func (s *Session) SetConflicts(diffs []FieldDiff) { s.conflicts = diffs }

// NoteCorrection bumps the corrections counter for the pending summary.
// The correction itself is already with the learner.
func (s *Session) NoteCorrection() { s.buf.Corrections++ }

// ConfirmMeetingDetails stores the confirmed meeting header and opens the
// attendance step.
func (s *Session) ConfirmMeetingDetails(u MeetingUpdate) error {
	if s.state != StateMeetingDetails {
		return util.ErrInvalidTransition
	}
	s.buf.Meeting = &u
	s.state = StateAttendance
	return nil
}

// SubmitAttendance stores the resolved attendance block. Names the matcher
// could not place carry over into the staff step as unresolved.
func (s *Session) SubmitAttendance(changes []AttendanceChange, unmatched []string) error {
	if s.state != StateAttendance {
		return util.ErrInvalidTransition
	}
	s.buf.SetAttendance(changes)
	s.unresolved = append([]string(nil), unmatched...)
	s.state = StateStaff
	return nil
}

// ResolveExisting settles an unresolved name onto a roster member whose
// record the noise hid.
func (s *Session) ResolveExisting(ocrName string, c AttendanceChange) error {
	if s.state != StateStaff {
		return util.ErrInvalidTransition
	}
	s.buf.MarkPresent(c)
	s.removeUnresolved(ocrName)
	return nil
}

// ResolveNew settles an unresolved name by creating a person.
func (s *Session) ResolveNew(ocrName string, p NewPerson) error {
	if s.state != StateStaff {
		return util.ErrInvalidTransition
	}
	s.buf.AddPerson(p)
	s.removeUnresolved(ocrName)
	return nil
}

// Reject drops an unresolved name as scanner noise. Nothing is buffered.
func (s *Session) Reject(ocrName string) error {
	if s.state != StateStaff {
		return util.ErrInvalidTransition
	}
	s.removeUnresolved(ocrName)
	return nil
}

func (s *Session) removeUnresolved(name string) {
	for i, n := range s.unresolved {
		if n == name {
			s.unresolved = append(s.unresolved[:i], s.unresolved[i+1:]...)
			return
		}
	}
}

// ToDiscussions opens the discussions step once every unresolved name has
// been settled.
func (s *Session) ToDiscussions() error {
	if s.state != StateStaff {
		return util.ErrInvalidTransition
	}
	if len(s.unresolved) > 0 {
		return util.ErrUnresolvedStaff
	}
	s.state = StateDiscussions
	return nil
}

// ConfirmDiscussion buffers one reviewed discussion item.
func (s *Session) ConfirmDiscussion(d DiscussionChange) error {
	if s.state != StateDiscussions {
		return util.ErrInvalidTransition
	}
	s.buf.UpsertDiscussion(d)
	return nil
}

// ToFinalize opens the summary step.
func (s *Session) ToFinalize() error {
	if s.state != StateDiscussions {
		return util.ErrInvalidTransition
	}
	s.state = StateFinalize
	return nil
}

// Back reopens an earlier step. The buffer survives; terminal states do
// not move.
func (s *Session) Back(to State) error {
	cur, curOK := stepOrder[s.state]
	tgt, tgtOK := stepOrder[to]
	if !curOK || !tgtOK || tgt >= cur {
		return util.ErrInvalidTransition
	}
	s.state = to
	return nil
}

// Discard abandons the session. The buffer is dropped; nothing was ever
// durable.
func (s *Session) Discard() error {
	if s.state.Terminal() {
		return util.ErrInvalidTransition
	}
	s.buf = Buffer{}
	s.unresolved = nil
	s.conflicts = nil
	s.state = StateDiscarded
	return nil
}

// MarkCommitted closes the session after the coordinator applied its
// buffer. Any later operation on the key fails as expired.
func (s *Session) MarkCommitted() error {
	if s.state != StateFinalize {
		return util.ErrInvalidTransition
	}
	s.state = StateCommitted
	return nil
}
