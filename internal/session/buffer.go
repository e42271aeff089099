package session

import "time"

// MeetingUpdate is the confirmed meeting header, pinned to the version of
// the row it was reviewed against.
type MeetingUpdate struct {
	MeetingID   int        `json:"meeting_id"`
	MeetingNo   string     `json:"meeting_no"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
	MeetingType string     `json:"meeting_type"`
	BaseVersion int        `json:"base_version"`
}

// AttendanceChange marks one roster member present or absent. Elected
// tells council members from staff; unanimous votes expand over present
// elected members at commit.
type AttendanceChange struct {
	PersonID  int    `json:"person_id"`
	Name      string `json:"name"`
	IsPresent bool   `json:"is_present"`
	Elected   bool   `json:"elected,omitempty"`
}

// NewPerson is someone the reviewer chose to create rather than force onto
// the roster. Present new persons also get an attendance row at commit.
type NewPerson struct {
	FullName  string `json:"full_name"`
	Role      string `json:"role,omitempty"`
	IsStaff   bool   `json:"is_staff"`
	IsPresent bool   `json:"is_present"`
}

// VoteChange is one member's resolved vote on a discussion.
type VoteChange struct {
	PersonID int    `json:"person_id"`
	Value    string `json:"value"`
}

// FundingChange is one funding source confirmed for a discussion.
type FundingChange struct {
	SourceName string  `json:"source_name"`
	Amount     float64 `json:"amount"`
}

// DiscussionChange is one discussion create (DiscussionID zero) or update,
// pinned to the version it was reviewed against.
type DiscussionChange struct {
	DiscussionID int             `json:"discussion_id,omitempty"`
	BaseVersion  int             `json:"base_version,omitempty"`
	IssueNo      string          `json:"issue_no"`
	Title        string          `json:"title"`
	Category     string          `json:"category,omitempty"`
	DiscType     string          `json:"discussion_type,omitempty"`
	Decision     string          `json:"decision,omitempty"`
	YesCount     int             `json:"yes_count"`
	NoCount      int             `json:"no_count"`
	AbstainCount int             `json:"abstain_count"`
	MissingCount int             `json:"missing_count"`
	Unanimous    bool            `json:"unanimous,omitempty"`
	AgendaOnly   bool            `json:"agenda_only,omitempty"`
	TotalBudget  float64         `json:"total_budget,omitempty"`
	Sources      []FundingChange `json:"sources,omitempty"`
	Votes        []VoteChange    `json:"votes,omitempty"`
}

// Buffer holds every pending change of one session. Nothing in it is
// durable until the commit coordinator applies it.
type Buffer struct {
	Meeting     *MeetingUpdate     `json:"meeting,omitempty"`
	Attendance  []AttendanceChange `json:"attendance,omitempty"`
	NewPersons  []NewPerson        `json:"new_persons,omitempty"`
	Discussions []DiscussionChange `json:"discussions,omitempty"`
	// Corrections recorded with the learner while this session ran. They are
	// already durable; the count is kept for the pending summary only.
	Corrections int `json:"corrections,omitempty"`
}

// PendingCount is the badge number: how many durable mutations a commit
// would apply.
func (b *Buffer) PendingCount() int {
	n := len(b.Attendance) + len(b.NewPersons) + len(b.Discussions)
	if b.Meeting != nil {
		n++
	}
	return n
}

// SetAttendance replaces the attendance block wholesale. Revisiting the
// step resubmits the full list, it never merges.
func (b *Buffer) SetAttendance(changes []AttendanceChange) {
	b.Attendance = changes
}

// AddPerson registers a new person, replacing an earlier resolution of the
// same name when the reviewer went back and changed their mind.
func (b *Buffer) AddPerson(p NewPerson) {
	for i, existing := range b.NewPersons {
		if existing.FullName == p.FullName {
			b.NewPersons[i] = p
			return
		}
	}
	b.NewPersons = append(b.NewPersons, p)
}

// MarkPresent appends an attendance change unless the member already has
// one, in which case the existing entry is replaced.
func (b *Buffer) MarkPresent(c AttendanceChange) {
	for i, a := range b.Attendance {
		if a.PersonID == c.PersonID {
			b.Attendance[i] = c
			return
		}
	}
	b.Attendance = append(b.Attendance, c)
}

// UpsertDiscussion stores a discussion change keyed by issue number, so a
// revisited item overwrites its earlier buffered form.
func (b *Buffer) UpsertDiscussion(d DiscussionChange) {
	for i, existing := range b.Discussions {
		if existing.IssueNo == d.IssueNo {
			b.Discussions[i] = d
			return
		}
	}
	b.Discussions = append(b.Discussions, d)
}
