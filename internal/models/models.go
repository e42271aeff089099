package models

import "time"

// Protocol is one uploaded meeting-protocol file tracked through the pipeline.
// ProtocolID is the SHA-256 of the file contents.
type Protocol struct {
	ProtocolID string    `json:"protocol_id"`
	Filename   string    `json:"filename"`
	MeetingNo  string    `json:"meeting_no,omitempty"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type Person struct {
	PersonID  int       `json:"person_id"`
	FullName  string    `json:"full_name"`
	Faction   string    `json:"faction,omitempty"`
	TermID    *int      `json:"term_id,omitempty"`
	IsActive  bool      `json:"is_active"`
	IsStaff   bool      `json:"is_staff"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Meeting struct {
	MeetingID   int        `json:"meeting_id"`
	MeetingNo   string     `json:"meeting_no"`
	MeetingDate *time.Time `json:"meeting_date,omitempty"`
	MeetingType string     `json:"meeting_type"`
	TermID      *int       `json:"term_id,omitempty"`
	Version     int        `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Attendance struct {
	MeetingID int  `json:"meeting_id"`
	PersonID  int  `json:"person_id"`
	IsPresent bool `json:"is_present"`
}

type Discussion struct {
	DiscussionID int     `json:"discussion_id"`
	MeetingID    int     `json:"meeting_id"`
	IssueNo      string  `json:"issue_no"`
	Title        string  `json:"title"`
	Category     string  `json:"category,omitempty"`
	DiscType     string  `json:"discussion_type,omitempty"`
	Decision     string  `json:"decision,omitempty"`
	YesCount     int     `json:"yes_count"`
	NoCount      int     `json:"no_count"`
	AbstainCount int     `json:"abstain_count"`
	MissingCount int     `json:"missing_count"`
	TotalBudget  float64 `json:"total_budget,omitempty"`
	AgendaOnly   bool    `json:"agenda_only,omitempty"`
	Version      int     `json:"version"`
}

type FundingSource struct {
	DiscussionID int     `json:"discussion_id"`
	SourceName   string  `json:"source_name"`
	Amount       float64 `json:"amount"`
}

const (
	VoteYes     = "yes"
	VoteNo      = "no"
	VoteAbstain = "abstain"
	VoteMissing = "missing"
)

type Vote struct {
	DiscussionID int    `json:"discussion_id"`
	PersonID     int    `json:"person_id"`
	Value        string `json:"value"`
}

// Correction is one recorded human override or confirmation. Append-only.
type Correction struct {
	CorrectionID  int       `json:"correction_id"`
	OriginalText  string    `json:"original_text"`
	NormalizedKey string    `json:"normalized_key"`
	AcceptedValue string    `json:"accepted_value"`
	FieldKind     string    `json:"field_kind"`
	WasReversed   bool      `json:"was_reversed"`
	CreatedAt     time.Time `json:"created_at"`
}

// Line is one OCR output line with its page number and optional per-token
// confidence from the upstream engine.
type Line struct {
	Page       int      `json:"page"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// RawExtraction is one OCR pass's output. Immutable once produced.
type RawExtraction struct {
	ProtocolID string `json:"protocol_id"`
	Lines      []Line `json:"lines"`
}

// ReversalMark records one normalization applied at a text position, kept for
// UI indicators and for the matcher's was_reversed signal.
type ReversalMark struct {
	Line     int    `json:"line"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
	Original string `json:"original"`
	Fixed    string `json:"fixed"`
	Kind     string `json:"kind"`
}

// NormalizedText replaces RawExtraction for all downstream consumers.
type NormalizedText struct {
	ProtocolID string         `json:"protocol_id"`
	Lines      []Line         `json:"lines"`
	Marks      []ReversalMark `json:"marks,omitempty"`
	Reversed   bool           `json:"document_reversed"`
}

func (n NormalizedText) Plain() string {
	out := make([]byte, 0, 1024)
	for i, l := range n.Lines {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, l.Text...)
	}
	return string(out)
}
