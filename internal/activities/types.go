package activities

import (
	"protoflow/internal/extract"
	"protoflow/internal/models"
	"protoflow/internal/session"
)

type ListProtocolFilesInput struct {
	InputDir string `json:"input_dir,omitempty"`
}

type ListProtocolFilesOutput struct {
	Paths []string `json:"paths"`
}

type ComputeProtocolIDInput struct {
	Path string `json:"path"`
}

type ComputeProtocolIDOutput struct {
	ProtocolID string `json:"protocol_id"`
}

type GetProtocolInput struct {
	ProtocolID string `json:"protocol_id"`
}

type GetProtocolOutput struct {
	Found  bool   `json:"found"`
	Status string `json:"status,omitempty"`
}

type ExtractTextInput struct {
	ProtocolID string `json:"protocol_id"`
	Path       string `json:"path"`
}

type ExtractTextOutput struct {
	Raw   models.RawExtraction `json:"raw"`
	Pages int                  `json:"pages"`
}

type NormalizeTextInput struct {
	Raw models.RawExtraction `json:"raw"`
}

type NormalizeTextOutput struct {
	Normalized models.NormalizedText `json:"normalized"`
}

type DetectSectionsInput struct {
	Text string `json:"text"`
}

type DetectSectionsOutput struct {
	Sections extract.Sections `json:"sections"`
}

type ParseFieldsInput struct {
	ProtocolID string                `json:"protocol_id"`
	Normalized models.NormalizedText `json:"normalized"`
	Sections   extract.Sections      `json:"sections"`
	DisableLLM bool                  `json:"disable_llm,omitempty"`
}

type ParseFieldsOutput struct {
	Draft             session.Draft `json:"draft"`
	FallbackCalls     int           `json:"fallback_calls"`
	FallbackErrorType string        `json:"fallback_error_type,omitempty"`
}

type MatchRosterInput struct {
	Draft session.Draft `json:"draft"`
}

type MatchRosterOutput struct {
	Draft     session.Draft `json:"draft"`
	Matched   int           `json:"matched"`
	Unmatched []string      `json:"unmatched,omitempty"`
}

type SaveDraftInput struct {
	ProtocolID string        `json:"protocol_id"`
	Draft      session.Draft `json:"draft"`
}

type WriteProtocolArtifactsInput struct {
	ProtocolID     string                `json:"protocol_id"`
	Draft          session.Draft         `json:"draft"`
	NormalizedText string                `json:"normalized_text,omitempty"`
	Marks          []models.ReversalMark `json:"marks,omitempty"`
	ProcessingLog  map[string]any        `json:"processing_log"`
}

type UpdateProtocolStatusInput struct {
	ProtocolID string `json:"protocol_id"`
	Filename   string `json:"filename,omitempty"`
	MeetingNo  string `json:"meeting_no,omitempty"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
}
