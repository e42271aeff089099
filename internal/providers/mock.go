package providers

import (
	"context"
	"regexp"
	"strings"

	"protoflow/internal/extract"
	"protoflow/internal/util"
)

// MockProvider answers deterministically from cheap text scans so the whole
// pipeline runs without a model. Kinds it cannot read out of the text come
// back empty with zero confidence, which the extractors discard.
type MockProvider struct{}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

var (
	mockDateRe   = regexp.MustCompile(`\d{1,2}[./]\d{1,2}[./]\d{2,4}`)
	mockNumberRe = regexp.MustCompile(`\d{1,3}`)
	mockAmountRe = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d{4,}`)
)

func (m *MockProvider) Extract(ctx context.Context, req FieldRequest) (FieldResult, ProviderInfo, error) {
	_ = ctx
	info := ProviderInfo{Name: "mock", Model: "mock-extract-v1", Key: "mock"}
	var value string
	switch req.Kind {
	case extract.KindVote:
		value = `{"type":"counted","yes":0,"no":0,"abstain":0}`
		if strings.Contains(req.Text, "פה אחד") || strings.Contains(req.Text, "דחא הפ") {
			value = `{"type":"unanimous","yes":0,"no":0,"abstain":0}`
		}
	case extract.KindDecision:
		value = "לא התקבלה החלטה"
	case extract.KindMeetingDate:
		value = mockDateRe.FindString(req.Text)
	case extract.KindMeetingNumber:
		value = mockNumberRe.FindString(req.Text)
	case extract.KindBudget:
		value = mockAmountRe.FindString(req.Text)
	case extract.KindPersonName:
		if lines := util.FirstLines(req.Text, 1); len(lines) > 0 {
			value = lines[0]
		}
	}
	conf := 0.9
	if value == "" {
		conf = 0
	}
	return FieldResult{Value: value, Confidence: conf}, info, nil
}
