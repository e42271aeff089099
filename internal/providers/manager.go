package providers

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"protoflow/internal/config"
	"protoflow/internal/extract"
	"protoflow/internal/util"
)

type NamedProvider struct {
	Ref      ProviderRef
	Provider FieldProvider
}

// CallRecord describes one provider attempt for the audit log. RequestID is
// shared by every attempt of a single Extract so failovers stay correlated.
type CallRecord struct {
	RequestID    string
	Operation    string
	ProtocolID   string
	ProviderName string
	Model        string
	Status       string
	ErrorType    string
}

// CallAudit receives one record per provider attempt. Attached right after
// construction; nil is fine.
type CallAudit func(ctx context.Context, rec CallRecord)

// Cooldown windows per error class. The quota window is configurable since
// it must outlast whatever billing period the account is on; context errors
// get none: the caller's deadline died, not the provider.
const (
	cooldownQuotaDefault = 15 * time.Minute
	cooldownRate         = 30 * time.Second
	cooldownTransient    = 5 * time.Second
	cooldownPermanent    = time.Minute
)

// Manager walks the configured providers in preferred order, skipping any
// still cooling down from an earlier failure, and returns the first answer.
type Manager struct {
	providers     []NamedProvider
	audit         CallAudit
	now           func() time.Time
	quotaCooldown time.Duration

	mu       sync.Mutex
	cooldown map[string]time.Time
}

func NewManager(cfg config.Config) (*Manager, error) {
	refs := ParseProviderList(cfg.LLMProviders)
	m := &Manager{
		now:           time.Now,
		quotaCooldown: cooldownQuotaDefault,
		cooldown:      map[string]time.Time{},
	}
	if cfg.ProviderCooldownSecs > 0 {
		m.quotaCooldown = time.Duration(cfg.ProviderCooldownSecs) * time.Second
	}
	for _, ref := range refs {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		m.providers = append(m.providers, NamedProvider{Ref: ref, Provider: p})
	}
	if len(m.providers) == 0 {
		m.providers = []NamedProvider{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

// SetAudit attaches the call audit sink. Not safe to call once Extract runs.
func (m *Manager) SetAudit(fn CallAudit) {
	m.audit = fn
}

func (m *Manager) Count() int {
	return len(m.providers)
}

// Extract tries each usable provider in preferred order and returns the
// first answer. Every failure starts that provider's cooldown; when nothing
// answers the caller gets ErrFallbackUnavailable and degrades to its
// pattern result.
func (m *Manager) Extract(ctx context.Context, req FieldRequest) (FieldResult, error) {
	requestID := uuid.NewString()
	var lastErr error
	for _, i := range m.preferredOrder() {
		np := m.providers[i]
		if m.onCooldown(np.Ref.Name) {
			continue
		}
		res, info, err := np.Provider.Extract(ctx, req)
		m.record(ctx, requestID, req, info, err)
		if err != nil {
			lastErr = err
			m.applyCooldown(np.Ref.Name, ClassifyError(err))
			continue
		}
		return res, nil
	}
	if lastErr != nil {
		return FieldResult{}, fmt.Errorf("%w: %v", util.ErrFallbackUnavailable, lastErr)
	}
	return FieldResult{}, util.ErrFallbackUnavailable
}

// FallbackFor adapts the manager to the extractors' fallback contract,
// stamping every call with the protocol under review.
func (m *Manager) FallbackFor(protocolID string) extract.Fallback {
	return func(ctx context.Context, kind, text string) (string, float64, error) {
		res, err := m.Extract(ctx, FieldRequest{Kind: kind, Text: text, ProtocolID: protocolID})
		if err != nil {
			return "", 0, err
		}
		return res.Value, res.Confidence, nil
	}
}

func (m *Manager) record(ctx context.Context, requestID string, req FieldRequest, info ProviderInfo, err error) {
	if m.audit == nil {
		return
	}
	rec := CallRecord{
		RequestID:    requestID,
		Operation:    req.Kind,
		ProtocolID:   req.ProtocolID,
		ProviderName: info.Name,
		Model:        info.Model,
		Status:       "ok",
	}
	if err != nil {
		rec.Status = "error"
		rec.ErrorType = string(ClassifyError(err))
	}
	m.audit(ctx, rec)
}

func (m *Manager) onCooldown(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.cooldown[name]
	return ok && m.now().Before(until)
}

func (m *Manager) applyCooldown(name string, et ErrorType) {
	var d time.Duration
	switch et {
	case ErrorQuota:
		d = m.quotaCooldown
	case ErrorRate:
		d = cooldownRate
	case ErrorTransient:
		d = cooldownTransient
	case ErrorPermanent:
		d = cooldownPermanent
	default:
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldown[name] = m.now().Add(d)
}

// preferredOrder keeps the configured order but moves mock entries last so a
// deterministic stand-in never shadows a real model.
func (m *Manager) preferredOrder() []int {
	n := len(m.providers)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if strings.ToLower(m.providers[i].Ref.Name) != "mock" {
			out = append(out, i)
		}
	}
	for i := 0; i < n; i++ {
		if strings.ToLower(m.providers[i].Ref.Name) == "mock" {
			out = append(out, i)
		}
	}
	return out
}

func buildProvider(ref ProviderRef) (FieldProvider, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	case "gemini":
		return NewGeminiProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
