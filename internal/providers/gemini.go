package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// Free-tier budgets for Gemini Flash Lite. The provider refuses a call past
// a budget instead of sleeping on it; waiting is the manager's cooldown job.
const (
	geminiRequestsPerMinute = 15
	geminiDailyRequests     = 1500
	geminiDailyTokens       = 1_000_000
)

type geminiUsage struct {
	minuteStart    time.Time
	minuteRequests int
	day            string
	dayRequests    int
	dayTokens      int
}

// GeminiProvider supports extraction via the Gemini REST API within the
// free-tier request and token budgets.
type GeminiProvider struct {
	keyName string
	apiKey  string
	model   string
	client  *http.Client
	now     func() time.Time

	mu    sync.Mutex
	usage geminiUsage
}

func NewGeminiProvider(keyName string) *GeminiProvider {
	model := strings.TrimSpace(os.Getenv("PROTOFLOW_GEMINI_MODEL"))
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}
	return &GeminiProvider{
		keyName: keyName,
		apiKey:  resolveGeminiKey(keyName),
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Second},
		now:     time.Now,
	}
}

func (g *GeminiProvider) Extract(ctx context.Context, req FieldRequest) (FieldResult, ProviderInfo, error) {
	info := ProviderInfo{Name: "gemini", Model: g.model, Key: g.keyName}
	if g.apiKey == "" {
		return FieldResult{}, info, fmt.Errorf("gemini key missing for alias %q", g.keyName)
	}
	if err := g.checkBudget(); err != nil {
		return FieldResult{}, info, err
	}
	prompt := promptFor(req.Kind, req.Text)
	payload, _ := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":     0.1,
			"maxOutputTokens": 500,
		},
	})
	url := "https://generativelanguage.googleapis.com/v1beta/models/" + g.model + ":generateContent"
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return FieldResult{}, info, fmt.Errorf("gemini generate request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return FieldResult{}, info, fmt.Errorf("gemini generate error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
		UsageMetadata struct {
			TotalTokenCount int `json:"totalTokenCount"`
		} `json:"usageMetadata"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return FieldResult{}, info, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return FieldResult{}, info, fmt.Errorf("gemini returned empty candidates")
	}
	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return FieldResult{}, info, fmt.Errorf("gemini returned empty text")
	}
	tokens := parsed.UsageMetadata.TotalTokenCount
	if tokens == 0 {
		// Rough estimate when the API omits usage metadata.
		tokens = len(strings.Fields(prompt)) + 2*len(strings.Fields(text))
	}
	g.recordUsage(tokens)

	value, isJSON := cleanAnswer(text)
	conf := 0.6
	if isJSON {
		conf = 0.85
	}
	return FieldResult{Value: value, Confidence: conf}, info, nil
}

// checkBudget rolls the minute and day windows forward and rejects a call
// that would cross a budget. Day boundaries follow the local calendar date.
func (g *GeminiProvider) checkBudget() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	today := now.Format("2006-01-02")
	if g.usage.day != today {
		g.usage.day = today
		g.usage.dayRequests = 0
		g.usage.dayTokens = 0
	}
	if g.usage.dayRequests >= geminiDailyRequests {
		return fmt.Errorf("gemini daily request limit reached")
	}
	if g.usage.dayTokens >= geminiDailyTokens {
		return fmt.Errorf("gemini daily token limit reached")
	}
	elapsed := now.Sub(g.usage.minuteStart)
	if elapsed >= time.Minute {
		g.usage.minuteStart = now
		g.usage.minuteRequests = 0
	} else if g.usage.minuteRequests >= geminiRequestsPerMinute {
		return fmt.Errorf("gemini rate limited: retry in %.0fs", (time.Minute - elapsed).Seconds())
	}
	return nil
}

func (g *GeminiProvider) recordUsage(tokens int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.usage.minuteRequests++
	g.usage.dayRequests++
	g.usage.dayTokens += tokens
}

func resolveGeminiKey(alias string) string {
	if alias != "" {
		if v := os.Getenv("PROTOFLOW_GEMINI_KEY_" + strings.ToUpper(sanitizeEnvToken(alias))); v != "" {
			return v
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GOOGLE_API_KEY")
}
