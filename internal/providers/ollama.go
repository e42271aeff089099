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
	"time"
)

// OllamaProvider supports local, free extraction via an Ollama daemon.
// Small instruct models (gemma3:1b and up) handle the field prompts fine.
type OllamaProvider struct {
	alias   string
	baseURL string
	model   string
	client  *http.Client
}

func NewOllamaProvider(alias string) *OllamaProvider {
	baseURL := strings.TrimSpace(os.Getenv("PROTOFLOW_OLLAMA_BASE_URL"))
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaProvider{
		alias:   alias,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   resolveOllamaModel(alias),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

func (o *OllamaProvider) Extract(ctx context.Context, req FieldRequest) (FieldResult, ProviderInfo, error) {
	info := ProviderInfo{Name: "ollama", Model: o.model, Key: o.alias}
	payload, _ := json.Marshal(map[string]any{
		"model":  o.model,
		"prompt": promptFor(req.Kind, req.Text),
		"stream": false,
		"options": map[string]any{
			"temperature": 0.1,
			"num_predict": 500,
		},
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return FieldResult{}, info, fmt.Errorf("ollama generate request failed: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode >= 400 {
		return FieldResult{}, info, fmt.Errorf("ollama generate error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return FieldResult{}, info, fmt.Errorf("decode ollama generate response: %w", err)
	}
	if strings.TrimSpace(parsed.Response) == "" {
		return FieldResult{}, info, fmt.Errorf("ollama returned empty response")
	}
	value, isJSON := cleanAnswer(parsed.Response)
	conf := 0.5
	if isJSON {
		conf = 0.75
	}
	return FieldResult{Value: value, Confidence: conf}, info, nil
}

func resolveOllamaModel(alias string) string {
	alias = strings.TrimSpace(alias)
	if alias != "" {
		key := "PROTOFLOW_OLLAMA_MODEL_" + strings.ToUpper(sanitizeEnvToken(alias))
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		switch strings.ToLower(alias) {
		case "gemma":
			return "gemma3:1b"
		case "llama":
			return "llama3.2:1b"
		}
		// Allow direct model in provider list, e.g. ollama:gemma3:1b
		if strings.ContainsAny(alias, ":-/.") {
			return alias
		}
	}
	if v := strings.TrimSpace(os.Getenv("PROTOFLOW_OLLAMA_MODEL")); v != "" {
		return v
	}
	return "gemma3:1b"
}

func sanitizeEnvToken(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, ".", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
