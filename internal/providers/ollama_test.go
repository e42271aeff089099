package providers

import "testing"

func TestResolveOllamaModelDefault(t *testing.T) {
	t.Setenv("PROTOFLOW_OLLAMA_MODEL", "")
	if got := resolveOllamaModel(""); got != "gemma3:1b" {
		t.Fatalf("expected default gemma3:1b, got %q", got)
	}
}

func TestResolveOllamaModelDirect(t *testing.T) {
	t.Setenv("PROTOFLOW_OLLAMA_MODEL", "")
	// A tagged model name in the provider list is used as-is.
	if got := resolveOllamaModel("qwen2.5:3b"); got != "qwen2.5:3b" {
		t.Fatalf("expected direct model, got %q", got)
	}
	if got := resolveOllamaModel("llama"); got != "llama3.2:1b" {
		t.Fatalf("expected alias shortcut, got %q", got)
	}
}

func TestResolveOllamaModelAliasEnv(t *testing.T) {
	t.Setenv("PROTOFLOW_OLLAMA_MODEL_GEMMA3_1B", "gemma3:4b")
	if got := resolveOllamaModel("gemma3:1b"); got != "gemma3:4b" {
		t.Fatalf("alias env should override, got %q", got)
	}
}
