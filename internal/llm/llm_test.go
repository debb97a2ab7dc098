package llm

import (
	"testing"
)

func TestNewProvider_UnknownProvider(t *testing.T) {
	_, err := NewProvider(Config{Provider: "bedrock"})
	if err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewProvider_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected error when no API key is configured")
	}
}

func TestNewProvider_OpenAIDefaults(t *testing.T) {
	p, err := NewProvider(Config{Provider: "openai", APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "openai/gpt-4o-mini" {
		t.Errorf("default model name = %q", p.Name())
	}
}

func TestNewProvider_OpenRouterModelName(t *testing.T) {
	p, err := NewProvider(Config{
		Provider: "openrouter",
		APIKey:   "sk-or-test",
		Model:    "openai/gpt-4o-mini",
		Referrer: "https://pocketfin.app",
		Title:    "pocketfin",
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "openrouter/openai/gpt-4o-mini" {
		t.Errorf("provider name = %q", p.Name())
	}
}
