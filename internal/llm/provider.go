// Package llm provides the chat-completion adapter for pocketfin.
//
// The engine treats the completion service as untrusted text in, untrusted
// text out: nothing the model says is persisted without re-derivation by the
// extraction layer. This package only moves messages across the wire.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Message roles. These mirror the wire roles of every OpenAI-compatible API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrTimeout reports that the completion call exceeded its deadline.
// The HTTP layer maps this to 504; every other upstream failure is a 500.
var ErrTimeout = errors.New("completion request timed out")

// CompletionOpts configures a single completion request.
type CompletionOpts struct {
	MaxTokens   int           // Max tokens to generate (0 = provider default)
	Temperature float64       // 0.0-2.0 (0 = deterministic)
	Model       string        // Override model for this request (empty = provider default)
	System      string        // System prompt prepended to the message list
	Timeout     time.Duration // Per-request deadline (0 = rely on ctx)
}

// Provider is the interface for chat completions.
type Provider interface {
	// Complete sends the ordered message list and returns the reply text.
	Complete(ctx context.Context, messages []Message, opts CompletionOpts) (string, error)
	// Name returns a human-readable provider name (e.g. "openai/gpt-4o-mini").
	Name() string
}

// Config holds provider configuration.
type Config struct {
	Provider string // "openai", "openrouter"
	Model    string // e.g. "gpt-4o-mini", "openai/gpt-4o-mini"
	APIKey   string // API key (empty = read from env)
	BaseURL  string // Optional URL override
	Referrer string // OpenRouter attribution header (optional)
	Title    string // OpenRouter attribution header (optional)
}

// NewProvider creates an LLM provider from the given config.
func NewProvider(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "openai":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return newOpenAIProvider("openai", key, cfg.BaseURL, model, "", ""), nil

	case "openrouter":
		key := cfg.APIKey
		if key == "" {
			key = os.Getenv("OPENROUTER_API_KEY")
		}
		if key == "" {
			return nil, fmt.Errorf("openrouter provider requires OPENROUTER_API_KEY env var")
		}
		model := cfg.Model
		if model == "" {
			model = "openai/gpt-4o-mini"
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://openrouter.ai/api/v1"
		}
		return newOpenAIProvider("openrouter", key, baseURL, model, cfg.Referrer, cfg.Title), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q (want openai or openrouter)", cfg.Provider)
	}
}
