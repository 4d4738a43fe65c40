package llm

import (
	"context"
	"errors"
)

// Message is one turn of a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat completion roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Request captures the parameters of a single completion call.
type Request struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// JSONOutput asks the provider for a structured JSON object response.
	JSONOutput bool
}

// Client abstracts a chat completion provider.
type Client interface {
	// Complete runs one completion and returns the raw assistant text.
	Complete(ctx context.Context, req Request) (string, error)
	// Available reports whether the provider is configured with a credential.
	Available() bool
}

// Provider error taxonomy. Provider implementations wrap these so callers can
// branch with errors.Is without ever seeing raw provider payloads.
var (
	ErrUnavailable   = errors.New("llm provider not configured")
	ErrModelNotFound = errors.New("model not available")
	ErrQuotaExceeded = errors.New("quota exceeded")
	ErrAuth          = errors.New("authentication failed")
)

// Disabled is the client used when no provider credential is configured.
// Every call fails with ErrUnavailable so callers take their deterministic
// fallback paths instead of silently producing empty output.
type Disabled struct{}

// Complete always fails with ErrUnavailable.
func (Disabled) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrUnavailable
}

// Available reports false.
func (Disabled) Available() bool { return false }

var _ Client = Disabled{}
