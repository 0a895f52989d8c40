package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is an AI backend. Implementations translate Request to their
// SDK and classify failures into this package's error types; schema
// conformance is checked once, by ValidatingProvider.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

type Request struct {
	System string

	// Messages alternate user and assistant turns. Generators send a
	// single user message; the tutor replays the conversation.
	Messages []Message

	// Schema asks the backend for JSON in this shape through its native
	// structured output. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 leaves the backend default
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema. Name doubles as the compiled-schema
// cache key, so it must be unique per definition ("enem-questions").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

type Response struct {
	// Content is the JSON document for schema-bound requests, the raw
	// text otherwise.
	Content json.RawMessage

	Usage      Usage
	Model      string // model that actually served the call
	StopReason string // StopEnd or StopMaxTokens
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns free-text content with surrounding whitespace removed.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Content))
}
