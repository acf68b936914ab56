package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is the core abstraction for LLM interaction. The screening
// engine only ever needs short single-turn completions: a categorical
// judgment of a caregiver reply, a simplified hint, or a date rewrite.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the response.
	// When the request's Schema field is set, the provider uses its
	// native structured output mechanism and the response Content is
	// the validated JSON. Otherwise Content is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Screening calls are
	// single-turn, so this contains one user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to.
	// When nil, the response Content is raw text.
	Schema *Schema

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the LLM.
type Schema struct {
	// Name identifies this schema. Kebab-case, e.g. "birth-date".
	Name string

	// Description is sent to the LLM to guide generation.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output. When a Schema was provided in
	// the request, this is the validated JSON object. When no Schema
	// was provided, this is the raw text response.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as a plain string with surrounding
// whitespace trimmed. For schema-less requests this is the model's text.
func (r *Response) Text() string {
	// Undo the quoting some providers add around bare text.
	var unquoted string
	if err := json.Unmarshal(r.Content, &unquoted); err == nil {
		return strings.TrimSpace(unquoted)
	}
	return strings.TrimSpace(string(r.Content))
}
