// Package llm abstracts the natural-language generation collaborators the
// tutor depends on. The core treats providers as opaque oracles; this
// package owns the provider SDKs, retry policy, and response validation.
package llm

import (
	"context"
	"encoding/json"
)

// Provider is the single abstraction over LLM backends.
type Provider interface {
	// Generate sends a prompt and returns the model output. When the
	// request carries a Schema, the provider uses its native structured
	// output mechanism and the response Content is validated JSON;
	// otherwise Content is the raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes one generation call.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Tutor calls are single-turn: one user
	// message.
	Messages []Message

	// Schema, when set, constrains the output to JSON conforming to it.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0,1]; zero means deterministic.
	Temperature float64
}

// Message is one conversation entry.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names and defines a JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case.
	Name string

	// Description guides generation.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model output.
type Response struct {
	// Content is validated JSON when the request had a Schema, raw text
	// otherwise.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text, stripping the JSON
// string quoting if present.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return string(r.Content)
}
