package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over a remote chat-completion API. The
// engine uses it for two advisory jobs: grading free-text answers and
// synthesizing explanations. Both must degrade gracefully when the
// provider fails, so no caller may treat a Provider result as
// authoritative.
type Provider interface {
	// Generate sends a prompt and returns the model output. When the
	// request carries a Schema, the returned Content is JSON validated
	// against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the configured model identifier.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Prompt is the user message. Grading and explanation are both
	// single-turn, so one message suffices.
	Prompt string

	// Schema, when set, instructs the provider to return JSON
	// conforming to it via the provider's structured output mechanism.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature controls randomness; 0 (the default) is deterministic.
	Temperature float64
}

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema (tool name / schema name, kebab-case).
	Name string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the generated output: validated JSON when a Schema was
	// requested, raw text otherwise.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// resolveModel maps a friendly model name to a provider model ID,
// passing unknown names through so direct IDs keep working.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
