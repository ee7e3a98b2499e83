// Package llm defines the completion-client contract the pipeline relies on
// and its Ollama and Gemini implementations. The pipeline treats every client
// as an unreliable collaborator: responses are free text with no structural
// guarantee, and each call site must defensively decode and validate.
package llm

import "context"

// Client is the single operation the pipeline needs from an LLM backend.
type Client interface {
	// Complete sends a prompt and returns the raw text response. Any
	// transport-level timeout is owned by the implementation; the pipeline
	// only interprets an error as "this pass or batch failed".
	Complete(ctx context.Context, prompt string) (string, error)

	// Ping reports whether the backend is reachable. The container uses it
	// once, at construction time, to decide between the LLM-driven and the
	// rule-based processor.
	Ping(ctx context.Context) error
}
