// Package textutils provides text cleanup helpers for LLM responses.
package textutils

import "strings"

// StripCodeFence removes a surrounding Markdown code fence from a model
// response, if present. Models routinely wrap JSON in ```json fences even
// when told not to, so every pass strips before decoding.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = text[len("```json"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}
	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}
	return strings.TrimSpace(text)
}
