package llm

import "strings"

// Message represents a single message in an LLM conversation.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the text content of the message.
	Content string

	// Name is an optional participant name (for multi-speaker contexts).
	Name string
}

// CutAtStop truncates text at the earliest occurrence of any stop sequence.
// Adapters use it to emulate stop sequences for backends that do not accept
// them natively. The stop sequence itself is removed.
func CutAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}

// ModelCapabilities describes what an LLM model supports.
type ModelCapabilities struct {
	// ContextWindow is the maximum token count for input + output.
	ContextWindow int

	// MaxOutputTokens is the maximum tokens the model can generate in one
	// completion.
	MaxOutputTokens int

	// SupportsTopP indicates that the backend forwards nucleus sampling
	// parameters. Requests against backends without it silently drop TopP.
	SupportsTopP bool
}
