package adapter

import (
	"context"
	"regexp"
	"strings"
)

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ModelInfo describes a model.
type ModelInfo struct {
	Name        string
	Description string
	MaxTokens   int
	Supports    []string
}

// StreamHandler receives each text delta as the provider produces it.
type StreamHandler func(delta string)

// AIServiceAdapter is the port for LLM chat.
type AIServiceAdapter interface {
	ListModels(ctx context.Context) ([]string, error)
	GetModelInfo(model string) (ModelInfo, error)

	// CountTokens must return prompt tokens for the provided messages
	// (provider-specific counting; best-effort when exact isn't available).
	CountTokens(ctx context.Context, model string, messages []Message) (int, error)

	// Chat returns only the assistant text.
	Chat(ctx context.Context, model string, messages []Message) (string, error)

	// ChatStream invokes onDelta for every text chunk and returns the full
	// accumulated assistant text once the stream finishes.
	ChatStream(ctx context.Context, model string, messages []Message, onDelta StreamHandler) (string, error)
}

var fenceRe = regexp.MustCompile("^```[a-zA-Z]*\\s*|\\s*```$")

// StripCodeFences removes leading/trailing markdown code fences from a model
// answer so the remainder can be fed to a JSON parser.
func StripCodeFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(strings.TrimSpace(s), ""))
}

// ExtractJSONValue pulls the string value of key out of a loosely formatted
// model answer ("score": "yes", 'score': 'yes', with or without fences).
// It is the regex fallback used when strict JSON parsing fails.
func ExtractJSONValue(raw, key string) (string, bool) {
	re := regexp.MustCompile(`['"]` + regexp.QuoteMeta(key) + `['"]\s*:\s*['"]([^'"]*)['"]`)
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return m[1], true
}
