package tokenizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/zc277584121/langchain/messages"
)

// Tokenizer is the unified token counting interface.
type Tokenizer interface {
	// CountTokens returns the token count of the given text.
	CountTokens(text string) (int, error)

	// CountMessages returns the total token count of a message list,
	// including the per-message overhead of role markers and separators.
	CountMessages(msgs []messages.Message) (int, error)

	// Encode converts text to a list of token IDs.
	Encode(text string) ([]int, error)

	// Decode converts token IDs back to text.
	Decode(tokens []int) (string, error)

	// MaxTokens returns the model's maximum context length.
	MaxTokens() int

	// Name returns the tokenizer's name.
	Name() string
}

var (
	modelTokenizers   = make(map[string]Tokenizer)
	modelTokenizersMu sync.RWMutex
)

// Register registers a tokenizer for the given model name.
func Register(model string, t Tokenizer) {
	modelTokenizersMu.Lock()
	defer modelTokenizersMu.Unlock()
	modelTokenizers[model] = t
}

// Get returns the tokenizer registered for the given model. Prefix matching
// is tried as well, so "gpt-4o" covers "gpt-4o-2024-11-20".
func Get(model string) (Tokenizer, error) {
	modelTokenizersMu.RLock()
	defer modelTokenizersMu.RUnlock()

	if t, ok := modelTokenizers[model]; ok {
		return t, nil
	}
	for prefix, t := range modelTokenizers {
		if strings.HasPrefix(model, prefix) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("no tokenizer registered for model: %s", model)
}

// GetOrEstimator returns the registered tokenizer for the model, falling
// back to the generic estimator when none is registered.
func GetOrEstimator(model string) Tokenizer {
	t, err := Get(model)
	if err != nil {
		return NewEstimator(model, 0)
	}
	return t
}

// messageText flattens a message's content to countable text. Block content
// contributes the text of its text blocks.
func messageText(m messages.Message) string {
	if !m.Content.IsBlocks() {
		return m.Content.Text()
	}
	var sb strings.Builder
	for _, block := range m.Content.Blocks() {
		if block["type"] == "text" {
			if s, ok := block["text"].(string); ok {
				sb.WriteString(s)
			}
		}
	}
	return sb.String()
}

// messageRole resolves the role string counted for a message.
func messageRole(m messages.Message) string {
	if m.Type == messages.TypeChat || m.Type == messages.TypeGeneric {
		return m.Role
	}
	return string(m.Type)
}
