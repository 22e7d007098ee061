package llm

import (
	"context"
	"time"

	"github.com/zc277584121/langchain/messages"
)

// ToolSchema describes one tool offered to the model.
type ToolSchema struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  []byte `json:"parameters,omitempty"` // JSON Schema
}

// ChatRequest is a provider-agnostic chat completion request.
type ChatRequest struct {
	Model       string             `json:"model"`
	Messages    []messages.Message `json:"messages"`
	MaxTokens   int                `json:"max_tokens,omitempty"`
	Temperature float32            `json:"temperature,omitempty"`
	TopP        float32            `json:"top_p,omitempty"`
	Stop        []string           `json:"stop,omitempty"`
	Tools       []ToolSchema       `json:"tools,omitempty"`
	ToolChoice  string             `json:"tool_choice,omitempty"` // auto/none/<tool name>
	Metadata    map[string]string  `json:"metadata,omitempty"`
}

// ChatUsage reports token accounting for one response.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// Add accumulates usage reported across stream chunks.
func (u ChatUsage) Add(other ChatUsage) ChatUsage {
	return ChatUsage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// ChatResponse is a complete, non-streamed model response.
type ChatResponse struct {
	ID           string           `json:"id,omitempty"`
	Provider     string           `json:"provider,omitempty"`
	Model        string           `json:"model"`
	Message      messages.Message `json:"message"`
	FinishReason string           `json:"finish_reason,omitempty"`
	Usage        ChatUsage        `json:"usage,omitempty"`
	CreatedAt    time.Time        `json:"created_at,omitempty"`
}

// StreamChunk is one partial payload of a streamed reply. The delta is a
// mergeable message chunk; the terminal chunk may carry usage. A non-nil Err
// aborts the stream.
type StreamChunk struct {
	ID           string                `json:"id,omitempty"`
	Provider     string                `json:"provider,omitempty"`
	Model        string                `json:"model,omitempty"`
	Delta        messages.MessageChunk `json:"delta"`
	FinishReason string                `json:"finish_reason,omitempty"`
	Usage        *ChatUsage            `json:"usage,omitempty"`
	Err          error                 `json:"-"`
}

// Provider is the unified adapter interface for one LLM backend. Adapters
// own the mapping from raw provider payloads to message chunks; this module
// only consumes the resulting stream.
type Provider interface {
	// Completion issues a synchronous chat request.
	Completion(ctx context.Context, req *ChatRequest) (*ChatResponse, error)

	// Stream issues a streaming chat request. The returned channel is closed
	// by the provider when the stream ends.
	Stream(ctx context.Context, req *ChatRequest) (<-chan StreamChunk, error)

	// Name returns the provider's unique identifier.
	Name() string
}
