package history

import (
	"context"
	"sync"

	"github.com/zc277584121/langchain/messages"
)

// MemoryChatHistory keeps the transcript in process memory. Safe for
// concurrent use; gone when the process exits.
type MemoryChatHistory struct {
	mu   sync.RWMutex
	msgs []messages.Message
}

// NewMemoryChatHistory creates an empty in-memory history.
func NewMemoryChatHistory() *MemoryChatHistory {
	return &MemoryChatHistory{}
}

func (h *MemoryChatHistory) AddMessage(_ context.Context, msg messages.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msg)
	return nil
}

func (h *MemoryChatHistory) AddMessages(ctx context.Context, msgs []messages.Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, msgs...)
	return nil
}

func (h *MemoryChatHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewHumanMessage(text))
}

func (h *MemoryChatHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewAIMessage(text))
}

func (h *MemoryChatHistory) Messages(_ context.Context) ([]messages.Message, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]messages.Message, len(h.msgs))
	copy(out, h.msgs)
	return out, nil
}

func (h *MemoryChatHistory) Clear(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = nil
	return nil
}
