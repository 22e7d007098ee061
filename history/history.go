package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zc277584121/langchain/messages"
)

// ChatMessageHistory stores the ordered message transcript of one session.
type ChatMessageHistory interface {
	// AddMessage appends one message to the session transcript.
	AddMessage(ctx context.Context, msg messages.Message) error

	// AddMessages appends several messages in order.
	AddMessages(ctx context.Context, msgs []messages.Message) error

	// AddUserMessage appends a human message with the given text.
	AddUserMessage(ctx context.Context, text string) error

	// AddAIMessage appends an ai message with the given text.
	AddAIMessage(ctx context.Context, text string) error

	// Messages returns the full transcript in insertion order.
	Messages(ctx context.Context) ([]messages.Message, error)

	// Clear removes the session transcript.
	Clear(ctx context.Context) error
}

// marshalMessage encodes one message in the persistence wire shape.
func marshalMessage(msg messages.Message) ([]byte, error) {
	item := messages.MessagesToDict([]messages.Message{msg})[0]
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	return data, nil
}

// unmarshalMessage decodes one message from the persistence wire shape.
func unmarshalMessage(data []byte) (messages.Message, error) {
	var item map[string]any
	if err := json.Unmarshal(data, &item); err != nil {
		return messages.Message{}, fmt.Errorf("unmarshal message: %w", err)
	}
	msgs, err := messages.MessagesFromDict([]map[string]any{item})
	if err != nil {
		return messages.Message{}, err
	}
	return msgs[0], nil
}
