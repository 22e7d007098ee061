package messages

import (
	"github.com/zc277584121/langchain/internal/merge"
)

// MessageChunk is a partial, mergeable fragment of a message produced during
// streamed generation. It mirrors Message field for field plus the raw
// tool-call fragments; a finalized chunk converts to a Message via ToMessage.
//
// Chunks are never mutated: Combine returns a fresh value each step, so a
// caller may fold independent streams concurrently without locking.
type MessageChunk struct {
	Type             MessageType     `json:"-"`
	Content          Content         `json:"content"`
	AdditionalKwargs map[string]any  `json:"additional_kwargs,omitempty"`
	ResponseMetadata map[string]any  `json:"response_metadata,omitempty"`
	Name             string          `json:"name,omitempty"`
	ID               string          `json:"id,omitempty"`
	Role             string          `json:"role,omitempty"`
	Example          bool            `json:"example,omitempty"`
	ToolCallID       string          `json:"tool_call_id,omitempty"`
	ToolCallChunks   []ToolCallChunk `json:"tool_call_chunks,omitempty"`
}

// NewAIMessageChunk creates an ai chunk with a text delta.
func NewAIMessageChunk(content string) MessageChunk {
	return MessageChunk{Type: TypeAI, Content: Text(content)}
}

// NewHumanMessageChunk creates a human chunk with a text delta.
func NewHumanMessageChunk(content string) MessageChunk {
	return MessageChunk{Type: TypeHuman, Content: Text(content)}
}

// NewSystemMessageChunk creates a system chunk with a text delta.
func NewSystemMessageChunk(content string) MessageChunk {
	return MessageChunk{Type: TypeSystem, Content: Text(content)}
}

// NewChatMessageChunk creates a chunk with an arbitrary role string.
func NewChatMessageChunk(role, content string) MessageChunk {
	return MessageChunk{Type: TypeChat, Role: role, Content: Text(content)}
}

// NewFunctionMessageChunk creates a function result chunk.
func NewFunctionMessageChunk(name, content string) MessageChunk {
	return MessageChunk{Type: TypeFunction, Name: name, Content: Text(content)}
}

// NewToolMessageChunk creates a tool result chunk.
func NewToolMessageChunk(toolCallID, content string) MessageChunk {
	return MessageChunk{Type: TypeTool, ToolCallID: toolCallID, Content: Text(content)}
}

// NewGenericMessageChunk creates a wildcard chunk for a payload whose role is
// not yet known.
func NewGenericMessageChunk(role, content string) MessageChunk {
	return MessageChunk{Type: TypeGeneric, Role: role, Content: Text(content)}
}

// WithToolCallChunks returns a copy carrying tool-call fragments.
func (c MessageChunk) WithToolCallChunks(chunks []ToolCallChunk) MessageChunk {
	c.ToolCallChunks = chunks
	return c
}

// WithAdditionalKwargs returns a copy carrying provider-specific fields.
func (c MessageChunk) WithAdditionalKwargs(kwargs map[string]any) MessageChunk {
	c.AdditionalKwargs = kwargs
	return c
}

// WithResponseMetadata returns a copy carrying response metadata.
func (c MessageChunk) WithResponseMetadata(metadata map[string]any) MessageChunk {
	c.ResponseMetadata = metadata
	return c
}

// WithID returns a copy carrying the stable identifier.
func (c MessageChunk) WithID(id string) MessageChunk {
	c.ID = id
	return c
}

// WithName returns a copy carrying the identity label.
func (c MessageChunk) WithName(name string) MessageChunk {
	c.Name = name
	return c
}

// WithExample returns a copy flagged as an example exchange.
func (c MessageChunk) WithExample(example bool) MessageChunk {
	c.Example = example
	return c
}

// Combine merges two streamed chunks into one, the accumulation step of the
// fold driving a streamed response.
//
// Kind compatibility:
//   - equal kinds combine when their discriminants match (chat: Role,
//     function: Name, tool: ToolCallID, ai and human: Example); a mismatch
//     is a ROLE_CONFLICT error since the intent is ambiguous;
//   - a generic wildcard on either side adopts the concrete peer's kind and
//     discriminant;
//   - a chat chunk combines with any other kind, the left operand's kind and
//     discriminant winning;
//   - any other pairing is rejected with a ROLE_CONFLICT error.
func Combine(a, b MessageChunk) (MessageChunk, error) {
	out, err := combinedShape(a, b)
	if err != nil {
		return MessageChunk{}, err
	}

	content, err := mergeContent(a.Content, b.Content)
	if err != nil {
		return MessageChunk{}, NewError(ErrCodeTypeMismatch, "merge content").WithCause(err)
	}
	out.Content = content

	kwargs, err := merge.Dicts(a.AdditionalKwargs, b.AdditionalKwargs)
	if err != nil {
		return MessageChunk{}, NewError(ErrCodeTypeMismatch, "merge additional_kwargs").WithCause(err)
	}
	if len(kwargs) > 0 {
		out.AdditionalKwargs = kwargs
	}

	metadata, err := merge.Dicts(a.ResponseMetadata, b.ResponseMetadata)
	if err != nil {
		return MessageChunk{}, NewError(ErrCodeTypeMismatch, "merge response_metadata").WithCause(err)
	}
	if len(metadata) > 0 {
		out.ResponseMetadata = metadata
	}

	out.ToolCallChunks = mergeToolCallChunks(a.ToolCallChunks, b.ToolCallChunks)

	// An id names one logical message across all its fragments: first
	// non-empty wins, ids are never concatenated.
	out.ID = firstNonEmpty(a.ID, b.ID)
	if out.Type != TypeFunction {
		out.Name = firstNonEmpty(a.Name, b.Name)
	}
	return out, nil
}

// combinedShape resolves the result kind and discriminant fields per the
// compatibility rules, before any field merging happens.
func combinedShape(a, b MessageChunk) (MessageChunk, error) {
	switch {
	case a.Type == b.Type:
		switch a.Type {
		case TypeChat, TypeGeneric:
			if a.Role != b.Role {
				return MessageChunk{}, roleConflictf(
					"cannot combine chat chunks with different roles %q and %q", a.Role, b.Role)
			}
		case TypeFunction:
			if a.Name != b.Name {
				return MessageChunk{}, roleConflictf(
					"cannot combine function chunks with different names %q and %q", a.Name, b.Name)
			}
		case TypeTool:
			if a.ToolCallID != b.ToolCallID {
				return MessageChunk{}, roleConflictf(
					"cannot combine tool chunks with different tool_call_ids %q and %q", a.ToolCallID, b.ToolCallID)
			}
		case TypeAI, TypeHuman:
			if a.Example != b.Example {
				return MessageChunk{}, roleConflictf(
					"cannot combine %s chunks with different example values", a.Type)
			}
		}
		return shapeOf(a), nil
	case a.Type == TypeGeneric:
		// The wildcard adopts the concrete peer.
		return shapeOf(b), nil
	case b.Type == TypeGeneric:
		return shapeOf(a), nil
	case a.Type == TypeChat || b.Type == TypeChat:
		// Chat absorbs across kinds; the left operand wins.
		return shapeOf(a), nil
	default:
		return MessageChunk{}, roleConflictf(
			"cannot combine message chunks of kinds %q and %q", a.Type, b.Type)
	}
}

// shapeOf copies only the kind and discriminant fields of a chunk.
func shapeOf(c MessageChunk) MessageChunk {
	return MessageChunk{
		Type:       c.Type,
		Role:       c.Role,
		Example:    c.Example,
		Name:       c.Name,
		ToolCallID: c.ToolCallID,
	}
}

// CombineAll left-folds Combine over a chunk sequence.
func CombineAll(chunks ...MessageChunk) (MessageChunk, error) {
	if len(chunks) == 0 {
		return MessageChunk{Type: TypeGeneric}, nil
	}
	acc := chunks[0]
	for _, next := range chunks[1:] {
		var err error
		acc, err = Combine(acc, next)
		if err != nil {
			return MessageChunk{}, err
		}
	}
	return acc, nil
}

// ToMessage finalizes an accumulated chunk into an immutable Message.
// Tool-call fragments are parsed into ToolCalls; fragments whose arguments
// fail to parse become InvalidToolCalls instead of failing the whole
// finalization. A generic chunk finalizes as a chat message so the role
// string survives.
func (c MessageChunk) ToMessage() Message {
	msg := Message{
		Type:             c.Type,
		Content:          c.Content,
		AdditionalKwargs: c.AdditionalKwargs,
		ResponseMetadata: c.ResponseMetadata,
		Name:             c.Name,
		ID:               c.ID,
		Role:             c.Role,
		Example:          c.Example,
		ToolCallID:       c.ToolCallID,
	}
	if c.Type == TypeGeneric {
		msg.Type = TypeChat
	}
	if c.Type == TypeAI {
		for _, chunk := range c.ToolCallChunks {
			call, invalid := parseToolCallChunk(chunk)
			if invalid != nil {
				msg.InvalidToolCalls = append(msg.InvalidToolCalls, *invalid)
				continue
			}
			msg.ToolCalls = append(msg.ToolCalls, call)
		}
	}
	return msg
}

// ToChunk converts a finalized message back into a single chunk, e.g. to
// seed an accumulator with an already-known prefix.
func (m Message) ToChunk() MessageChunk {
	chunk := MessageChunk{
		Type:             m.Type,
		Content:          m.Content,
		AdditionalKwargs: m.AdditionalKwargs,
		ResponseMetadata: m.ResponseMetadata,
		Name:             m.Name,
		ID:               m.ID,
		Role:             m.Role,
		Example:          m.Example,
		ToolCallID:       m.ToolCallID,
	}
	for _, call := range m.ToolCalls {
		chunk.ToolCallChunks = append(chunk.ToolCallChunks, ToolCallChunk{
			Name: call.Name,
			Args: marshalArgs(call.Args),
			ID:   call.ID,
		})
	}
	return chunk
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
