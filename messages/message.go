package messages

// MessageType identifies the role of a message participant. The set is
// closed: every message and chunk is exactly one of these kinds.
type MessageType string

const (
	TypeSystem   MessageType = "system"
	TypeHuman    MessageType = "human"
	TypeAI       MessageType = "ai"
	TypeFunction MessageType = "function"
	TypeTool     MessageType = "tool"
	// TypeChat carries an arbitrary string sub-role in Role.
	TypeChat MessageType = "chat"
	// TypeGeneric is the wildcard kind for payloads whose role is not yet
	// known; during combination it adopts the concrete kind of its peer.
	TypeGeneric MessageType = "generic"
)

// Message is a finalized, immutable unit of conversational content.
//
// Content is homogeneous per instance: plain text or a block sequence,
// never mixed. Role is only meaningful for chat and generic messages,
// ToolCallID for tool messages, ToolCalls/InvalidToolCalls for ai messages,
// Example for human and ai messages.
type Message struct {
	Type             MessageType       `json:"-"`
	Content          Content           `json:"content"`
	AdditionalKwargs map[string]any    `json:"additional_kwargs,omitempty"`
	ResponseMetadata map[string]any    `json:"response_metadata,omitempty"`
	Name             string            `json:"name,omitempty"`
	ID               string            `json:"id,omitempty"`
	Role             string            `json:"role,omitempty"`
	Example          bool              `json:"example,omitempty"`
	ToolCallID       string            `json:"tool_call_id,omitempty"`
	ToolCalls        []ToolCall        `json:"tool_calls,omitempty"`
	InvalidToolCalls []InvalidToolCall `json:"invalid_tool_calls,omitempty"`
}

// NewSystemMessage creates a system message with text content.
func NewSystemMessage(content string) Message {
	return Message{Type: TypeSystem, Content: Text(content)}
}

// NewHumanMessage creates a human message with text content.
func NewHumanMessage(content string) Message {
	return Message{Type: TypeHuman, Content: Text(content)}
}

// NewAIMessage creates an ai message with text content.
func NewAIMessage(content string) Message {
	return Message{Type: TypeAI, Content: Text(content)}
}

// NewFunctionMessage creates a function result message.
func NewFunctionMessage(name, content string) Message {
	return Message{Type: TypeFunction, Name: name, Content: Text(content)}
}

// NewToolMessage creates a tool result message tied to the originating call.
func NewToolMessage(toolCallID, content string) Message {
	return Message{Type: TypeTool, ToolCallID: toolCallID, Content: Text(content)}
}

// NewChatMessage creates a message with an arbitrary role string.
func NewChatMessage(role, content string) Message {
	return Message{Type: TypeChat, Role: role, Content: Text(content)}
}

// WithName returns a copy carrying the identity label.
func (m Message) WithName(name string) Message {
	m.Name = name
	return m
}

// WithID returns a copy carrying the stable identifier.
func (m Message) WithID(id string) Message {
	m.ID = id
	return m
}

// WithContent returns a copy with replaced content.
func (m Message) WithContent(content Content) Message {
	m.Content = content
	return m
}

// WithAdditionalKwargs returns a copy carrying provider-specific fields.
func (m Message) WithAdditionalKwargs(kwargs map[string]any) Message {
	m.AdditionalKwargs = kwargs
	return m
}

// WithResponseMetadata returns a copy carrying response metadata.
func (m Message) WithResponseMetadata(metadata map[string]any) Message {
	m.ResponseMetadata = metadata
	return m
}

// WithToolCalls returns a copy carrying parsed tool calls.
func (m Message) WithToolCalls(calls []ToolCall) Message {
	m.ToolCalls = calls
	return m
}

// WithExample returns a copy flagged as an example exchange.
func (m Message) WithExample(example bool) Message {
	m.Example = example
	return m
}
