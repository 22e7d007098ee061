package messages

import (
	"fmt"
)

// roleAliases maps accepted role/type strings to message kinds.
var roleAliases = map[string]MessageType{
	"system":    TypeSystem,
	"human":     TypeHuman,
	"user":      TypeHuman,
	"ai":        TypeAI,
	"assistant": TypeAI,
	"function":  TypeFunction,
	"tool":      TypeTool,
	"chat":      TypeChat,
	"generic":   TypeChat,
}

// ConvertToMessages normalizes a heterogeneous item sequence into typed
// messages. Accepted item forms:
//   - Message: passed through unchanged
//   - MessageChunk: finalized via ToMessage
//   - string: becomes a human message
//   - [role, content] pair ([]string, [2]string, or []any of length 2)
//   - role-tagged map with "role" or "type" plus "content" and optional
//     "name", "id", "tool_call_id", "tool_calls", "function_call", "example"
//
// An unrecognized role string fails with an UNSUPPORTED_ROLE error.
func ConvertToMessages(items ...any) ([]Message, error) {
	msgs := make([]Message, 0, len(items))
	for i, item := range items {
		msg, err := convertToMessage(item)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func convertToMessage(item any) (Message, error) {
	switch v := item.(type) {
	case Message:
		return v, nil
	case MessageChunk:
		return v.ToMessage(), nil
	case string:
		return NewHumanMessage(v), nil
	case [2]string:
		return messageFromPair(v[0], v[1])
	case []string:
		if len(v) != 2 {
			return Message{}, invalidMessagef("message pair must have 2 elements, got %d", len(v))
		}
		return messageFromPair(v[0], v[1])
	case []any:
		if len(v) != 2 {
			return Message{}, invalidMessagef("message pair must have 2 elements, got %d", len(v))
		}
		role, ok := v[0].(string)
		if !ok {
			return Message{}, invalidMessagef("message pair role is %T, expected string", v[0])
		}
		return messageFromPair(role, v[1])
	case map[string]any:
		return messageFromMap(v)
	default:
		return Message{}, invalidMessagef("unsupported message item type %T", item)
	}
}

func messageFromPair(role string, content any) (Message, error) {
	c, err := contentFromValue(content)
	if err != nil {
		return Message{}, err
	}
	return messageFromFields(role, "", map[string]any{}, c)
}

func messageFromMap(m map[string]any) (Message, error) {
	// The kind may arrive under "role" or "type". When "role" holds an
	// unrecognized string but "type" resolves, "role" is the chat sub-role.
	roleVal, hasRole := stringField(m, "role")
	typeVal, hasType := stringField(m, "type")

	var kind, subRole string
	switch {
	case hasRole && roleAliases[roleVal] != "":
		kind = roleVal
	case hasType:
		kind = typeVal
		subRole = roleVal
	case hasRole:
		return Message{}, unsupportedRolef("unsupported message role %q", roleVal)
	default:
		return Message{}, invalidMessagef("message map needs a %q or %q key", "role", "type")
	}

	content, err := contentFromValue(m["content"])
	if err != nil {
		return Message{}, err
	}
	return messageFromFields(kind, subRole, m, content)
}

// messageFromFields builds a typed message from a resolved kind string plus
// the remaining optional fields of a dict-form message.
func messageFromFields(role, subRole string, m map[string]any, content Content) (Message, error) {
	kind, ok := roleAliases[role]
	if !ok {
		return Message{}, unsupportedRolef("unsupported message role %q", role)
	}

	msg := Message{Type: kind, Content: content}
	msg.Name, _ = stringField(m, "name")
	msg.ID, _ = stringField(m, "id")
	if example, ok := m["example"].(bool); ok {
		msg.Example = example
	}

	switch kind {
	case TypeChat:
		if subRole == "" {
			return Message{}, invalidMessagef("chat message needs a %q field", "role")
		}
		msg.Role = subRole
	case TypeTool:
		id, ok := stringField(m, "tool_call_id")
		if !ok {
			return Message{}, invalidMessagef("tool message needs a %q field", "tool_call_id")
		}
		msg.ToolCallID = id
	case TypeAI:
		calls, err := toolCallsFromValue(m["tool_calls"])
		if err != nil {
			return Message{}, err
		}
		msg.ToolCalls = calls
		msg.InvalidToolCalls, err = invalidToolCallsFromValue(m["invalid_tool_calls"])
		if err != nil {
			return Message{}, err
		}
		if fc, ok := m["function_call"].(map[string]any); ok {
			msg.AdditionalKwargs = map[string]any{"function_call": fc}
		}
	}
	return msg, nil
}

// MessagesToDict converts messages to the JSON-compatible persistence shape
// {"type": <role>, "data": {<fields>}}. The result round-trips exactly
// through MessagesFromDict.
func MessagesToDict(msgs []Message) []map[string]any {
	out := make([]map[string]any, len(msgs))
	for i, m := range msgs {
		out[i] = map[string]any{
			"type": string(m.Type),
			"data": messageData(m),
		}
	}
	return out
}

func messageData(m Message) map[string]any {
	data := map[string]any{
		"content": m.Content.contentValue(),
	}
	if len(m.AdditionalKwargs) > 0 {
		data["additional_kwargs"] = m.AdditionalKwargs
	}
	if len(m.ResponseMetadata) > 0 {
		data["response_metadata"] = m.ResponseMetadata
	}
	if m.Name != "" {
		data["name"] = m.Name
	}
	if m.ID != "" {
		data["id"] = m.ID
	}
	if m.Role != "" {
		data["role"] = m.Role
	}
	if m.Example {
		data["example"] = true
	}
	if m.ToolCallID != "" {
		data["tool_call_id"] = m.ToolCallID
	}
	if len(m.ToolCalls) > 0 {
		calls := make([]any, len(m.ToolCalls))
		for i, call := range m.ToolCalls {
			calls[i] = map[string]any{
				"name": call.Name,
				"args": call.Args,
				"id":   call.ID,
				"type": call.Type,
			}
		}
		data["tool_calls"] = calls
	}
	if len(m.InvalidToolCalls) > 0 {
		calls := make([]any, len(m.InvalidToolCalls))
		for i, call := range m.InvalidToolCalls {
			calls[i] = map[string]any{
				"name":  call.Name,
				"args":  call.Args,
				"id":    call.ID,
				"error": call.Error,
			}
		}
		data["invalid_tool_calls"] = calls
	}
	return data
}

// MessagesFromDict rebuilds messages from the persistence shape produced by
// MessagesToDict (or its JSON round trip).
func MessagesFromDict(items []map[string]any) ([]Message, error) {
	msgs := make([]Message, 0, len(items))
	for i, item := range items {
		kind, ok := stringField(item, "type")
		if !ok {
			return nil, invalidMessagef("message %d: missing %q field", i, "type")
		}
		data, ok := item["data"].(map[string]any)
		if !ok {
			return nil, invalidMessagef("message %d: missing %q field", i, "data")
		}
		msg, err := messageFromData(kind, data)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func messageFromData(kind string, data map[string]any) (Message, error) {
	mt, ok := roleAliases[kind]
	if !ok {
		return Message{}, unsupportedRolef("unsupported message type %q", kind)
	}
	if kind == "generic" {
		mt = TypeGeneric
	}
	content, err := contentFromValue(data["content"])
	if err != nil {
		return Message{}, err
	}
	msg := Message{Type: mt, Content: content}
	if kwargs, ok := data["additional_kwargs"].(map[string]any); ok && len(kwargs) > 0 {
		msg.AdditionalKwargs = kwargs
	}
	if metadata, ok := data["response_metadata"].(map[string]any); ok && len(metadata) > 0 {
		msg.ResponseMetadata = metadata
	}
	msg.Name, _ = stringField(data, "name")
	msg.ID, _ = stringField(data, "id")
	msg.Role, _ = stringField(data, "role")
	if example, ok := data["example"].(bool); ok {
		msg.Example = example
	}
	msg.ToolCallID, _ = stringField(data, "tool_call_id")
	if msg.ToolCalls, err = toolCallsFromValue(data["tool_calls"]); err != nil {
		return Message{}, err
	}
	if msg.InvalidToolCalls, err = invalidToolCallsFromValue(data["invalid_tool_calls"]); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func toolCallsFromValue(v any) ([]ToolCall, error) {
	switch calls := v.(type) {
	case nil:
		return nil, nil
	case []ToolCall:
		return calls, nil
	case []any:
		out := make([]ToolCall, 0, len(calls))
		for i, c := range calls {
			m, ok := c.(map[string]any)
			if !ok {
				return nil, invalidMessagef("tool call %d is %T, expected a mapping", i, c)
			}
			call := ToolCall{Type: "tool_call"}
			call.Name, _ = stringField(m, "name")
			call.ID, _ = stringField(m, "id")
			if t, ok := stringField(m, "type"); ok && t != "" {
				call.Type = t
			}
			if args, ok := m["args"].(map[string]any); ok {
				call.Args = args
			}
			out = append(out, call)
		}
		return out, nil
	default:
		return nil, invalidMessagef("tool_calls is %T, expected a list", v)
	}
}

func invalidToolCallsFromValue(v any) ([]InvalidToolCall, error) {
	switch calls := v.(type) {
	case nil:
		return nil, nil
	case []InvalidToolCall:
		return calls, nil
	case []any:
		out := make([]InvalidToolCall, 0, len(calls))
		for i, c := range calls {
			m, ok := c.(map[string]any)
			if !ok {
				return nil, invalidMessagef("invalid tool call %d is %T, expected a mapping", i, c)
			}
			var call InvalidToolCall
			call.Name, _ = stringField(m, "name")
			call.Args, _ = stringField(m, "args")
			call.ID, _ = stringField(m, "id")
			call.Error, _ = stringField(m, "error")
			out = append(out, call)
		}
		return out, nil
	default:
		return nil, invalidMessagef("invalid_tool_calls is %T, expected a list", v)
	}
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
