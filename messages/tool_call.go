package messages

import "encoding/json"

// ToolCall is a complete, validated request from the model to invoke a named
// external function with parsed arguments.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
	ID   string         `json:"id,omitempty"`
	Type string         `json:"type,omitempty"`
}

// NewToolCall creates a complete tool call.
func NewToolCall(name string, args map[string]any, id string) ToolCall {
	return ToolCall{Name: name, Args: args, ID: id, Type: "tool_call"}
}

// InvalidToolCall preserves a tool call whose accumulated arguments failed to
// parse or that is missing required fields. Args keeps the raw unparsed
// string; Error describes the failure when one is known.
type InvalidToolCall struct {
	Name  string `json:"name"`
	Args  string `json:"args"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}

// ToolCallChunk is a partial, mergeable fragment of a tool call streamed
// token by token. Index is the positional slot within a batch of parallel
// tool calls; fragments with different slots are never merged. A nil Index
// means the fragment stands alone and always appends.
type ToolCallChunk struct {
	Name  string `json:"name"`
	Args  string `json:"args"`
	ID    string `json:"id,omitempty"`
	Index *int   `json:"index,omitempty"`
}

// NewToolCallChunk creates a fragment for the given slot.
func NewToolCallChunk(name, args, id string, index int) ToolCallChunk {
	return ToolCallChunk{Name: name, Args: args, ID: id, Index: &index}
}

// mergeToolCallChunks pairs right-side fragments with left-side fragments
// sharing the same index and concatenates their string fields; everything
// else appends in first-seen order. Diverging names at the same index still
// concatenate rather than reject.
func mergeToolCallChunks(left, right []ToolCallChunk) []ToolCallChunk {
	if len(left) == 0 && len(right) == 0 {
		return nil
	}
	merged := make([]ToolCallChunk, len(left))
	copy(merged, left)
	for _, r := range right {
		pos := -1
		if r.Index != nil {
			for i, l := range merged {
				if l.Index != nil && *l.Index == *r.Index {
					pos = i
					break
				}
			}
		}
		if pos < 0 {
			merged = append(merged, r)
			continue
		}
		l := merged[pos]
		l.Name += r.Name
		l.Args += r.Args
		l.ID += r.ID
		merged[pos] = l
	}
	return merged
}

// marshalArgs renders parsed arguments back to their raw JSON form.
func marshalArgs(args map[string]any) string {
	if args == nil {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// parseToolCallChunk finalizes one accumulated fragment. Missing args default
// to "{}". A JSON object with a known name yields a ToolCall; anything else
// yields an InvalidToolCall carrying the raw argument string and, when
// available, the parse error text.
func parseToolCallChunk(chunk ToolCallChunk) (ToolCall, *InvalidToolCall) {
	raw := chunk.Args
	if raw == "" {
		raw = "{}"
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return ToolCall{}, &InvalidToolCall{
			Name:  chunk.Name,
			Args:  chunk.Args,
			ID:    chunk.ID,
			Error: err.Error(),
		}
	}
	if chunk.Name == "" {
		return ToolCall{}, &InvalidToolCall{
			Name: chunk.Name,
			Args: chunk.Args,
			ID:   chunk.ID,
		}
	}
	return NewToolCall(chunk.Name, args, chunk.ID), nil
}
