package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombine_TextDeltas(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("I am").WithID("ai3"),
		NewAIMessageChunk(" indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewAIMessageChunk("I am indeed.").WithID("ai3"), got)
}

func TestCombine_FirstIDWins(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("").WithID("ai2"),
		NewAIMessageChunk("").WithID("ai9"),
	)
	require.NoError(t, err)
	assert.Equal(t, "ai2", got.ID)

	got, err = Combine(
		NewAIMessageChunk(""),
		NewAIMessageChunk("").WithID("ai9"),
	)
	require.NoError(t, err)
	assert.Equal(t, "ai9", got.ID)
}

func TestCombine_AdditionalKwargs(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{"foo": "bar"}),
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{"baz": "foo"}),
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"foo": "bar", "baz": "foo"}, got.AdditionalKwargs)
}

func TestCombine_FunctionCallFragments(t *testing.T) {
	chunks := []MessageChunk{
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"function_call": map[string]any{"name": "web_search"},
		}),
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"function_call": map[string]any{"arguments": nil},
		}),
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"function_call": map[string]any{"arguments": "{\n"},
		}),
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"function_call": map[string]any{"arguments": "  \"query\": \"turtles\"\n}"},
		}),
	}

	got, err := CombineAll(chunks...)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"function_call": map[string]any{
			"name":      "web_search",
			"arguments": "{\n  \"query\": \"turtles\"\n}",
		},
	}, got.AdditionalKwargs)
}

func TestCombine_ToolCallChunksSameIndex(t *testing.T) {
	got, err := CombineAll(
		NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
			NewToolCallChunk("tool1", "", "1", 0),
		}),
		NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
			NewToolCallChunk("", `{"arg1": "val`, "", 0),
		}),
		NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
			NewToolCallChunk("", `ue}"`, "", 0),
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []ToolCallChunk{
		NewToolCallChunk("tool1", `{"arg1": "value}"`, "1", 0),
	}, got.ToolCallChunks)
}

func TestCombine_ToolCallChunksDifferentIndex(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
			NewToolCallChunk("tool1", "", "1", 0),
		}),
		NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
			NewToolCallChunk("tool1", "a", "", 1),
		}),
	)
	require.NoError(t, err)
	// Different slots never merge; both survive in first-seen order.
	assert.Equal(t, []ToolCallChunk{
		NewToolCallChunk("tool1", "", "1", 0),
		NewToolCallChunk("tool1", "a", "", 1),
	}, got.ToolCallChunks)
}

func TestCombine_ToolCallChunksNilIndexNeverPairs(t *testing.T) {
	left := NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
		{Name: "tool1", Args: `{"arg1": "value1"}`},
	})
	right := NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
		{Name: "tool1", Args: `{"arg2": "value2"}`},
	})

	got, err := Combine(left, right)
	require.NoError(t, err)
	assert.Len(t, got.ToolCallChunks, 2)
}

func TestCombine_EmptySideKeepsToolCalls(t *testing.T) {
	plain := NewAIMessageChunk("")
	withCalls := NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
		NewToolCallChunk("tool1", "a", "", 1),
	})

	got, err := Combine(plain, withCalls)
	require.NoError(t, err)
	assert.Equal(t, withCalls, got)

	got, err = Combine(withCalls, plain)
	require.NoError(t, err)
	assert.Equal(t, withCalls, got)
}

func TestCombine_ChatChunks(t *testing.T) {
	got, err := Combine(
		NewChatMessageChunk("User", "I am").WithID("ai4"),
		NewChatMessageChunk("User", " indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewChatMessageChunk("User", "I am indeed.").WithID("ai4"), got)
}

func TestCombine_ChatRoleConflict(t *testing.T) {
	_, err := Combine(
		NewChatMessageChunk("User", "I am"),
		NewChatMessageChunk("Assistant", " indeed."),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRoleConflict, GetErrorCode(err))
}

func TestCombine_ChatAbsorbsOtherKinds(t *testing.T) {
	// Chat on the left keeps its role.
	got, err := Combine(
		NewChatMessageChunk("User", "I am"),
		NewAIMessageChunk(" indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewChatMessageChunk("User", "I am indeed."), got)

	// A concrete left side wins over a chat right side.
	got, err = Combine(
		NewAIMessageChunk("I am"),
		NewChatMessageChunk("User", " indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewAIMessageChunk("I am indeed."), got)
}

func TestCombine_GenericAdoptsConcretePeer(t *testing.T) {
	got, err := Combine(
		NewGenericMessageChunk("", "I am"),
		NewAIMessageChunk(" indeed.").WithID("ai1"),
	)
	require.NoError(t, err)
	assert.Equal(t, NewAIMessageChunk("I am indeed.").WithID("ai1"), got)

	got, err = Combine(
		NewAIMessageChunk("I am"),
		NewGenericMessageChunk("", " indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewAIMessageChunk("I am indeed."), got)
}

func TestCombine_UnrelatedConcreteKindsReject(t *testing.T) {
	_, err := Combine(
		NewAIMessageChunk("I am"),
		NewFunctionMessageChunk("hello", " indeed."),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRoleConflict, GetErrorCode(err))
}

func TestCombine_FunctionChunks(t *testing.T) {
	got, err := Combine(
		NewFunctionMessageChunk("hello", "I am").WithID("ai5"),
		NewFunctionMessageChunk("hello", " indeed."),
	)
	require.NoError(t, err)
	assert.Equal(t, NewFunctionMessageChunk("hello", "I am indeed.").WithID("ai5"), got)

	_, err = Combine(
		NewFunctionMessageChunk("hello", "I am"),
		NewFunctionMessageChunk("bye", " indeed."),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRoleConflict, GetErrorCode(err))
}

func TestCombine_ToolChunks(t *testing.T) {
	got, err := Combine(
		NewToolMessageChunk("call_1", "par"),
		NewToolMessageChunk("call_1", "tial"),
	)
	require.NoError(t, err)
	assert.Equal(t, NewToolMessageChunk("call_1", "partial"), got)

	_, err = Combine(
		NewToolMessageChunk("call_1", "par"),
		NewToolMessageChunk("call_2", "tial"),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRoleConflict, GetErrorCode(err))
}

func TestCombine_ExampleMismatchRejects(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("I am").WithExample(true),
		NewAIMessageChunk(" indeed.").WithExample(true),
	)
	require.NoError(t, err)
	assert.Equal(t, NewAIMessageChunk("I am indeed.").WithExample(true), got)

	_, err = Combine(
		NewAIMessageChunk("I am").WithExample(true),
		NewAIMessageChunk(" indeed."),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeRoleConflict, GetErrorCode(err))
}

func TestCombine_IndexKeyedKwargsToolCalls(t *testing.T) {
	// Raw provider payloads carried in additional_kwargs merge positionally
	// by their "index" key, reassembling two interleaved tool calls.
	fragment := func(index int, id, args, name string, typed bool) MessageChunk {
		call := map[string]any{
			"index":    index,
			"function": map[string]any{"arguments": args, "name": orNil(name)},
		}
		if id != "" {
			call["id"] = id
		}
		if typed {
			call["type"] = "function"
		}
		return NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"tool_calls": []any{call},
		})
	}

	chunks := []MessageChunk{
		NewAIMessageChunk(""),
		fragment(0, "call_CwGAsESnXehQEjiAIWzinlva", "", "person", true),
		fragment(0, "", `{"na`, "", false),
		fragment(0, "", `me": `, "", false),
		fragment(0, "", `"jane"`, "", false),
		fragment(0, "", `, "a`, "", false),
		fragment(0, "", `ge": `, "", false),
		fragment(0, "", `2}`, "", false),
		fragment(1, "call_zXSIylHvc5x3JUAPcHZR5GZI", "", "person", true),
		fragment(1, "", `{"na`, "", false),
		fragment(1, "", `me": `, "", false),
		fragment(1, "", `"bob",`, "", false),
		fragment(1, "", ` "ag`, "", false),
		fragment(1, "", `e": 3`, "", false),
		fragment(1, "", `}`, "", false),
		NewAIMessageChunk(""),
	}

	got, err := CombineAll(chunks...)
	require.NoError(t, err)

	calls, ok := got.AdditionalKwargs["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, calls, 2)

	first := calls[0].(map[string]any)
	assert.Equal(t, "call_CwGAsESnXehQEjiAIWzinlva", first["id"])
	assert.Equal(t, map[string]any{
		"arguments": `{"name": "jane", "age": 2}`,
		"name":      "person",
	}, first["function"])

	second := calls[1].(map[string]any)
	assert.Equal(t, "call_zXSIylHvc5x3JUAPcHZR5GZI", second["id"])
	assert.Equal(t, map[string]any{
		"arguments": `{"name": "bob", "age": 3}`,
		"name":      "person",
	}, second["function"])
}

func orNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func TestCombine_KwargsTypeMismatch(t *testing.T) {
	_, err := Combine(
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{"a": 1}),
		NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{"a": "1"}),
	)
	require.Error(t, err)
	assert.Equal(t, ErrCodeTypeMismatch, GetErrorCode(err))
}

func TestCombine_ResponseMetadata(t *testing.T) {
	got, err := Combine(
		NewAIMessageChunk("").WithResponseMetadata(map[string]any{"model": "m1"}),
		NewAIMessageChunk("").WithResponseMetadata(map[string]any{"finish_reason": "stop"}),
	)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"model": "m1", "finish_reason": "stop"}, got.ResponseMetadata)
}

func TestCombine_BlockContent(t *testing.T) {
	got, err := Combine(
		MessageChunk{Type: TypeAI, Content: Blocks(ContentBlock{"type": "text", "text": "a"})},
		MessageChunk{Type: TypeAI, Content: Blocks(ContentBlock{"type": "text", "text": "b"})},
	)
	require.NoError(t, err)
	assert.Equal(t, Blocks(
		ContentBlock{"type": "text", "text": "a"},
		ContentBlock{"type": "text", "text": "b"},
	), got.Content)
}

func TestCombineAll_Empty(t *testing.T) {
	got, err := CombineAll()
	require.NoError(t, err)
	assert.Equal(t, TypeGeneric, got.Type)
}

func TestToMessage_Simple(t *testing.T) {
	msg := NewAIMessageChunk("I am").
		WithAdditionalKwargs(map[string]any{"foo": "bar"}).
		ToMessage()
	assert.Equal(t,
		NewAIMessage("I am").WithAdditionalKwargs(map[string]any{"foo": "bar"}),
		msg)

	assert.Equal(t, NewHumanMessage("I am"), NewHumanMessageChunk("I am").ToMessage())
	assert.Equal(t, NewChatMessage("User", "I am"), NewChatMessageChunk("User", "I am").ToMessage())
	assert.Equal(t, NewFunctionMessage("hello", "I am"), NewFunctionMessageChunk("hello", "I am").ToMessage())
}

func TestToMessage_GenericBecomesChat(t *testing.T) {
	msg := NewGenericMessageChunk("Narrator", "once").ToMessage()
	assert.Equal(t, NewChatMessage("Narrator", "once"), msg)
}

func TestToMessage_SplitsValidAndInvalidToolCalls(t *testing.T) {
	chunk := NewAIMessageChunk("I am").WithToolCallChunks([]ToolCallChunk{
		NewToolCallChunk("tool1", `{"a": 1}`, "1", 0),
		NewToolCallChunk("tool2", `{"b": `, "2", 0),
		NewToolCallChunk("tool3", "", "3", 0),
		NewToolCallChunk("tool4", "abc", "4", 0),
		NewToolCallChunk("", `{"c": 3}`, "5", 0),
	})

	msg := chunk.ToMessage()

	require.Len(t, msg.ToolCalls, 2)
	assert.Equal(t, NewToolCall("tool1", map[string]any{"a": float64(1)}, "1"), msg.ToolCalls[0])
	// Empty args default to "{}" and parse to an empty mapping.
	assert.Equal(t, NewToolCall("tool3", map[string]any{}, "3"), msg.ToolCalls[1])

	require.Len(t, msg.InvalidToolCalls, 3)
	assert.Equal(t, "tool2", msg.InvalidToolCalls[0].Name)
	assert.Equal(t, `{"b": `, msg.InvalidToolCalls[0].Args)
	assert.NotEmpty(t, msg.InvalidToolCalls[0].Error)
	assert.Equal(t, "tool4", msg.InvalidToolCalls[1].Name)
	// A parseable mapping without a name is still invalid, with no parse error.
	assert.Equal(t, "", msg.InvalidToolCalls[2].Name)
	assert.Empty(t, msg.InvalidToolCalls[2].Error)
}

func TestToMessage_FinalizationNeverFails(t *testing.T) {
	chunk := NewAIMessageChunk("").WithToolCallChunks([]ToolCallChunk{
		NewToolCallChunk("good", `{"x": true}`, "a", 0),
		NewToolCallChunk("bad", `{"x": `, "b", 1),
	})

	msg := chunk.ToMessage()
	assert.Len(t, msg.ToolCalls, 1)
	assert.Len(t, msg.InvalidToolCalls, 1)
}

func TestMessageToChunkRoundTrip(t *testing.T) {
	msg := NewAIMessage("hi").WithToolCalls([]ToolCall{
		NewToolCall("greet", map[string]any{"name": "Jane"}, "tool_id"),
	})

	back := msg.ToChunk().ToMessage()
	require.Len(t, back.ToolCalls, 1)
	assert.Equal(t, "greet", back.ToolCalls[0].Name)
	assert.Equal(t, map[string]any{"name": "Jane"}, back.ToolCalls[0].Args)
	assert.Equal(t, msg.Content, back.Content)
}

func TestStreamedFunctionCallArguments(t *testing.T) {
	fragments := []string{`{"na`, `me": `, `"jane"`, `, "a`, `ge": `, `2}`}

	acc := NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
		"function_call": map[string]any{"name": "person", "arguments": ""},
	})
	for _, frag := range fragments {
		next := NewAIMessageChunk("").WithAdditionalKwargs(map[string]any{
			"function_call": map[string]any{"arguments": frag},
		})
		var err error
		acc, err = Combine(acc, next)
		require.NoError(t, err)
	}

	fc := acc.AdditionalKwargs["function_call"].(map[string]any)
	assert.Equal(t, `{"name": "jane", "age": 2}`, fc["arguments"])
}
