package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBufferString_Empty(t *testing.T) {
	got, err := GetBufferString(nil, "", "")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestGetBufferString_SingleMessage(t *testing.T) {
	got, err := GetBufferString([]Message{NewHumanMessage("hi")}, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Human: hi", got)
}

func TestGetBufferString_CustomPrefixes(t *testing.T) {
	got, err := GetBufferString([]Message{NewHumanMessage("human")}, "H", "")
	require.NoError(t, err)
	assert.Equal(t, "H: human", got)

	got, err = GetBufferString([]Message{NewAIMessage("ai")}, "", "A")
	require.NoError(t, err)
	assert.Equal(t, "A: ai", got)
}

func TestGetBufferString_AllKinds(t *testing.T) {
	msgs := []Message{
		NewHumanMessage("human"),
		NewAIMessage("ai"),
		NewSystemMessage("system"),
		NewFunctionMessage("func", "function"),
		NewToolMessage("tool_id", "tool"),
		NewChatMessage("Chat", "chat"),
		// Tool calls without plain content still render under the AI prefix.
		NewAIMessage("tool").WithToolCalls([]ToolCall{
			NewToolCall("t", map[string]any{}, "id"),
		}),
	}

	got, err := GetBufferString(msgs, "", "")
	require.NoError(t, err)
	want := "Human: human\n" +
		"AI: ai\n" +
		"System: system\n" +
		"Function: function\n" +
		"Tool: tool\n" +
		"Chat: chat\n" +
		"AI: tool"
	assert.Equal(t, want, got)
}

func TestGetBufferString_FunctionCallAppended(t *testing.T) {
	msg := NewAIMessage("calling").WithAdditionalKwargs(map[string]any{
		"function_call": map[string]any{"name": "greet"},
	})
	got, err := GetBufferString([]Message{msg}, "", "")
	require.NoError(t, err)
	assert.Contains(t, got, "AI: calling")
	assert.Contains(t, got, "greet")
}
