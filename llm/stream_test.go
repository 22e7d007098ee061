package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zc277584121/langchain/internal/metrics"
	"github.com/zc277584121/langchain/messages"
)

func chunkChannel(chunks ...StreamChunk) <-chan StreamChunk {
	ch := make(chan StreamChunk, len(chunks))
	for _, c := range chunks {
		ch <- c
	}
	close(ch)
	return ch
}

func testCollector() *metrics.Collector {
	return metrics.NewCollector("test", prometheus.NewRegistry())
}

func TestCollect_TextStream(t *testing.T) {
	ch := chunkChannel(
		StreamChunk{ID: "resp-1", Model: "fake-1", Delta: messages.NewAIMessageChunk("Hello")},
		StreamChunk{Delta: messages.NewAIMessageChunk(", world")},
		StreamChunk{
			Delta:        messages.NewAIMessageChunk("!"),
			FinishReason: "stop",
			Usage:        &ChatUsage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8},
		},
	)

	resp, err := Collect(context.Background(), "fake", ch, WithCollector(testCollector()))
	require.NoError(t, err)

	assert.Equal(t, "resp-1", resp.ID)
	assert.Equal(t, "fake-1", resp.Model)
	assert.Equal(t, "fake", resp.Provider)
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "Hello, world!", resp.Message.Content.Text())
	assert.Equal(t, messages.TypeAI, resp.Message.Type)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
}

func TestCollect_ToolCallFragments(t *testing.T) {
	fragments := []string{`{"na`, `me": `, `"jane"`, `, "a`, `ge": `, `2}`}

	chunks := []StreamChunk{{
		Delta: messages.NewAIMessageChunk("").WithToolCallChunks([]messages.ToolCallChunk{
			messages.NewToolCallChunk("person", "", "call_1", 0),
		}),
	}}
	for _, frag := range fragments {
		chunks = append(chunks, StreamChunk{
			Delta: messages.NewAIMessageChunk("").WithToolCallChunks([]messages.ToolCallChunk{
				messages.NewToolCallChunk("", frag, "", 0),
			}),
		})
	}

	resp, err := Collect(context.Background(), "fake", chunkChannel(chunks...), WithCollector(testCollector()))
	require.NoError(t, err)

	require.Len(t, resp.Message.ToolCalls, 1)
	call := resp.Message.ToolCalls[0]
	assert.Equal(t, "person", call.Name)
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, map[string]any{"name": "jane", "age": float64(2)}, call.Args)
	assert.Empty(t, resp.Message.InvalidToolCalls)
}

func TestCollect_InvalidToolCallDoesNotFail(t *testing.T) {
	ch := chunkChannel(
		StreamChunk{Delta: messages.NewAIMessageChunk("").WithToolCallChunks([]messages.ToolCallChunk{
			messages.NewToolCallChunk("good", `{"x": 1}`, "a", 0),
			messages.NewToolCallChunk("bad", `{"x": `, "b", 1),
		})},
	)

	resp, err := Collect(context.Background(), "fake", ch, WithCollector(testCollector()))
	require.NoError(t, err)
	assert.Len(t, resp.Message.ToolCalls, 1)
	require.Len(t, resp.Message.InvalidToolCalls, 1)
	assert.Equal(t, "bad", resp.Message.InvalidToolCalls[0].Name)
	assert.NotEmpty(t, resp.Message.InvalidToolCalls[0].Error)
}

func TestCollect_CombineErrorPropagates(t *testing.T) {
	ch := chunkChannel(
		StreamChunk{Delta: messages.NewChatMessageChunk("User", "I am")},
		StreamChunk{Delta: messages.NewChatMessageChunk("Assistant", " indeed.")},
	)

	_, err := Collect(context.Background(), "fake", ch, WithCollector(testCollector()))
	require.Error(t, err)
	assert.Equal(t, messages.ErrCodeRoleConflict, messages.GetErrorCode(innermost(err)))
}

func TestCollect_ChunkErrorPropagates(t *testing.T) {
	boom := errors.New("upstream exploded")
	ch := chunkChannel(
		StreamChunk{Delta: messages.NewAIMessageChunk("partial")},
		StreamChunk{Err: boom},
	)

	_, err := Collect(context.Background(), "fake", ch, WithCollector(testCollector()))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCollect_EmptyStream(t *testing.T) {
	_, err := Collect(context.Background(), "fake", chunkChannel(), WithCollector(testCollector()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chunks")
}

func TestCollect_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan StreamChunk) // never closed, never written

	done := make(chan error, 1)
	go func() {
		_, err := Collect(ctx, "fake", ch, WithCollector(testCollector()))
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after cancellation")
	}
}

func TestCollectAll(t *testing.T) {
	first := chunkChannel(
		StreamChunk{Delta: messages.NewAIMessageChunk("one")},
	)
	second := chunkChannel(
		StreamChunk{Delta: messages.NewAIMessageChunk("two")},
	)

	responses, err := CollectAll(context.Background(), "fake",
		[]<-chan StreamChunk{first, second}, WithCollector(testCollector()))
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "one", responses[0].Message.Content.Text())
	assert.Equal(t, "two", responses[1].Message.Content.Text())
}

func TestCollectAll_FirstErrorWins(t *testing.T) {
	bad := chunkChannel(StreamChunk{Err: errors.New("boom")})
	good := chunkChannel(StreamChunk{Delta: messages.NewAIMessageChunk("fine")})

	_, err := CollectAll(context.Background(), "fake",
		[]<-chan StreamChunk{bad, good}, WithCollector(testCollector()))
	require.Error(t, err)
}

func TestAccumulator_UsageAggregates(t *testing.T) {
	a := NewAccumulator("fake", WithCollector(testCollector()))
	require.NoError(t, a.Add(StreamChunk{
		Delta: messages.NewAIMessageChunk("x"),
		Usage: &ChatUsage{PromptTokens: 2, TotalTokens: 2},
	}))
	require.NoError(t, a.Add(StreamChunk{
		Delta: messages.NewAIMessageChunk("y"),
		Usage: &ChatUsage{CompletionTokens: 4, TotalTokens: 4},
	}))

	assert.Equal(t, 2, a.Chunks())
	assert.Equal(t, ChatUsage{PromptTokens: 2, CompletionTokens: 4, TotalTokens: 6}, a.Usage())
}

// innermost digs to the deepest wrapped error.
func innermost(err error) error {
	for {
		inner := errors.Unwrap(err)
		if inner == nil {
			return err
		}
		err = inner
	}
}
