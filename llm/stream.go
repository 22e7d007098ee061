package llm

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zc277584121/langchain/internal/metrics"
	"github.com/zc277584121/langchain/messages"
)

const tracerName = "github.com/zc277584121/langchain/llm"

// Accumulator folds streamed chunks into a single message chunk. Each Add is
// a pure combination step producing a fresh value; the accumulator only
// keeps the latest result, so independent streams can each own their own
// accumulator with no shared state.
type Accumulator struct {
	logger    *zap.Logger
	collector *metrics.Collector
	provider  string

	acc          *messages.MessageChunk
	usage        ChatUsage
	finishReason string
	id           string
	model        string
	chunks       int
}

// AccumulatorOption configures an Accumulator.
type AccumulatorOption func(*Accumulator)

// WithLogger sets the accumulator's logger.
func WithLogger(logger *zap.Logger) AccumulatorOption {
	return func(a *Accumulator) {
		a.logger = logger
	}
}

// WithCollector sets the metrics collector.
func WithCollector(c *metrics.Collector) AccumulatorOption {
	return func(a *Accumulator) {
		a.collector = c
	}
}

// NewAccumulator creates an accumulator for one logical stream.
func NewAccumulator(provider string, opts ...AccumulatorOption) *Accumulator {
	a := &Accumulator{
		logger:    zap.NewNop(),
		collector: metrics.Default(),
		provider:  provider,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(zap.String("component", "accumulator"), zap.String("provider", provider))
	return a
}

// Add folds one stream chunk into the running state. A chunk-level error or
// an incompatible combination surfaces immediately; the accumulator is then
// unusable for further folding.
func (a *Accumulator) Add(chunk StreamChunk) error {
	if chunk.Err != nil {
		return fmt.Errorf("stream chunk from provider %s: %w", a.provider, chunk.Err)
	}
	a.chunks++
	a.collector.RecordStreamChunk(a.provider)

	if chunk.ID != "" && a.id == "" {
		a.id = chunk.ID
	}
	if chunk.Model != "" {
		a.model = chunk.Model
	}
	if chunk.FinishReason != "" {
		a.finishReason = chunk.FinishReason
	}
	if chunk.Usage != nil {
		a.usage = a.usage.Add(*chunk.Usage)
	}

	if a.acc == nil {
		delta := chunk.Delta
		a.acc = &delta
		return nil
	}
	combined, err := messages.Combine(*a.acc, chunk.Delta)
	if err != nil {
		return fmt.Errorf("combine chunk %d: %w", a.chunks, err)
	}
	a.acc = &combined
	return nil
}

// Chunks reports how many chunks have been folded.
func (a *Accumulator) Chunks() int { return a.chunks }

// Usage reports the accumulated token usage.
func (a *Accumulator) Usage() ChatUsage { return a.usage }

// Response finalizes the accumulated chunk into a complete response.
// Tool-call fragments with unparsable arguments finalize as invalid tool
// calls on the message; they never fail the response.
func (a *Accumulator) Response() (*ChatResponse, error) {
	if a.acc == nil {
		return nil, fmt.Errorf("no chunks accumulated from provider %s", a.provider)
	}
	msg := a.acc.ToMessage()
	if msg.ID == "" {
		msg.ID = a.id
	}
	a.collector.RecordInvalidToolCalls(a.provider, len(msg.InvalidToolCalls))
	if len(msg.InvalidToolCalls) > 0 {
		a.logger.Warn("stream finalized with invalid tool calls",
			zap.Int("invalid_tool_calls", len(msg.InvalidToolCalls)))
	}
	return &ChatResponse{
		ID:           a.id,
		Provider:     a.provider,
		Model:        a.model,
		Message:      msg,
		FinishReason: a.finishReason,
		Usage:        a.usage,
		CreatedAt:    time.Now(),
	}, nil
}

// Collect drains a chunk channel into a finalized response, honoring ctx
// cancellation. The channel must be closed by the producer at end of stream.
func Collect(ctx context.Context, provider string, ch <-chan StreamChunk, opts ...AccumulatorOption) (*ChatResponse, error) {
	a := NewAccumulator(provider, opts...)
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "llm.Collect",
		trace.WithAttributes(attribute.String("llm.provider", provider)))
	defer span.End()

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.collector.RecordStream(provider, "canceled", time.Since(start))
			return nil, ctx.Err()
		case chunk, ok := <-ch:
			if !ok {
				resp, err := a.Response()
				if err != nil {
					a.collector.RecordStream(provider, "empty", time.Since(start))
					return nil, err
				}
				a.collector.RecordStream(provider, "ok", time.Since(start))
				span.SetAttributes(attribute.Int("llm.chunks", a.Chunks()))
				a.logger.Debug("stream collected",
					zap.Int("chunks", a.Chunks()),
					zap.String("finish_reason", resp.FinishReason))
				return resp, nil
			}
			if err := a.Add(chunk); err != nil {
				a.collector.RecordStream(provider, "error", time.Since(start))
				span.RecordError(err)
				return nil, err
			}
		}
	}
}

// StreamAndCollect starts a streamed request and folds it to completion.
func StreamAndCollect(ctx context.Context, p Provider, req *ChatRequest, opts ...AccumulatorOption) (*ChatResponse, error) {
	ch, err := p.Stream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("start stream on provider %s: %w", p.Name(), err)
	}
	return Collect(ctx, p.Name(), ch, opts...)
}

// CollectAll folds several independent streams concurrently. Results arrive
// in input order; the first failing stream cancels the rest.
func CollectAll(ctx context.Context, provider string, chans []<-chan StreamChunk, opts ...AccumulatorOption) ([]*ChatResponse, error) {
	g, ctx := errgroup.WithContext(ctx)
	responses := make([]*ChatResponse, len(chans))
	for i, ch := range chans {
		g.Go(func() error {
			resp, err := Collect(ctx, provider, ch, opts...)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}
