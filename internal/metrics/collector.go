package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the metrics instrumenting stream accumulation and chat
// history stores.
type Collector struct {
	streamChunksTotal     *prometheus.CounterVec
	streamsTotal          *prometheus.CounterVec
	streamDuration        *prometheus.HistogramVec
	invalidToolCallsTotal *prometheus.CounterVec

	historyOpsTotal   *prometheus.CounterVec
	historyOpDuration *prometheus.HistogramVec
}

var (
	defaultCollector *Collector
	defaultOnce      sync.Once
)

// Default returns the process-wide collector registered against the default
// Prometheus registerer.
func Default() *Collector {
	defaultOnce.Do(func() {
		defaultCollector = NewCollector("langchain", prometheus.DefaultRegisterer)
	})
	return defaultCollector
}

// NewCollector creates a collector registered against reg under the given
// namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		streamChunksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_chunks_total",
				Help:      "Total number of stream chunks folded into accumulators",
			},
			[]string{"provider"},
		),
		streamsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "streams_total",
				Help:      "Total number of finalized or failed streams",
			},
			[]string{"provider", "status"},
		),
		streamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stream_duration_seconds",
				Help:      "Wall-clock duration of stream accumulation",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		invalidToolCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invalid_tool_calls_total",
				Help:      "Tool calls whose accumulated arguments failed to parse",
			},
			[]string{"provider"},
		),
		historyOpsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "history_operations_total",
				Help:      "Total chat history store operations",
			},
			[]string{"backend", "operation", "status"},
		),
		historyOpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "history_operation_duration_seconds",
				Help:      "Chat history store operation duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend", "operation"},
		),
	}
}

// RecordStreamChunk counts one folded chunk.
func (c *Collector) RecordStreamChunk(provider string) {
	c.streamChunksTotal.WithLabelValues(provider).Inc()
}

// RecordStream counts one finished stream with its outcome and duration.
func (c *Collector) RecordStream(provider, status string, duration time.Duration) {
	c.streamsTotal.WithLabelValues(provider, status).Inc()
	c.streamDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordInvalidToolCalls counts tool calls that finalized as invalid.
func (c *Collector) RecordInvalidToolCalls(provider string, n int) {
	if n > 0 {
		c.invalidToolCallsTotal.WithLabelValues(provider).Add(float64(n))
	}
}

// RecordHistoryOp counts one history store operation.
func (c *Collector) RecordHistoryOp(backend, operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.historyOpsTotal.WithLabelValues(backend, operation, status).Inc()
	c.historyOpDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}
