package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zc277584121/langchain/internal/metrics"
	"github.com/zc277584121/langchain/messages"
)

// RedisConfig configures the Redis-backed history store.
type RedisConfig struct {
	// Redis address.
	Addr string `yaml:"addr" json:"addr"`

	// Password, empty for none.
	Password string `yaml:"password" json:"password"`

	// Database number.
	DB int `yaml:"db" json:"db"`

	// Key prefix for session lists.
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix"`

	// TTL applied to session lists, zero for no expiry.
	TTL time.Duration `yaml:"ttl" json:"ttl"`

	// Maximum retries per command.
	MaxRetries int `yaml:"max_retries" json:"max_retries"`

	// Connection pool size.
	PoolSize int `yaml:"pool_size" json:"pool_size"`
}

// DefaultRedisConfig returns the default Redis history configuration.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:       "localhost:6379",
		KeyPrefix:  "message_store:",
		MaxRetries: 3,
		PoolSize:   10,
	}
}

// RedisChatHistory persists a session transcript as a Redis list, one wire
// document per message.
type RedisChatHistory struct {
	client    *redis.Client
	config    RedisConfig
	sessionID string
	logger    *zap.Logger
	collector *metrics.Collector
}

// NewRedisChatHistory connects to Redis and binds a session.
func NewRedisChatHistory(config RedisConfig, sessionID string, logger *zap.Logger) (*RedisChatHistory, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:       config.Addr,
		Password:   config.Password,
		DB:         config.DB,
		MaxRetries: config.MaxRetries,
		PoolSize:   config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	h := &RedisChatHistory{
		client:    client,
		config:    config,
		sessionID: sessionID,
		logger: logger.With(
			zap.String("component", "redis_history"),
			zap.String("session_id", sessionID)),
		collector: metrics.Default(),
	}
	h.logger.Info("redis chat history initialized", zap.String("addr", config.Addr))
	return h, nil
}

func (h *RedisChatHistory) key() string {
	return h.config.KeyPrefix + h.sessionID
}

func (h *RedisChatHistory) AddMessage(ctx context.Context, msg messages.Message) error {
	return h.AddMessages(ctx, []messages.Message{msg})
}

func (h *RedisChatHistory) AddMessages(ctx context.Context, msgs []messages.Message) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("redis", "add", err, time.Since(start)) }()

	if len(msgs) == 0 {
		return nil
	}
	payloads := make([]any, len(msgs))
	for i, m := range msgs {
		data, merr := marshalMessage(m)
		if merr != nil {
			return merr
		}
		payloads[i] = data
	}
	if err = h.client.RPush(ctx, h.key(), payloads...).Err(); err != nil {
		return fmt.Errorf("append messages to %s: %w", h.key(), err)
	}
	if h.config.TTL > 0 {
		if err = h.client.Expire(ctx, h.key(), h.config.TTL).Err(); err != nil {
			return fmt.Errorf("refresh ttl on %s: %w", h.key(), err)
		}
	}
	return nil
}

func (h *RedisChatHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewHumanMessage(text))
}

func (h *RedisChatHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewAIMessage(text))
}

func (h *RedisChatHistory) Messages(ctx context.Context) (msgs []messages.Message, err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("redis", "list", err, time.Since(start)) }()

	raw, err := h.client.LRange(ctx, h.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read messages from %s: %w", h.key(), err)
	}
	msgs = make([]messages.Message, 0, len(raw))
	for i, item := range raw {
		msg, uerr := unmarshalMessage([]byte(item))
		if uerr != nil {
			return nil, fmt.Errorf("message %d in %s: %w", i, h.key(), uerr)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (h *RedisChatHistory) Clear(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("redis", "clear", err, time.Since(start)) }()

	if err = h.client.Del(ctx, h.key()).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", h.key(), err)
	}
	return nil
}

// Close releases the Redis connection.
func (h *RedisChatHistory) Close() error {
	return h.client.Close()
}
