package history

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"

	"github.com/zc277584121/langchain/internal/metrics"
	"github.com/zc277584121/langchain/messages"
)

// MongoConfig configures the MongoDB-backed history store.
type MongoConfig struct {
	// Connection URI.
	URI string `yaml:"uri" json:"uri"`

	// Database name.
	Database string `yaml:"database" json:"database"`

	// Collection name.
	Collection string `yaml:"collection" json:"collection"`
}

// DefaultMongoConfig returns the default MongoDB history configuration.
func DefaultMongoConfig() MongoConfig {
	return MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "chat_history",
		Collection: "message_store",
	}
}

// mongoRecord is the document shape for one stored message.
type mongoRecord struct {
	SessionID string    `bson:"session_id"`
	History   string    `bson:"history"`
	CreatedAt time.Time `bson:"created_at"`
	Seq       int64     `bson:"seq"`
}

// MongoChatHistory persists a session transcript as one document per message.
type MongoChatHistory struct {
	client     *mongo.Client
	collection *mongo.Collection
	sessionID  string
	logger     *zap.Logger
	collector  *metrics.Collector
	seq        int64
}

// NewMongoChatHistory connects to MongoDB and binds a session.
func NewMongoChatHistory(ctx context.Context, config MongoConfig, sessionID string, logger *zap.Logger) (*MongoChatHistory, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client, err := mongo.Connect(options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	h := &MongoChatHistory{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		sessionID:  sessionID,
		logger: logger.With(
			zap.String("component", "mongo_history"),
			zap.String("session_id", sessionID)),
		collector: metrics.Default(),
		seq:       time.Now().UnixNano(),
	}
	h.logger.Info("mongo chat history initialized",
		zap.String("database", config.Database),
		zap.String("collection", config.Collection))
	return h, nil
}

func (h *MongoChatHistory) AddMessage(ctx context.Context, msg messages.Message) error {
	return h.AddMessages(ctx, []messages.Message{msg})
}

func (h *MongoChatHistory) AddMessages(ctx context.Context, msgs []messages.Message) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("mongo", "add", err, time.Since(start)) }()

	if len(msgs) == 0 {
		return nil
	}
	docs := make([]any, len(msgs))
	for i, m := range msgs {
		data, merr := marshalMessage(m)
		if merr != nil {
			return merr
		}
		h.seq++
		docs[i] = mongoRecord{
			SessionID: h.sessionID,
			History:   string(data),
			CreatedAt: time.Now(),
			Seq:       h.seq,
		}
	}
	if _, err = h.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert messages for session %s: %w", h.sessionID, err)
	}
	return nil
}

func (h *MongoChatHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewHumanMessage(text))
}

func (h *MongoChatHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewAIMessage(text))
}

func (h *MongoChatHistory) Messages(ctx context.Context) (msgs []messages.Message, err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("mongo", "list", err, time.Since(start)) }()

	cursor, err := h.collection.Find(ctx,
		bson.M{"session_id": h.sessionID},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("read messages for session %s: %w", h.sessionID, err)
	}
	var records []mongoRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode messages for session %s: %w", h.sessionID, err)
	}
	msgs = make([]messages.Message, 0, len(records))
	for i, rec := range records {
		msg, uerr := unmarshalMessage([]byte(rec.History))
		if uerr != nil {
			return nil, fmt.Errorf("document %d for session %s: %w", i, h.sessionID, uerr)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (h *MongoChatHistory) Clear(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("mongo", "clear", err, time.Since(start)) }()

	if _, err = h.collection.DeleteMany(ctx, bson.M{"session_id": h.sessionID}); err != nil {
		return fmt.Errorf("clear session %s: %w", h.sessionID, err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (h *MongoChatHistory) Close(ctx context.Context) error {
	return h.client.Disconnect(ctx)
}
