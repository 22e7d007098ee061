package history

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zc277584121/langchain/internal/metrics"
	"github.com/zc277584121/langchain/messages"
)

// messageRecord is the relational row shape for one stored message.
type messageRecord struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	SessionID string `gorm:"index;size:255;not null"`
	Payload   string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (messageRecord) TableName() string { return "message_store" }

// SQLChatHistory persists a session transcript in a relational table through
// GORM; any dialect GORM supports works.
type SQLChatHistory struct {
	db        *gorm.DB
	sessionID string
	logger    *zap.Logger
	collector *metrics.Collector
}

// NewSQLChatHistory binds a session to a GORM connection, migrating the
// message table if needed.
func NewSQLChatHistory(db *gorm.DB, sessionID string, logger *zap.Logger) (*SQLChatHistory, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if sessionID == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := db.AutoMigrate(&messageRecord{}); err != nil {
		return nil, fmt.Errorf("migrate message_store: %w", err)
	}
	return &SQLChatHistory{
		db:        db,
		sessionID: sessionID,
		logger: logger.With(
			zap.String("component", "sql_history"),
			zap.String("session_id", sessionID)),
		collector: metrics.Default(),
	}, nil
}

func (h *SQLChatHistory) AddMessage(ctx context.Context, msg messages.Message) error {
	return h.AddMessages(ctx, []messages.Message{msg})
}

func (h *SQLChatHistory) AddMessages(ctx context.Context, msgs []messages.Message) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("sql", "add", err, time.Since(start)) }()

	if len(msgs) == 0 {
		return nil
	}
	records := make([]messageRecord, len(msgs))
	for i, m := range msgs {
		data, merr := marshalMessage(m)
		if merr != nil {
			return merr
		}
		records[i] = messageRecord{SessionID: h.sessionID, Payload: string(data)}
	}
	if err = h.db.WithContext(ctx).Create(&records).Error; err != nil {
		return fmt.Errorf("insert messages for session %s: %w", h.sessionID, err)
	}
	return nil
}

func (h *SQLChatHistory) AddUserMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewHumanMessage(text))
}

func (h *SQLChatHistory) AddAIMessage(ctx context.Context, text string) error {
	return h.AddMessage(ctx, messages.NewAIMessage(text))
}

func (h *SQLChatHistory) Messages(ctx context.Context) (msgs []messages.Message, err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("sql", "list", err, time.Since(start)) }()

	var records []messageRecord
	if err = h.db.WithContext(ctx).
		Where("session_id = ?", h.sessionID).
		Order("id asc").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("read messages for session %s: %w", h.sessionID, err)
	}
	msgs = make([]messages.Message, 0, len(records))
	for _, rec := range records {
		msg, uerr := unmarshalMessage([]byte(rec.Payload))
		if uerr != nil {
			return nil, fmt.Errorf("record %d for session %s: %w", rec.ID, h.sessionID, uerr)
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func (h *SQLChatHistory) Clear(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { h.collector.RecordHistoryOp("sql", "clear", err, time.Since(start)) }()

	if err = h.db.WithContext(ctx).
		Where("session_id = ?", h.sessionID).
		Delete(&messageRecord{}).Error; err != nil {
		return fmt.Errorf("clear session %s: %w", h.sessionID, err)
	}
	return nil
}
