package history

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/zc277584121/langchain/config"
)

// New opens the chat history backend selected by cfg for the given session.
func New(ctx context.Context, cfg config.HistoryConfig, sessionID string, logger *zap.Logger) (ChatMessageHistory, error) {
	switch cfg.Backend {
	case "memory", "":
		return NewMemoryChatHistory(), nil

	case "redis":
		return NewRedisChatHistory(RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TTL,
			PoolSize:  cfg.Redis.PoolSize,
		}, sessionID, logger)

	case "sql":
		db, err := openDatabase(cfg.SQL)
		if err != nil {
			return nil, err
		}
		return NewSQLChatHistory(db, sessionID, logger)

	case "mongo":
		return NewMongoChatHistory(ctx, MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		}, sessionID, logger)

	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// openDatabase opens a GORM connection for the configured driver.
func openDatabase(cfg config.SQLConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}
