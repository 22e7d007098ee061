package config

import "time"

// Config is the complete module configuration.
type Config struct {
	// History chat history store configuration.
	History HistoryConfig `yaml:"history" env:"HISTORY"`

	// Tokenizer token counting configuration.
	Tokenizer TokenizerConfig `yaml:"tokenizer" env:"TOKENIZER"`

	// Buffer transcript rendering configuration.
	Buffer BufferConfig `yaml:"buffer" env:"BUFFER"`

	// Log logging configuration.
	Log LogConfig `yaml:"log" env:"LOG"`
}

// HistoryConfig selects and configures the chat history backend.
type HistoryConfig struct {
	// Backend: memory, redis, sql, mongo.
	Backend string `yaml:"backend" env:"BACKEND"`

	// Redis backend settings.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// SQL backend settings.
	SQL SQLConfig `yaml:"sql" env:"SQL"`

	// Mongo backend settings.
	Mongo MongoConfig `yaml:"mongo" env:"MONGO"`
}

// RedisConfig configures the Redis history backend.
type RedisConfig struct {
	// Address.
	Addr string `yaml:"addr" env:"ADDR"`
	// Password.
	Password string `yaml:"password" env:"PASSWORD"`
	// Database number.
	DB int `yaml:"db" env:"DB"`
	// Key prefix for session lists.
	KeyPrefix string `yaml:"key_prefix" env:"KEY_PREFIX"`
	// Session TTL, zero for no expiry.
	TTL time.Duration `yaml:"ttl" env:"TTL"`
	// Connection pool size.
	PoolSize int `yaml:"pool_size" env:"POOL_SIZE"`
}

// SQLConfig configures the relational history backend.
type SQLConfig struct {
	// Driver: sqlite, postgres, mysql.
	Driver string `yaml:"driver" env:"DRIVER"`
	// DSN connection string.
	DSN string `yaml:"dsn" env:"DSN"`
	// Maximum open connections.
	MaxOpenConns int `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	// Maximum idle connections.
	MaxIdleConns int `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	// Connection max lifetime.
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// MongoConfig configures the MongoDB history backend.
type MongoConfig struct {
	// Connection URI.
	URI string `yaml:"uri" env:"URI"`
	// Database name.
	Database string `yaml:"database" env:"DATABASE"`
	// Collection name.
	Collection string `yaml:"collection" env:"COLLECTION"`
}

// TokenizerConfig configures token counting.
type TokenizerConfig struct {
	// Model whose tokenizer counts by default.
	DefaultModel string `yaml:"default_model" env:"DEFAULT_MODEL"`
}

// BufferConfig configures transcript rendering prefixes.
type BufferConfig struct {
	// Prefix for human messages.
	HumanPrefix string `yaml:"human_prefix" env:"HUMAN_PREFIX"`
	// Prefix for ai messages.
	AIPrefix string `yaml:"ai_prefix" env:"AI_PREFIX"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level: debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format: json, console.
	Format string `yaml:"format" env:"FORMAT"`
	// Output paths.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// Annotate entries with the calling line.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		History:   DefaultHistoryConfig(),
		Tokenizer: TokenizerConfig{DefaultModel: "gpt-4o"},
		Buffer:    BufferConfig{HumanPrefix: "Human", AIPrefix: "AI"},
		Log:       DefaultLogConfig(),
	}
}

// DefaultHistoryConfig returns the default history configuration.
func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Backend: "memory",
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			KeyPrefix: "message_store:",
			PoolSize:  10,
		},
		SQL: SQLConfig{
			Driver:          "sqlite",
			DSN:             "chat_history.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Mongo: MongoConfig{
			URI:        "mongodb://localhost:27017",
			Database:   "chat_history",
			Collection: "message_store",
		},
	}
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "memory", "redis", "sql", "mongo":
	default:
		return errInvalidf("unknown history backend %q", c.History.Backend)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errInvalidf("unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return errInvalidf("unknown log format %q", c.Log.Format)
	}
	return nil
}
