package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	DBDSN     string
	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Admin auth: bcrypt hash of the operator password; session tokens
	// live in Redis with this TTL.
	AdminPasswordHash string
	AdminSessionTTL   time.Duration

	// Vector store (optional; retrieval degrades to no-context when empty)
	QdrantURL    string
	QdrantAPIKey string

	// Embeddings (OpenAI) used for retrieval queries and ingestion
	EmbeddingAPIKey string
	EmbeddingModel  string

	// Provider base URL overrides (tests, proxies); empty means the
	// vendor default.
	AnthropicBaseURL string
	OpenAIBaseURL    string

	ProviderTimeout time.Duration

	// rabbitMQ webhook delivery queue; empty URL falls back to the
	// in-process dispatch pool
	RabbitURL   string
	RabbitQueue string

	ChatAttachmentMaxBytes int64
	UploadMaxBytes         int64
}

func Load() Config {
	// DSN demo:
	// app:apppass@tcp(127.0.0.1:3306)/chatforge?charset=utf8mb4&parseTime=true&loc=Local
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			"app", "apppass", "127.0.0.1", "3306", "chatforge",
		)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "127.0.0.1:6379"
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	sessionTTL := 24 * time.Hour
	if v := os.Getenv("ADMIN_SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sessionTTL = time.Duration(n) * time.Hour
		}
	}

	embeddingModel := os.Getenv("EMBEDDING_MODEL")
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}

	providerTimeout := 90 * time.Second
	if v := os.Getenv("PROVIDER_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			providerTimeout = time.Duration(n) * time.Second
		}
	}

	rabbitQueue := os.Getenv("RABBIT_QUEUE")
	if rabbitQueue == "" {
		rabbitQueue = "webhook_deliveries"
	}

	chatMax := int64(10 * 1024 * 1024)
	if v := os.Getenv("CHAT_ATTACHMENT_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			chatMax = n
		}
	}

	uploadMax := int64(25 * 1024 * 1024)
	if v := os.Getenv("UPLOAD_MAX_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			uploadMax = n
		}
	}

	return Config{
		DBDSN:     dsn,
		JWTSecret: secret,

		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		AdminSessionTTL:   sessionTTL,

		QdrantURL:    os.Getenv("QDRANT_URL"),
		QdrantAPIKey: os.Getenv("QDRANT_API_KEY"),

		EmbeddingAPIKey: os.Getenv("DEFAULT_OPENAI_API_KEY"),
		EmbeddingModel:  embeddingModel,

		AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),

		ProviderTimeout: providerTimeout,

		RabbitURL:   os.Getenv("RABBIT_URL"),
		RabbitQueue: rabbitQueue,

		ChatAttachmentMaxBytes: chatMax,
		UploadMaxBytes:         uploadMax,
	}
}
