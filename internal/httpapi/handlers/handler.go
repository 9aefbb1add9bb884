package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatforge/chatforge/internal/ai"
	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/chat"
	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/document"
	"github.com/chatforge/chatforge/internal/rag"
	"github.com/chatforge/chatforge/internal/store/redisstore"
	"github.com/chatforge/chatforge/internal/webhook"
)

type Handler struct {
	DB    *gorm.DB
	Cfg   config.Config
	Redis *redisstore.Store

	Bots       *bot.Service
	ChatSvc    *chat.Service
	WebhookSvc *webhook.Service
	Retrieval  *rag.Gateway
	Extractor  document.Extractor
	Chunker    document.Chunker
	Embedder   *ai.EmbeddingClient
}

// NewHandler wires the services. retrieval may be nil when no vector
// store is configured; chat turns then run without context and the
// upload endpoint reports the store unavailable.
func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, sender webhook.Sender, retrieval *rag.Gateway) *Handler {
	botSvc := bot.NewService(bot.NewRepo(db))
	webhookSvc := webhook.NewService(webhook.NewRepo(db), sender)
	registry := ai.DefaultRegistry(cfg.AnthropicBaseURL, cfg.OpenAIBaseURL, cfg.ProviderTimeout)
	extractor := document.NewTextExtractor()

	chatSvc := chat.NewService(chat.NewRepo(db), botSvc, registry, retrieval, extractor, webhookSvc)

	var embedder *ai.EmbeddingClient
	if cfg.EmbeddingAPIKey != "" {
		embedder = ai.NewEmbeddingClient(cfg.OpenAIBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel, cfg.ProviderTimeout)
	}

	return &Handler{
		DB:         db,
		Cfg:        cfg,
		Redis:      rds,
		Bots:       botSvc,
		ChatSvc:    chatSvc,
		WebhookSvc: webhookSvc,
		Retrieval:  retrieval,
		Extractor:  extractor,
		Chunker:    document.NewSlidingChunker(1000, 200),
		Embedder:   embedder,
	}
}

func (h *Handler) Ping(c *gin.Context) {
	common.OK(c, gin.H{"status": "ok"})
}
