package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/config"
	"github.com/chatforge/chatforge/internal/httpapi/handlers"
	"github.com/chatforge/chatforge/internal/httpapi/middleware"
	"github.com/chatforge/chatforge/internal/rag"
	"github.com/chatforge/chatforge/internal/store/redisstore"
	"github.com/chatforge/chatforge/internal/webhook"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, sender webhook.Sender, retrieval *rag.Gateway) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, rds, sender, retrieval)

	r.GET("/ping", h.Ping)

	r.POST("/api/auth/login", h.Login)
	r.POST("/api/auth/logout", h.Logout)

	// Public chat surface; bearer identity is optional and only feeds
	// webhook payloads.
	chatGroup := r.Group("/api/chat")
	chatGroup.Use(middleware.Identity(cfg.JWTSecret))
	chatGroup.POST("/:bot_id", h.Chat)
	chatGroup.DELETE("/:bot_id/session/:session_id", h.ClearSession)

	admin := r.Group("/api")
	admin.Use(middleware.AdminRequired(rds))
	admin.POST("/bots", h.CreateBot)
	admin.GET("/bots", h.ListBots)
	admin.GET("/bots/:bot_id", h.GetBot)
	admin.PUT("/bots/:bot_id", h.UpdateBot)
	admin.DELETE("/bots/:bot_id", h.DeleteBot)
	admin.POST("/api-keys", h.CreateAPIKey)
	admin.POST("/bots/:bot_id/webhooks", h.CreateWebhook)
	admin.GET("/bots/:bot_id/webhooks", h.ListWebhooks)
	admin.DELETE("/webhooks/:webhook_id", h.DeleteWebhook)
	admin.POST("/documents/upload", h.UploadDocument)

	return r
}
