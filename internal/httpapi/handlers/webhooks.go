package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/common"
)

type createWebhookReq struct {
	URL         string   `json:"url" binding:"required"`
	Events      []string `json:"events" binding:"required"`
	Secret      string   `json:"secret"`
	Description string   `json:"description"`
}

func (h *Handler) CreateWebhook(c *gin.Context) {
	botID := c.Param("bot_id")
	if _, err := h.Bots.Get(c.Request.Context(), botID); err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		} else {
			common.Fail(c, http.StatusInternalServerError, 50001, "bot lookup failed")
		}
		return
	}

	var req createWebhookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "url and events are required")
		return
	}

	w, err := h.WebhookSvc.Create(c.Request.Context(), botID, req.URL, req.Events, req.Secret, req.Description)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, err.Error())
		return
	}
	common.OK(c, w)
}

func (h *Handler) ListWebhooks(c *gin.Context) {
	hooks, err := h.WebhookSvc.ListForBot(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "webhook list failed")
		return
	}
	common.OK(c, hooks)
}

func (h *Handler) DeleteWebhook(c *gin.Context) {
	deleted, err := h.WebhookSvc.Delete(c.Request.Context(), c.Param("webhook_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "webhook delete failed")
		return
	}
	if !deleted {
		common.Fail(c, http.StatusNotFound, 40400, "webhook not found")
		return
	}
	c.Status(http.StatusNoContent)
}
