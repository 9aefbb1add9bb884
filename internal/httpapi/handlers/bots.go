package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/common"
)

// botPayload wraps the model so omitted fields can be told apart from
// explicit zero values: temperature 0, enable_memory false and
// is_active false are all meaningful settings.
type botPayload struct {
	bot.Bot
	Temperature  *int  `json:"temperature"`
	EnableMemory *bool `json:"enable_memory"`
	IsActive     *bool `json:"is_active"`
}

func (p *botPayload) toBot() *bot.Bot {
	b := p.Bot
	b.Temperature = 70
	if p.Temperature != nil {
		b.Temperature = *p.Temperature
	}
	b.EnableMemory = true
	if p.EnableMemory != nil {
		b.EnableMemory = *p.EnableMemory
	}
	b.IsActive = true
	if p.IsActive != nil {
		b.IsActive = *p.IsActive
	}
	return &b
}

func (h *Handler) CreateBot(c *gin.Context) {
	var payload botPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "invalid body")
		return
	}
	b := payload.toBot()
	if err := h.Bots.Create(c.Request.Context(), b); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, err.Error())
		return
	}
	common.OK(c, b)
}

func (h *Handler) GetBot(c *gin.Context) {
	b, err := h.Bots.Get(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		} else {
			common.Fail(c, http.StatusInternalServerError, 50001, "bot lookup failed")
		}
		return
	}
	common.OK(c, b)
}

func (h *Handler) ListBots(c *gin.Context) {
	bots, err := h.Bots.List(c.Request.Context())
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "bot list failed")
		return
	}
	common.OK(c, bots)
}

func (h *Handler) UpdateBot(c *gin.Context) {
	existing, err := h.Bots.Get(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		} else {
			common.Fail(c, http.StatusInternalServerError, 50001, "bot lookup failed")
		}
		return
	}

	var payload botPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "invalid body")
		return
	}
	b := payload.toBot()
	b.ID = existing.ID
	if err := h.Bots.Update(c.Request.Context(), b); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, err.Error())
		return
	}
	common.OK(c, b)
}

func (h *Handler) DeleteBot(c *gin.Context) {
	deleted, err := h.Bots.Delete(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "bot delete failed")
		return
	}
	if !deleted {
		common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		return
	}
	c.Status(http.StatusNoContent)
}

type createAPIKeyReq struct {
	Name string `json:"name" binding:"required"`
	Key  string `json:"key" binding:"required"`
}

func (h *Handler) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "name and key are required")
		return
	}
	k, err := h.Bots.CreateAPIKey(c.Request.Context(), req.Name, req.Key)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "api key create failed")
		return
	}
	common.OK(c, k)
}
