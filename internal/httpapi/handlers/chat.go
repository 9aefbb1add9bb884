package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/chatforge/chatforge/internal/ai"
	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/chat"
	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/httpapi/middleware"
	"github.com/chatforge/chatforge/internal/webhook"
)

type chatReq struct {
	Message      string `json:"message" binding:"required"`
	SessionID    string `json:"session_id"`
	FullDocument string `json:"full_document"`
}

func identityFromContext(c *gin.Context) *webhook.Identity {
	userID := c.GetString(middleware.UserIDKey)
	email := c.GetString(middleware.UserEmailKey)
	if userID == "" && email == "" {
		return nil
	}
	return &webhook.Identity{UserID: userID, Email: email}
}

// Chat runs one turn against a bot. The body is either JSON or
// multipart form data with an optional file attachment.
func (h *Handler) Chat(c *gin.Context) {
	b, ok := h.loadBot(c)
	if !ok {
		return
	}

	turn, ok := h.bindTurn(c)
	if !ok {
		return
	}
	turn.Identity = identityFromContext(c)

	result, err := h.ChatSvc.HandleTurn(c.Request.Context(), b, *turn)
	if err != nil {
		switch {
		case errors.Is(err, chat.ErrBadConfig):
			common.Fail(c, http.StatusBadRequest, 40001, err.Error())
		case ai.IsProviderError(err):
			common.Fail(c, http.StatusBadGateway, 50201, err.Error())
		default:
			log.Printf("chat_turn bot=%s err=%v", b.ID, err)
			common.Fail(c, http.StatusInternalServerError, 50001, "chat turn failed")
		}
		return
	}

	resp := gin.H{
		"response":   result.Reply,
		"session_id": result.SessionID,
	}
	if len(result.Contexts) > 0 {
		resp["rag_context"] = result.Contexts
	}
	if len(result.Suggestions) > 0 {
		resp["suggestions"] = result.Suggestions
	}
	common.OK(c, resp)
}

// ClearSession wipes a session's messages. 204 on success, 404 when the
// bot never saw the session.
func (h *Handler) ClearSession(c *gin.Context) {
	b, ok := h.loadBot(c)
	if !ok {
		return
	}

	cleared, err := h.ChatSvc.ClearSession(c.Request.Context(), b, c.Param("session_id"))
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50001, "clear session failed")
		return
	}
	if !cleared {
		common.Fail(c, http.StatusNotFound, 40401, "session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) loadBot(c *gin.Context) (*bot.Bot, bool) {
	b, err := h.Bots.Get(c.Request.Context(), c.Param("bot_id"))
	if err != nil {
		if errors.Is(err, bot.ErrNotFound) {
			common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		} else {
			common.Fail(c, http.StatusInternalServerError, 50001, "bot lookup failed")
		}
		return nil, false
	}
	if !b.IsActive {
		common.Fail(c, http.StatusNotFound, 40400, "bot not found")
		return nil, false
	}
	return b, true
}

func (h *Handler) bindTurn(c *gin.Context) (*chat.TurnRequest, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.bindMultipartTurn(c)
	}

	var req chatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "message is required")
		return nil, false
	}
	return &chat.TurnRequest{
		SessionID:    req.SessionID,
		Message:      req.Message,
		FullDocument: req.FullDocument,
	}, true
}

func (h *Handler) bindMultipartTurn(c *gin.Context) (*chat.TurnRequest, bool) {
	message := c.PostForm("message")
	if message == "" {
		common.Fail(c, http.StatusBadRequest, 40000, "message is required")
		return nil, false
	}
	turn := &chat.TurnRequest{
		SessionID:    c.PostForm("session_id"),
		Message:      message,
		FullDocument: c.PostForm("full_document"),
	}

	fh, err := c.FormFile("file")
	if err != nil {
		// no attachment
		return turn, true
	}
	// Size is checked before the body is read; nothing downstream runs
	// for an oversize upload.
	if fh.Size > h.Cfg.ChatAttachmentMaxBytes {
		common.Fail(c, http.StatusRequestEntityTooLarge, 41300, "attachment too large")
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40002, "unreadable attachment")
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.Cfg.ChatAttachmentMaxBytes+1))
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 40002, "unreadable attachment")
		return nil, false
	}
	if int64(len(data)) > h.Cfg.ChatAttachmentMaxBytes {
		common.Fail(c, http.StatusRequestEntityTooLarge, 41300, "attachment too large")
		return nil, false
	}
	turn.Attachment = &chat.Attachment{Filename: fh.Filename, Data: data}
	return turn, true
}
