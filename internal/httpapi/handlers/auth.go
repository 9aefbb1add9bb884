package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/chatforge/chatforge/internal/common"
)

type loginReq struct {
	Password string `json:"password" binding:"required"`
}

// Login checks the operator password against the configured bcrypt
// hash and mints a redis-backed session token.
func (h *Handler) Login(c *gin.Context) {
	if h.Cfg.AdminPasswordHash == "" {
		common.Fail(c, http.StatusServiceUnavailable, 50302, "admin login not configured")
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40000, "password is required")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.Cfg.AdminPasswordHash), []byte(req.Password)); err != nil {
		common.Fail(c, http.StatusUnauthorized, 40102, "invalid credentials")
		return
	}

	token, err := h.Redis.CreateSession(c.Request.Context(), "admin", h.Cfg.AdminSessionTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 50002, "session create failed")
		return
	}
	common.OK(c, gin.H{
		"token":      token,
		"expires_in": int64(h.Cfg.AdminSessionTTL.Seconds()),
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token := c.GetHeader("X-Admin-Token")
	if token == "" {
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token != "" {
		_ = h.Redis.DeleteSession(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}
