package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/chatforge/chatforge/internal/bot"
)

func newBotsRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/bots", h.CreateBot)
	return r
}

func createBot(t *testing.T, r *gin.Engine, body string) bot.Bot {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/bots", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d: %s", w.Code, w.Body.String())
	}
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("envelope: %v", err)
	}
	var b bot.Bot
	if err := json.Unmarshal(env.Data, &b); err != nil {
		t.Fatalf("bot: %v", err)
	}
	return b
}

func TestCreateBotEndpoint_OmittedFieldsDefault(t *testing.T) {
	h, _ := newTestHandler(t, &stubProvider{})
	r := newBotsRouter(h)

	b := createBot(t, r, `{
		"name": "fresh",
		"provider": "anthropic",
		"model": "claude-3-5-sonnet",
		"system_prompt": "Hi."
	}`)

	if b.Temperature != 70 {
		t.Fatalf("expected default temperature 70, got %d", b.Temperature)
	}
	if !b.EnableMemory || !b.IsActive {
		t.Fatalf("expected memory and active defaults on: %+v", b)
	}
}

func TestCreateBotEndpoint_ExplicitZeroesKept(t *testing.T) {
	h, db := newTestHandler(t, &stubProvider{})
	r := newBotsRouter(h)

	b := createBot(t, r, `{
		"name": "deterministic",
		"provider": "anthropic",
		"model": "claude-3-5-sonnet",
		"system_prompt": "Hi.",
		"temperature": 0,
		"enable_memory": false,
		"is_active": false
	}`)

	var stored bot.Bot
	if err := db.First(&stored, "id = ?", b.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Temperature != 0 {
		t.Fatalf("temperature 0 overwritten, stored %d", stored.Temperature)
	}
	if stored.EnableMemory {
		t.Fatalf("enable_memory false overwritten")
	}
	if stored.IsActive {
		t.Fatalf("is_active false overwritten")
	}
}
