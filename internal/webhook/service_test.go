package webhook

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type captureSender struct {
	mu    sync.Mutex
	tasks []Delivery
}

func (s *captureSender) Send(_ context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, d)
	return nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormsqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Webhook{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTrigger_FanOutAndFiltering(t *testing.T) {
	db := openTestDB(t)
	sender := &captureSender{}
	svc := NewService(NewRepo(db), sender)
	ctx := context.Background()

	seed := []Webhook{
		{ID: "w1", BotID: "bot-1", URL: "https://a.example/hook", Events: EventMessageSent + "," + EventMessageReceived, IsActive: true},
		{ID: "w2", BotID: "bot-1", URL: "https://b.example/hook", Events: EventConversationStarted, IsActive: true},
		{ID: "w3", BotID: "bot-1", URL: "https://c.example/hook", Events: EventMessageSent, IsActive: false},
		{ID: "w4", BotID: "bot-2", URL: "https://d.example/hook", Events: EventMessageSent, IsActive: true},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	svc.Trigger(ctx, "bot-1", "Support", EventMessageSent, "sess-1", nil, map[string]any{"message": "hi"})

	if len(sender.tasks) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sender.tasks))
	}
	d := sender.tasks[0]
	if d.WebhookID != "w1" {
		t.Fatalf("wrong subscription matched: %s", d.WebhookID)
	}
	if d.Headers["X-Webhook-Event"] != EventMessageSent || d.Headers["X-Bot-ID"] != "bot-1" || d.Headers["X-Session-ID"] != "sess-1" {
		t.Fatalf("unexpected headers: %v", d.Headers)
	}
	if _, signed := d.Headers["X-Webhook-Signature"]; signed {
		t.Fatalf("no secret, no signature")
	}

	var payload Payload
	if err := json.Unmarshal(d.Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.Event != EventMessageSent || payload.BotName != "Support" || payload.Data["message"] != "hi" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
}

func TestDisabledSubscriptionPersistsDisabled(t *testing.T) {
	db := openTestDB(t)

	hook := Webhook{ID: "wd", BotID: "bot-d", URL: "https://d.example/hook", Events: EventMessageSent, IsActive: false}
	if err := db.Create(&hook).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	var stored Webhook
	if err := db.First(&stored, "id = ?", "wd").Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("disabled subscription stored as active")
	}
}

func TestTrigger_SignsWhenSecretPresent(t *testing.T) {
	db := openTestDB(t)
	sender := &captureSender{}
	svc := NewService(NewRepo(db), sender)

	hook := Webhook{ID: "ws", BotID: "bot-s", URL: "https://s.example/hook", Events: EventMessageSent, Secret: "topsecret", IsActive: true}
	if err := db.Create(&hook).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc.Trigger(context.Background(), "bot-s", "Support", EventMessageSent, "sess", nil, nil)
	if len(sender.tasks) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sender.tasks))
	}
	d := sender.tasks[0]
	sig := d.Headers["X-Webhook-Signature"]
	if sig != "sha256="+Sign(d.Body, "topsecret") {
		t.Fatalf("bad signature: %q", sig)
	}
}

func TestTrigger_IdentityInPayload(t *testing.T) {
	db := openTestDB(t)
	sender := &captureSender{}
	svc := NewService(NewRepo(db), sender)

	hook := Webhook{ID: "wi", BotID: "bot-i", URL: "https://i.example/hook", Events: EventMessageSent, IsActive: true}
	if err := db.Create(&hook).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	svc.Trigger(context.Background(), "bot-i", "Support", EventMessageSent, "sess",
		&Identity{UserID: "u-9", Email: "u9@example.com"}, nil)

	var payload Payload
	if err := json.Unmarshal(sender.tasks[0].Body, &payload); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if payload.UserID != "u-9" || payload.UserEmail != "u9@example.com" {
		t.Fatalf("identity lost: %+v", payload)
	}
}

func TestCreate_ValidatesEvents(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(NewRepo(db), &captureSender{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "bot-c", "https://x.example", []string{"message_deleted"}, "", ""); err == nil {
		t.Fatalf("expected unknown event rejection")
	}
	if _, err := svc.Create(ctx, "bot-c", "https://x.example", nil, "", ""); err == nil {
		t.Fatalf("expected empty events rejection")
	}
	w, err := svc.Create(ctx, "bot-c", "https://x.example", []string{EventMessageSent, EventConversationEnded}, "s", "desc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.ID == "" || !w.SubscribedTo(EventConversationEnded) || w.SubscribedTo(EventMessageReceived) {
		t.Fatalf("unexpected subscription: %+v", w)
	}
}
