package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userAgent = "ChatForge-Webhook/1.0"

// Service resolves subscriptions and hands deliveries to the Sender.
type Service struct {
	repo   *Repo
	sender Sender
}

func NewService(repo *Repo, sender Sender) *Service {
	return &Service{repo: repo, sender: sender}
}

// Trigger fans an event out to every matching subscription. It never
// blocks on delivery and never returns an error into the chat turn;
// enqueue failures are logged and recorded as delivery errors.
func (s *Service) Trigger(ctx context.Context, botID, botName, event, sessionID string, identity *Identity, data map[string]any) {
	hooks, err := s.repo.ListActiveForEvent(ctx, botID, event)
	if err != nil {
		log.Printf("webhook_trigger bot=%s event=%s err=%v", botID, event, err)
		return
	}
	if len(hooks) == 0 {
		return
	}

	payload := Payload{
		Event:     event,
		BotID:     botID,
		BotName:   botName,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	if identity != nil {
		payload.UserID = identity.UserID
		payload.UserEmail = identity.Email
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("webhook_trigger bot=%s event=%s marshal err=%v", botID, event, err)
		return
	}

	for _, hook := range hooks {
		headers := map[string]string{
			"Content-Type":    "application/json",
			"User-Agent":      userAgent,
			"X-Webhook-Event": event,
			"X-Bot-ID":        botID,
			"X-Session-ID":    sessionID,
		}
		if hook.Secret != "" {
			headers["X-Webhook-Signature"] = "sha256=" + Sign(body, hook.Secret)
		}
		delivery := Delivery{
			WebhookID: hook.ID,
			URL:       hook.URL,
			Body:      body,
			Headers:   headers,
		}
		if err := s.sender.Send(ctx, delivery); err != nil {
			log.Printf("webhook_enqueue id=%s err=%v", hook.ID, err)
		}
	}
}

// Create registers a subscription after validating its event names.
func (s *Service) Create(ctx context.Context, botID, url string, events []string, secret, description string) (*Webhook, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("url is required")
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("at least one event is required")
	}
	for _, e := range events {
		if !ValidEvent(e) {
			return nil, fmt.Errorf("unknown event: %s", e)
		}
	}
	w := &Webhook{
		ID:          uuid.NewString(),
		BotID:       botID,
		URL:         url,
		Events:      strings.Join(events, ","),
		Secret:      secret,
		Description: description,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

func (s *Service) ListForBot(ctx context.Context, botID string) ([]Webhook, error) {
	return s.repo.ListForBot(ctx, botID, false)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.Delete(ctx, id)
}
