package webhook

import (
	"strings"
	"time"
)

// Lifecycle events a subscription can listen to.
const (
	EventConversationStarted = "conversation_started"
	EventMessageSent         = "message_sent"
	EventMessageReceived     = "message_received"
	EventConversationEnded   = "conversation_ended"
)

var allEvents = []string{
	EventConversationStarted,
	EventMessageSent,
	EventMessageReceived,
	EventConversationEnded,
}

func ValidEvent(event string) bool {
	for _, e := range allEvents {
		if e == event {
			return true
		}
	}
	return false
}

// Webhook is one subscription: a target URL plus the events it wants,
// with running delivery statistics mutated after every attempt.
type Webhook struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	BotID string `gorm:"size:36;index;not null" json:"bot_id"`

	URL string `gorm:"size:2048;not null" json:"url"`
	// Comma-separated event names.
	Events string `gorm:"type:text;not null" json:"events"`
	Secret string `gorm:"size:255" json:"-"`

	// No column default: an explicitly inactive subscription must stay
	// inactive on insert. Create sets the active flag.
	IsActive    bool   `json:"is_active"`
	Description string `gorm:"size:255" json:"description"`

	// Delivery stats; eventually consistent under concurrent dispatch.
	TotalCalls     int64      `json:"total_calls"`
	LastCalledAt   *time.Time `json:"last_called_at"`
	LastStatusCode *int       `json:"last_status_code"`
	LastError      *string    `gorm:"type:text" json:"last_error"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Webhook) TableName() string { return "webhooks" }

func (w *Webhook) EventList() []string {
	parts := strings.Split(w.Events, ",")
	events := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			events = append(events, trimmed)
		}
	}
	return events
}

func (w *Webhook) SubscribedTo(event string) bool {
	for _, e := range w.EventList() {
		if e == event {
			return true
		}
	}
	return false
}

// Payload is the envelope POSTed to subscriber URLs.
type Payload struct {
	Event     string         `json:"event"`
	BotID     string         `json:"bot_id"`
	BotName   string         `json:"bot_name"`
	SessionID string         `json:"session_id"`
	Timestamp time.Time      `json:"timestamp"`
	UserID    string         `json:"user_id,omitempty"`
	UserEmail string         `json:"user_email,omitempty"`
	Data      map[string]any `json:"data"`
}

// Identity is the optional authenticated end user behind a chat turn.
type Identity struct {
	UserID string
	Email  string
}
