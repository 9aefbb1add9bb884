package chat

import "time"

// Conversation is the message log scoped to one (bot, session) pair.
// The unique index makes get-or-create race-safe for caller-supplied
// session ids reused across retries.
type Conversation struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	BotID     string    `gorm:"size:36;not null;index:uniq_conv_bot_session,unique,priority:1" json:"bot_id"`
	SessionID string    `gorm:"size:255;not null;index:uniq_conv_bot_session,unique,priority:2" json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

type Message struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ConversationID uint64 `gorm:"index;not null" json:"-"`
	Role           string `gorm:"size:16;not null" json:"role"` // "user" or "assistant"
	Content        string `gorm:"type:text;not null" json:"content"`
	// Joined retrieval snippets that informed this reply, for audit.
	RagContext *string   `gorm:"type:text" json:"rag_context,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Message) TableName() string { return "messages" }
