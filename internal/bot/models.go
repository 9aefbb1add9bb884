package bot

import "time"

// Bot is one configured chatbot persona. Read-mostly from the chat
// pipeline's point of view.
type Bot struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`

	// Provider configuration
	Provider string  `gorm:"size:50;not null" json:"provider"` // "anthropic" or "openai"
	Model    string  `gorm:"size:100;not null" json:"model"`
	APIKeyID *string `gorm:"size:36;index" json:"api_key_id"`
	// Legacy inline key, kept for bots created before managed keys.
	APIKey string `gorm:"size:255" json:"-"`

	// Behavior. Defaults live in the create path, not in column
	// defaults: a column default would silently overwrite explicit
	// zero values like temperature 0 or enable_memory false.
	SystemPrompt string `gorm:"type:text;not null" json:"system_prompt"`
	Temperature  int    `json:"temperature"` // 0-100
	MaxTokens    int    `json:"max_tokens"`

	// Responses-style models only
	ReasoningEffort string `gorm:"size:20" json:"reasoning_effort"` // minimal, low, medium, high
	TextVerbosity   string `gorm:"size:20" json:"text_verbosity"`   // low, medium, high

	// Retrieval
	UseRetrieval        bool   `json:"use_retrieval"`
	RetrievalCollection string `gorm:"size:255" json:"retrieval_collection"`
	RetrievalTopK       int    `json:"retrieval_top_k"`

	// Memory
	EnableMemory      bool `json:"enable_memory"`
	MemoryMaxMessages int  `json:"memory_max_messages"`

	EnableSuggestions bool `json:"enable_suggestions"`

	// Widget
	WidgetTitle    string `gorm:"size:255" json:"widget_title"`
	WidgetColor    string `gorm:"size:7" json:"widget_color"`
	WidgetGreeting string `gorm:"type:text" json:"widget_greeting"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Bot) TableName() string { return "bots" }

// APIKey is a managed provider credential referenced by bots.
type APIKey struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Key       string    `gorm:"size:255;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (APIKey) TableName() string { return "api_keys" }
