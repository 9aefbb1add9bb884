package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/chatforge/chatforge/internal/ai"
)

var (
	ErrNotFound = errors.New("bot not found")
	ErrNoAPIKey = errors.New("no API key configured for this bot")
)

// tokenCeilings maps model-name prefixes to the maximum allowed
// max_tokens setting. First match wins, so longer prefixes come first.
var tokenCeilings = []struct {
	prefix  string
	ceiling int
}{
	{"gpt-5", 128000},
	{"gpt-4o", 16384},
	{"gpt-4-turbo", 4096},
	{"gpt-4", 8192},
	{"gpt-3.5", 4096},
	{"claude-3-5", 8192},
	{"claude-3", 4096},
	{"claude-", 8192},
}

const defaultTokenCeiling = 4096

// TokenCeiling returns the max_tokens ceiling for a model name.
func TokenCeiling(model string) int {
	for _, entry := range tokenCeilings {
		if strings.HasPrefix(model, entry.prefix) {
			return entry.ceiling
		}
	}
	return defaultTokenCeiling
}

type Service struct {
	repo *Repo
}

func NewService(repo *Repo) *Service {
	return &Service{repo: repo}
}

// Get returns the bot or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Bot, error) {
	b, err := s.repo.GetBot(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// ResolveAPIKey materializes the bot's usable secret: the managed key
// record wins, the legacy inline field is the fallback, otherwise
// ErrNoAPIKey.
func (s *Service) ResolveAPIKey(ctx context.Context, b *Bot) (string, error) {
	if b.APIKeyID != nil && *b.APIKeyID != "" {
		key, err := s.repo.GetAPIKey(ctx, *b.APIKeyID)
		if err == nil && key.Key != "" {
			return key.Key, nil
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
	}
	if b.APIKey != "" {
		return b.APIKey, nil
	}
	return "", ErrNoAPIKey
}

// Validate enforces configuration-time invariants. The chat pipeline
// assumes values it receives are already in range.
func Validate(b *Bot) error {
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if _, err := ai.Classify(b.Provider, b.Model); err != nil {
		return err
	}
	if strings.TrimSpace(b.Model) == "" {
		return fmt.Errorf("model is required")
	}
	if strings.TrimSpace(b.SystemPrompt) == "" {
		return fmt.Errorf("system prompt is required")
	}
	if b.Temperature < 0 || b.Temperature > 100 {
		return fmt.Errorf("temperature must be in [0,100], got %d", b.Temperature)
	}
	if ceiling := TokenCeiling(b.Model); b.MaxTokens < 1 || b.MaxTokens > ceiling {
		return fmt.Errorf("max_tokens must be in [1,%d] for model %s, got %d", ceiling, b.Model, b.MaxTokens)
	}
	if b.RetrievalTopK < 1 || b.RetrievalTopK > 20 {
		return fmt.Errorf("retrieval top_k must be in [1,20], got %d", b.RetrievalTopK)
	}
	if b.MemoryMaxMessages < 1 || b.MemoryMaxMessages > 50 {
		return fmt.Errorf("memory_max_messages must be in [1,50], got %d", b.MemoryMaxMessages)
	}
	if b.UseRetrieval && strings.TrimSpace(b.RetrievalCollection) == "" {
		return fmt.Errorf("retrieval collection is required when retrieval is enabled")
	}
	return nil
}

// Create validates and stores a new bot, assigning defaults and an id.
func (s *Service) Create(ctx context.Context, b *Bot) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	applyDefaults(b)
	if err := Validate(b); err != nil {
		return err
	}
	return s.repo.CreateBot(ctx, b)
}

// Update validates and persists changes to an existing bot.
func (s *Service) Update(ctx context.Context, b *Bot) error {
	if err := Validate(b); err != nil {
		return err
	}
	return s.repo.SaveBot(ctx, b)
}

func (s *Service) List(ctx context.Context) ([]Bot, error) {
	return s.repo.ListBots(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) (bool, error) {
	return s.repo.DeleteBot(ctx, id)
}

func (s *Service) CreateAPIKey(ctx context.Context, name, key string) (*APIKey, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("key is required")
	}
	record := &APIKey{ID: uuid.NewString(), Name: name, Key: key}
	if err := s.repo.CreateAPIKey(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func applyDefaults(b *Bot) {
	if b.MaxTokens == 0 {
		b.MaxTokens = 1024
	}
	if b.ReasoningEffort == "" {
		b.ReasoningEffort = "medium"
	}
	if b.TextVerbosity == "" {
		b.TextVerbosity = "medium"
	}
	if b.RetrievalTopK == 0 {
		b.RetrievalTopK = 5
	}
	if b.MemoryMaxMessages == 0 {
		b.MemoryMaxMessages = 10
	}
	if b.WidgetColor == "" {
		b.WidgetColor = "#0066CC"
	}
}
