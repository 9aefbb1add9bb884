package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chatforge/chatforge/internal/ai"
	"github.com/chatforge/chatforge/internal/bot"
	"github.com/chatforge/chatforge/internal/common"
	"github.com/chatforge/chatforge/internal/document"
	"github.com/chatforge/chatforge/internal/rag"
	"github.com/chatforge/chatforge/internal/webhook"
)

// ErrBadConfig marks configuration failures rejected before any
// network call: missing API key, unsupported provider.
var ErrBadConfig = errors.New("invalid bot configuration")

// Service is the chat-turn orchestrator. All collaborators are
// injected; the service itself holds no per-turn state and is safe for
// concurrent use.
type Service struct {
	repo      *Repo
	bots      *bot.Service
	registry  *ai.Registry
	retrieval *rag.Gateway
	extractor document.Extractor
	webhooks  *webhook.Service
}

func NewService(repo *Repo, bots *bot.Service, registry *ai.Registry, retrieval *rag.Gateway, extractor document.Extractor, webhooks *webhook.Service) *Service {
	return &Service{
		repo:      repo,
		bots:      bots,
		registry:  registry,
		retrieval: retrieval,
		extractor: extractor,
		webhooks:  webhooks,
	}
}

// TurnRequest is one inbound user message for a bot.
type TurnRequest struct {
	SessionID    string // empty means generate one
	Message      string
	Attachment   *Attachment
	FullDocument string // filename override: inject the whole document instead of similarity search
	Identity     *webhook.Identity
}

type TurnResult struct {
	Reply       string
	SessionID   string
	Contexts    []string
	Suggestions []string
}

// HandleTurn runs the pipeline for one message: resolve conversation,
// load memory, ingest attachment, retrieve context, persist the user
// turn, invoke the provider, persist the reply, notify. Only provider
// and conversation-store failures abort the turn.
func (s *Service) HandleTurn(ctx context.Context, b *bot.Bot, req TurnRequest) (*TurnResult, error) {
	// Configuration problems are rejected before any network call.
	apiKey, err := s.bots.ResolveAPIKey(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}
	provider, err := s.registry.For(b.Provider, b.Model, apiKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadConfig, err)
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID, err = common.NewULID()
		if err != nil {
			return nil, err
		}
	}

	conv, isNew, err := s.repo.GetOrCreateConversation(ctx, b.ID, sessionID)
	if err != nil {
		return nil, err
	}
	if isNew {
		s.webhooks.Trigger(ctx, b.ID, b.Name, webhook.EventConversationStarted, sessionID, req.Identity, map[string]any{
			"message": req.Message,
		})
	}

	var history []ai.Message
	if b.EnableMemory {
		recent, err := s.repo.RecentMessages(ctx, conv.ID, b.MemoryMaxMessages)
		if err != nil {
			return nil, err
		}
		history = make([]ai.Message, 0, len(recent))
		for _, m := range recent {
			history = append(history, ai.Message{Role: m.Role, Content: m.Content})
		}
	}

	effectiveText := req.Message
	var image *ai.Image
	if req.Attachment != nil {
		if image = imageBlock(req.Attachment); image == nil {
			effectiveText = documentText(s.extractor, req.Attachment, req.Message)
		}
	}

	contexts := s.gatherContexts(ctx, b, req.FullDocument, effectiveText)

	// The user turn is recorded before the model call so history
	// survives a provider failure.
	userMsg := &Message{
		ConversationID: conv.ID,
		Role:           "user",
		Content:        displayContent(req.Message, req.Attachment),
	}
	if err := s.repo.InsertMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	s.webhooks.Trigger(ctx, b.ID, b.Name, webhook.EventMessageSent, sessionID, req.Identity, map[string]any{
		"message": req.Message,
	})

	reply, err := provider.Complete(ctx, ai.Request{
		Model:           b.Model,
		SystemPrompt:    b.SystemPrompt,
		History:         history,
		UserText:        effectiveText,
		Image:           image,
		Contexts:        contexts,
		Temperature:     b.Temperature,
		MaxTokens:       b.MaxTokens,
		ReasoningEffort: b.ReasoningEffort,
		TextVerbosity:   b.TextVerbosity,
		Suggestions:     b.EnableSuggestions,
	})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	if b.EnableSuggestions {
		reply, suggestions = ai.SplitSuggestions(reply)
	}

	assistantMsg := &Message{
		ConversationID: conv.ID,
		Role:           "assistant",
		Content:        reply,
	}
	if len(contexts) > 0 {
		joined := strings.Join(contexts, "\n")
		assistantMsg.RagContext = &joined
	}
	if err := s.repo.InsertMessage(ctx, assistantMsg); err != nil {
		return nil, err
	}

	s.webhooks.Trigger(ctx, b.ID, b.Name, webhook.EventMessageReceived, sessionID, req.Identity, map[string]any{
		"user_message":      req.Message,
		"assistant_message": reply,
		"used_rag":          len(contexts) > 0,
	})

	return &TurnResult{
		Reply:       reply,
		SessionID:   sessionID,
		Contexts:    contexts,
		Suggestions: suggestions,
	}, nil
}

// gatherContexts resolves retrieval context for the turn. The
// full-document override bypasses similarity search but falls back to
// it when the named file has no chunks. Retrieval never fails a turn.
func (s *Service) gatherContexts(ctx context.Context, b *bot.Bot, fullDocument, queryText string) []string {
	if !b.UseRetrieval || b.RetrievalCollection == "" || s.retrieval == nil {
		return nil
	}
	if fullDocument != "" {
		if doc := s.retrieval.FetchFullDocument(ctx, b.RetrievalCollection, fullDocument); doc != "" {
			return []string{doc}
		}
	}
	return s.retrieval.Search(ctx, b.RetrievalCollection, queryText, b.RetrievalTopK)
}

// ClearSession deletes the session's conversation and all its messages,
// reporting whether one existed, so a repeat clear reports false.
// Racing an in-flight turn is allowed; last writer wins on the message
// table.
func (s *Service) ClearSession(ctx context.Context, b *bot.Bot, sessionID string) (bool, error) {
	cleared, err := s.repo.DeleteSessionMessages(ctx, b.ID, sessionID)
	if err != nil || !cleared {
		return cleared, err
	}
	s.webhooks.Trigger(ctx, b.ID, b.Name, webhook.EventConversationEnded, sessionID, nil, map[string]any{})
	return true, nil
}
