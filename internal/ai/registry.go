package ai

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Kind is the closed set of wire variants. A (provider, model) pair
// classifies to exactly one kind; adding a variant means adding a
// constant here and a case in Classify.
type Kind string

const (
	KindAnthropic       Kind = "anthropic"
	KindOpenAIChat      Kind = "openai-chat"
	KindOpenAIResponses Kind = "openai-responses"
)

// responsesModelPrefixes selects the single-input Responses API.
// Prefix match, not equality: vendors publish dated/suffixed variants.
var responsesModelPrefixes = []string{
	"gpt-5",
	"gpt-5-mini",
	"gpt-5-nano",
	"gpt-5-thinking",
	"gpt-5-thinking-mini",
	"gpt-5-thinking-nano",
	"gpt-5-chat-latest",
}

// Classify resolves the wire variant for a bot's provider and model.
// Pure; called once per turn.
func Classify(provider, model string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "anthropic":
		return KindAnthropic, nil
	case "openai":
		for _, prefix := range responsesModelPrefixes {
			if strings.HasPrefix(model, prefix) {
				return KindOpenAIResponses, nil
			}
		}
		return KindOpenAIChat, nil
	default:
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}
}

// Factory builds a provider bound to one bot's API key.
type Factory func(apiKey string) Provider

type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

func (r *Registry) Register(kind Kind, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[kind] = f
}

// For classifies the pair and constructs the matching provider.
func (r *Registry) For(provider, model, apiKey string) (Provider, error) {
	kind, err := Classify(provider, model)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider registered for %s", kind)
	}
	return f(apiKey), nil
}

// DefaultRegistry wires the three real wire clients. Base URLs may be
// empty for the vendor defaults.
func DefaultRegistry(anthropicBaseURL, openaiBaseURL string, timeout time.Duration) *Registry {
	r := NewRegistry()
	r.Register(KindAnthropic, func(apiKey string) Provider {
		return NewAnthropicProvider(anthropicBaseURL, apiKey, timeout)
	})
	r.Register(KindOpenAIChat, func(apiKey string) Provider {
		return NewOpenAIChatProvider(openaiBaseURL, apiKey, timeout)
	})
	r.Register(KindOpenAIResponses, func(apiKey string) Provider {
		return NewOpenAIResponsesProvider(openaiBaseURL, apiKey, timeout)
	})
	return r
}
