package ai

import (
	"context"
	"fmt"
	"strings"
)

// Message is one prior conversation turn, oldest first.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Image is a multimodal attachment, already base64 encoded.
type Image struct {
	MediaType string
	Base64    string
}

// Request is the uniform completion request every wire variant accepts.
// Temperature is the bot's stored 0-100 integer; adapters divide by
// 100.0 before transmission. MaxTokens is assumed pre-validated against
// the per-model ceiling and passed through unmodified.
type Request struct {
	Model        string
	SystemPrompt string
	History      []Message
	UserText     string
	Image        *Image
	Contexts     []string // ranked retrieval snippets

	Temperature     int
	MaxTokens       int
	ReasoningEffort string // responses-style models only
	TextVerbosity   string // responses-style models only

	Suggestions bool
}

// Provider hides one vendor wire format behind the uniform request.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ProviderError carries the upstream model API's message. Any transport,
// auth, or validation failure from a provider surfaces as one of these.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func providerErr(provider, format string, args ...any) *ProviderError {
	return &ProviderError{Provider: provider, Message: fmt.Sprintf(format, args...)}
}

// SuggestionsDelimiter is the literal line the model is asked to emit
// before follow-up questions. Adapters never parse it; the orchestrator
// splits with SplitSuggestions.
const SuggestionsDelimiter = "---SUGGESTIONS---"

const suggestionsInstruction = "\n\nAfter your answer, output a line containing exactly " +
	SuggestionsDelimiter +
	" and then 2-3 short follow-up questions the user might ask next, one per line."

// SplitSuggestions separates the answer from the model's follow-up
// questions. A reply with no delimiter comes back unchanged with nil
// suggestions.
func SplitSuggestions(reply string) (string, []string) {
	answer, tail, found := strings.Cut(reply, SuggestionsDelimiter)
	if !found {
		return reply, nil
	}
	var suggestions []string
	for _, line := range strings.Split(tail, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789. "))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return strings.TrimSpace(answer), suggestions
}

func effectiveSystemPrompt(req Request) string {
	if !req.Suggestions {
		return req.SystemPrompt
	}
	return req.SystemPrompt + suggestionsInstruction
}

// contextualUserText folds retrieval snippets into the user turn for
// the message-list wire variants.
func contextualUserText(req Request) string {
	if len(req.Contexts) == 0 {
		return req.UserText
	}
	var b strings.Builder
	b.WriteString("Use the following context to help answer the question:\n\n")
	for i, ctx := range req.Contexts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[Context %d]: %s", i+1, ctx)
	}
	b.WriteString("\n\nUser question: ")
	b.WriteString(req.UserText)
	return b.String()
}

func temperatureFloat(t int) float64 {
	return float64(t) / 100.0
}
