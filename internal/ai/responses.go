package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// OpenAIResponsesProvider speaks the single-input Responses API used by
// the gpt-5 family: no message list, one newline-joined input string,
// reasoning/verbosity enums instead of temperature, and
// max_output_tokens instead of max_tokens.
type OpenAIResponsesProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type responsesReasoning struct {
	Effort string `json:"effort"`
}

type responsesText struct {
	Verbosity string `json:"verbosity"`
}

type responsesReq struct {
	Model           string              `json:"model"`
	Input           string              `json:"input"`
	Reasoning       *responsesReasoning `json:"reasoning,omitempty"`
	Text            *responsesText      `json:"text,omitempty"`
	MaxOutputTokens int                 `json:"max_output_tokens,omitempty"`
}

type responsesResp struct {
	OutputText string `json:"output_text"`
	Output     []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIResponsesProvider(baseURL, apiKey string, timeout time.Duration) *OpenAIResponsesProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAIResponsesProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

// buildInput serializes system prompt, history, retrieval context and
// the current user line into the single input string, in that order.
func buildInput(req Request) string {
	var parts []string

	if prompt := effectiveSystemPrompt(req); prompt != "" {
		parts = append(parts, "System instructions: "+prompt+"\n")
	}

	if len(req.History) > 0 {
		parts = append(parts, "Previous conversation:")
		for _, m := range req.History {
			parts = append(parts, capitalize(m.Role)+": "+m.Content)
		}
		parts = append(parts, "")
	}

	if len(req.Contexts) > 0 {
		parts = append(parts, "Relevant context:")
		for i, ctx := range req.Contexts {
			parts = append(parts, "["+strconv.Itoa(i+1)+"]: "+ctx)
		}
		parts = append(parts, "")
	}

	parts = append(parts, "User: "+req.UserText)
	return strings.Join(parts, "\n")
}

func (p *OpenAIResponsesProvider) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", providerErr("openai", "api key is required")
	}

	body := responsesReq{
		Model:           req.Model,
		Input:           buildInput(req),
		MaxOutputTokens: req.MaxTokens,
	}
	if req.ReasoningEffort != "" {
		body.Reasoning = &responsesReasoning{Effort: req.ReasoningEffort}
	}
	if req.TextVerbosity != "" {
		body.Text = &responsesText{Verbosity: req.TextVerbosity}
	}

	raw, err := postOpenAI(ctx, p.Client, p.BaseURL, "/responses", p.APIKey, body)
	if err != nil {
		return "", err
	}

	var decoded responsesResp
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", providerErr("openai", "decode response: %v", err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", providerErr("openai", "%s", decoded.Error.Message)
	}
	if decoded.OutputText != "" {
		return decoded.OutputText, nil
	}
	for _, out := range decoded.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" && part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", providerErr("openai", "empty response")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
