package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AnthropicProvider speaks the Messages API: system prompt is a
// dedicated parameter and multimodal content is a list of typed parts.
type AnthropicProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

const anthropicVersion = "2023-06-01"

type anthropicTextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicImagePart struct {
	Type   string               `json:"type"`
	Source anthropicImageSource `json:"source"`
}

type anthropicMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []part
}

type anthropicChatReq struct {
	Model       string         `json:"model"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature"`
	System      string         `json:"system,omitempty"`
	Messages    []anthropicMsg `json:"messages"`
}

type anthropicChatResp struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicProvider(baseURL, apiKey string, timeout time.Duration) *AnthropicProvider {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &AnthropicProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", providerErr("anthropic", "api key is required")
	}

	messages := make([]anthropicMsg, 0, len(req.History)+1)
	for _, m := range req.History {
		messages = append(messages, anthropicMsg{Role: m.Role, Content: m.Content})
	}

	userText := contextualUserText(req)
	if req.Image != nil {
		messages = append(messages, anthropicMsg{
			Role: "user",
			Content: []any{
				anthropicImagePart{
					Type: "image",
					Source: anthropicImageSource{
						Type:      "base64",
						MediaType: req.Image.MediaType,
						Data:      req.Image.Base64,
					},
				},
				anthropicTextPart{Type: "text", Text: userText},
			},
		})
	} else {
		messages = append(messages, anthropicMsg{Role: "user", Content: userText})
	}

	body := anthropicChatReq{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: temperatureFloat(req.Temperature),
		System:      effectiveSystemPrompt(req),
		Messages:    messages,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1/messages", strings.TrimRight(p.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.Client.Do(httpReq)
	if err != nil {
		return "", providerErr("anthropic", "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", providerErr("anthropic", "%s", msg)
	}

	var decoded anthropicChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", providerErr("anthropic", "decode response: %v", err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", providerErr("anthropic", "%s", decoded.Error.Message)
	}
	for _, part := range decoded.Content {
		if part.Type == "text" && part.Text != "" {
			return part.Text, nil
		}
	}
	return "", providerErr("anthropic", "empty response")
}
