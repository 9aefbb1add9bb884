package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIChatProvider speaks the Chat Completions API: the system prompt
// becomes a synthetic first message and image parts use data URIs.
type OpenAIChatProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

type openaiTextPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type openaiImageURL struct {
	URL string `json:"url"`
}

type openaiImagePart struct {
	Type     string         `json:"type"`
	ImageURL openaiImageURL `json:"image_url"`
}

type openaiMsg struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []part
}

type openaiChatReq struct {
	Model       string      `json:"model"`
	MaxTokens   int         `json:"max_tokens"`
	Temperature float64     `json:"temperature"`
	Messages    []openaiMsg `json:"messages"`
}

type openaiChatResp struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIChatProvider(baseURL, apiKey string, timeout time.Duration) *OpenAIChatProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &OpenAIChatProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIChatProvider) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", providerErr("openai", "api key is required")
	}

	messages := make([]openaiMsg, 0, len(req.History)+2)
	messages = append(messages, openaiMsg{Role: "system", Content: effectiveSystemPrompt(req)})
	for _, m := range req.History {
		messages = append(messages, openaiMsg{Role: m.Role, Content: m.Content})
	}

	userText := contextualUserText(req)
	if req.Image != nil {
		dataURI := fmt.Sprintf("data:%s;base64,%s", req.Image.MediaType, req.Image.Base64)
		messages = append(messages, openaiMsg{
			Role: "user",
			Content: []any{
				openaiTextPart{Type: "text", Text: userText},
				openaiImagePart{Type: "image_url", ImageURL: openaiImageURL{URL: dataURI}},
			},
		})
	} else {
		messages = append(messages, openaiMsg{Role: "user", Content: userText})
	}

	body := openaiChatReq{
		Model:       req.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: temperatureFloat(req.Temperature),
		Messages:    messages,
	}

	raw, err := postOpenAI(ctx, p.Client, p.BaseURL, "/chat/completions", p.APIKey, body)
	if err != nil {
		return "", err
	}

	var decoded openaiChatResp
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", providerErr("openai", "decode response: %v", err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", providerErr("openai", "%s", decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", providerErr("openai", "empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}

// postOpenAI performs one JSON POST against an OpenAI-style endpoint
// and returns the raw body for the caller to decode.
func postOpenAI(ctx context.Context, client *http.Client, baseURL, path, apiKey string, body any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, providerErr("openai", "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return nil, providerErr("openai", "%s", msg)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, providerErr("openai", "read response: %v", err)
	}
	if len(raw) == 0 {
		return nil, providerErr("openai", "empty response")
	}
	return raw, nil
}

// IsProviderError reports whether err originated from a model API.
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
