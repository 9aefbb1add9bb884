package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"
)

// EmbedFunc turns text into a dense vector. The retrieval gateway takes
// one of these so tests can inject a deterministic embedding.
type EmbedFunc func(ctx context.Context, text string) ([]float32, error)

// EmbeddingClient calls the OpenAI embeddings endpoint with a shared
// platform key (bots do not supply their own embedding credentials).
type EmbeddingClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type embeddingsReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResp struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewEmbeddingClient(baseURL, apiKey, model string, timeout time.Duration) *EmbeddingClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EmbeddingClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: timeout},
	}
}

func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds several texts in one call, returned in input order.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, providerErr("openai", "no api key available for embeddings")
	}

	raw, err := postOpenAI(ctx, c.Client, c.BaseURL, "/embeddings", c.APIKey, embeddingsReq{
		Model: c.Model,
		Input: texts,
	})
	if err != nil {
		return nil, err
	}

	var decoded embeddingsResp
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, providerErr("openai", "decode embeddings: %v", err)
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return nil, providerErr("openai", "%s", decoded.Error.Message)
	}
	if len(decoded.Data) != len(texts) {
		return nil, providerErr("openai", "expected %d embeddings, got %d", len(texts), len(decoded.Data))
	}

	sort.Slice(decoded.Data, func(i, j int) bool {
		return decoded.Data[i].Index < decoded.Data[j].Index
	})
	vectors := make([][]float32, 0, len(decoded.Data))
	for _, item := range decoded.Data {
		vectors = append(vectors, item.Embedding)
	}
	return vectors, nil
}
