package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embeddingsReq
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) != 2 || req.Model != "text-embedding-3-small" {
			t.Errorf("unexpected request: %+v", req)
		}
		// Deliberately out of order.
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0.2}},
				{"index": 0, "embedding": []float32{0.1}},
			},
		})
	}))
	defer srv.Close()

	c := NewEmbeddingClient(srv.URL, "sk", "", 5*time.Second)
	vectors, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 0.1 || vectors[1][0] != 0.2 {
		t.Fatalf("not reordered by index: %v", vectors)
	}
}

func TestEmbedBatch_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer srv.Close()

	c := NewEmbeddingClient(srv.URL, "sk", "", 5*time.Second)
	if _, err := c.EmbedBatch(context.Background(), []string{"a"}); !IsProviderError(err) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}
