package rag

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/chatforge/chatforge/internal/ai"
)

// payloadTextKeys is the preference order for extracting chunk text
// from a point payload.
var payloadTextKeys = []string{"text", "content", "page_content"}

const scrollPageSize = 100

// Gateway wraps the embedding function and the vector store. Retrieval
// is advisory: every failure degrades to "no results" so chat stays
// available when the store or embedder is down.
type Gateway struct {
	store VectorStore
	embed ai.EmbedFunc
}

func NewGateway(store VectorStore, embed ai.EmbedFunc) *Gateway {
	return &Gateway{store: store, embed: embed}
}

// Search embeds the query and returns the topK nearest chunk texts in
// the store's relevance order. Never returns an error.
func (g *Gateway) Search(ctx context.Context, collection, queryText string, topK int) []string {
	if g == nil || g.store == nil || g.embed == nil || collection == "" {
		return nil
	}
	vector, err := g.embed(ctx, queryText)
	if err != nil {
		log.Printf("rag_search embed failed collection=%s err=%v", collection, err)
		return nil
	}
	points, err := g.store.Query(ctx, collection, vector, topK)
	if err != nil {
		log.Printf("rag_search query failed collection=%s err=%v", collection, err)
		return nil
	}
	contexts := make([]string, 0, len(points))
	for _, point := range points {
		if text := payloadText(point.Payload); text != "" {
			contexts = append(contexts, text)
		}
	}
	return contexts
}

// FetchFullDocument returns every chunk of one source file joined in
// chunk order, or "" when nothing matches or the store is unreachable.
func (g *Gateway) FetchFullDocument(ctx context.Context, collection, filename string) string {
	if g == nil || g.store == nil || collection == "" || filename == "" {
		return ""
	}

	filter := map[string]any{"source": filename}
	var points []Point
	var cursor any
	for {
		page, next, err := g.store.Scroll(ctx, collection, filter, cursor, scrollPageSize)
		if err != nil {
			log.Printf("rag_full_document scroll failed collection=%s source=%s err=%v", collection, filename, err)
			return ""
		}
		points = append(points, page...)
		if next == nil || len(page) == 0 {
			break
		}
		cursor = next
	}
	if len(points) == 0 {
		return ""
	}

	sort.SliceStable(points, func(i, j int) bool {
		return chunkIndex(points[i].Payload) < chunkIndex(points[j].Payload)
	})

	texts := make([]string, 0, len(points))
	for _, point := range points {
		if text := payloadText(point.Payload); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// Ingest embeds chunks and upserts them under the given source name.
// Unlike the query paths this is allowed to fail: ingestion callers
// want to know.
func (g *Gateway) Ingest(ctx context.Context, collection string, points []UpsertPoint) error {
	if g == nil || g.store == nil {
		return fmt.Errorf("vector store not configured")
	}
	return g.store.Upsert(ctx, collection, points)
}

// EnsureCollection creates the collection when missing.
func (g *Gateway) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	if g == nil || g.store == nil {
		return fmt.Errorf("vector store not configured")
	}
	return g.store.EnsureCollection(ctx, collection, dimension)
}

func payloadText(payload map[string]any) string {
	for _, key := range payloadTextKeys {
		if raw, ok := payload[key]; ok {
			if text, ok := raw.(string); ok && text != "" {
				return text
			}
		}
	}
	if len(payload) == 0 {
		return ""
	}
	return fmt.Sprint(payload)
}

func chunkIndex(payload map[string]any) int64 {
	switch v := payload["chunk_index"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
