package rag

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStore struct {
	queryPoints  []Point
	queryErr     error
	queryLimit   int
	scrollPages  [][]Point
	scrollErr    error
	scrollCalls  int
	lastCursor   any
	upsertPoints []UpsertPoint
}

func (f *fakeStore) Query(_ context.Context, _ string, _ []float32, limit int) ([]Point, error) {
	f.queryLimit = limit
	return f.queryPoints, f.queryErr
}

type scrollCursor struct{ page int }

func (f *fakeStore) Scroll(_ context.Context, _ string, _ map[string]any, cursor any, _ int) ([]Point, any, error) {
	if f.scrollErr != nil {
		return nil, nil, f.scrollErr
	}
	f.scrollCalls++
	f.lastCursor = cursor
	if f.scrollCalls > len(f.scrollPages) {
		return nil, nil, nil
	}
	page := f.scrollPages[f.scrollCalls-1]
	var next any
	if f.scrollCalls < len(f.scrollPages) {
		next = &scrollCursor{page: f.scrollCalls}
	}
	return page, next, nil
}

func (f *fakeStore) Upsert(_ context.Context, _ string, points []UpsertPoint) error {
	f.upsertPoints = points
	return nil
}

func (f *fakeStore) EnsureCollection(_ context.Context, _ string, _ int) error { return nil }

func okEmbed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 2, 3}, nil
}

func TestSearch_ReturnsTextsInOrder(t *testing.T) {
	store := &fakeStore{queryPoints: []Point{
		{ID: "1", Payload: map[string]any{"text": "alpha"}},
		{ID: "2", Payload: map[string]any{"page_content": "beta"}},
		{ID: "3", Payload: map[string]any{"content": "gamma"}},
	}}
	g := NewGateway(store, okEmbed)

	got := g.Search(context.Background(), "docs", "query", 7)
	if store.queryLimit != 7 {
		t.Fatalf("topK not forwarded: %d", store.queryLimit)
	}
	if len(got) != 3 || got[0] != "alpha" || got[1] != "beta" || got[2] != "gamma" {
		t.Fatalf("unexpected contexts: %v", got)
	}
}

func TestSearch_DegradesOnFailure(t *testing.T) {
	g := NewGateway(&fakeStore{queryErr: errors.New("down")}, okEmbed)
	if got := g.Search(context.Background(), "docs", "q", 5); got != nil {
		t.Fatalf("expected nil on store failure, got %v", got)
	}

	g = NewGateway(&fakeStore{}, func(_ context.Context, _ string) ([]float32, error) {
		return nil, errors.New("embed down")
	})
	if got := g.Search(context.Background(), "docs", "q", 5); got != nil {
		t.Fatalf("expected nil on embed failure, got %v", got)
	}

	var nilGateway *Gateway
	if got := nilGateway.Search(context.Background(), "docs", "q", 5); got != nil {
		t.Fatalf("nil gateway must degrade, got %v", got)
	}
}

func TestFetchFullDocument_PagesAndSorts(t *testing.T) {
	store := &fakeStore{scrollPages: [][]Point{
		{
			{ID: "b", Payload: map[string]any{"text": "second", "chunk_index": int64(1)}},
			{ID: "c", Payload: map[string]any{"text": "third", "chunk_index": int64(2)}},
		},
		{
			{ID: "a", Payload: map[string]any{"text": "first", "chunk_index": int64(0)}},
		},
	}}
	g := NewGateway(store, okEmbed)

	got := g.FetchFullDocument(context.Background(), "docs", "manual.md")
	if got != "first\n\nsecond\n\nthird" {
		t.Fatalf("unexpected document: %q", got)
	}
	if store.scrollCalls < 2 {
		t.Fatalf("expected cursor pagination, got %d calls", store.scrollCalls)
	}
	// The store's cursor comes back untouched on the follow-up page.
	cursor, ok := store.lastCursor.(*scrollCursor)
	if !ok || cursor.page != 1 {
		t.Fatalf("cursor not passed back opaquely: %#v", store.lastCursor)
	}
}

func TestFetchFullDocument_EmptyAndFailure(t *testing.T) {
	g := NewGateway(&fakeStore{}, okEmbed)
	if got := g.FetchFullDocument(context.Background(), "docs", "missing.md"); got != "" {
		t.Fatalf("expected empty for unknown file, got %q", got)
	}

	g = NewGateway(&fakeStore{scrollErr: errors.New("down")}, okEmbed)
	if got := g.FetchFullDocument(context.Background(), "docs", "manual.md"); got != "" {
		t.Fatalf("expected empty on scroll failure, got %q", got)
	}
}

func TestPayloadText_KeyPreference(t *testing.T) {
	if got := payloadText(map[string]any{"content": "c", "text": "t"}); got != "t" {
		t.Fatalf("text must win: %q", got)
	}
	if got := payloadText(map[string]any{"page_content": "p"}); got != "p" {
		t.Fatalf("page_content fallback: %q", got)
	}
	if got := payloadText(nil); got != "" {
		t.Fatalf("empty payload: %q", got)
	}
	// Unknown keys fall back to a dump rather than dropping the chunk.
	if got := payloadText(map[string]any{"body": "x"}); !strings.Contains(got, "x") {
		t.Fatalf("dump fallback: %q", got)
	}
}

func TestIngest_RequiresStore(t *testing.T) {
	var nilGateway *Gateway
	if err := nilGateway.Ingest(context.Background(), "docs", nil); err == nil {
		t.Fatalf("expected error without store")
	}

	store := &fakeStore{}
	g := NewGateway(store, okEmbed)
	points := []UpsertPoint{{ID: "p1", Vector: []float32{1}, Payload: map[string]any{"text": "x"}}}
	if err := g.Ingest(context.Background(), "docs", points); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(store.upsertPoints) != 1 {
		t.Fatalf("points not forwarded")
	}
}
