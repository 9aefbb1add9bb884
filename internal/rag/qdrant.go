package rag

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/qdrant/go-client/qdrant"
)

// Point is one stored chunk as returned from the vector store.
type Point struct {
	ID      string
	Payload map[string]any
}

// UpsertPoint is one chunk with its embedding, ready for storage.
type UpsertPoint struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// VectorStore is the nearest-neighbor service consumed by the gateway.
// The storage engine behind it is a black box.
type VectorStore interface {
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]Point, error)
	Scroll(ctx context.Context, collection string, filter map[string]any, cursor any, limit int) ([]Point, any, error)
	Upsert(ctx context.Context, collection string, points []UpsertPoint) error
	EnsureCollection(ctx context.Context, collection string, dimension int) error
}

// QdrantStore implements VectorStore over the qdrant gRPC client.
type QdrantStore struct {
	client *qdrant.Client
}

func NewQdrantStore(baseURL, apiKey string) (*QdrantStore, error) {
	host, port, useTLS, err := parseEndpoint(baseURL)
	if err != nil {
		return nil, err
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, err
	}
	return &QdrantStore{client: client}, nil
}

func (s *QdrantStore) Query(ctx context.Context, collection string, vector []float32, limit int) ([]Point, error) {
	if limit <= 0 {
		limit = 5
	}
	results, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collection,
		Query:          qdrant.NewQueryDense(vector),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}
	points := make([]Point, 0, len(results))
	for _, scored := range results {
		points = append(points, Point{
			ID:      pointIDToString(scored.GetId()),
			Payload: valueMapToInterface(scored.GetPayload()),
		})
	}
	return points, nil
}

// Scroll pages through a collection filtered by payload equality. The
// cursor is qdrant's next-page offset, passed back opaquely so numeric
// and UUID point ids both survive pagination; nil means done.
func (s *QdrantStore) Scroll(ctx context.Context, collection string, filter map[string]any, cursor any, limit int) ([]Point, any, error) {
	if limit <= 0 {
		limit = 100
	}
	req := &qdrant.ScrollPoints{
		CollectionName: collection,
		Limit:          qdrant.PtrOf(uint32(limit)),
		Filter:         buildFilter(filter),
		WithPayload:    qdrant.NewWithPayload(true),
	}
	if cursor != nil {
		offset, ok := cursor.(*qdrant.PointId)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected scroll cursor type %T", cursor)
		}
		req.Offset = offset
	}

	resp, err := s.client.GetPointsClient().Scroll(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	points := make([]Point, 0, len(resp.GetResult()))
	for _, point := range resp.GetResult() {
		points = append(points, Point{
			ID:      pointIDToString(point.GetId()),
			Payload: valueMapToInterface(point.GetPayload()),
		})
	}
	var next any
	if offset := resp.GetNextPageOffset(); offset != nil {
		next = offset
	}
	return points, next, nil
}

func (s *QdrantStore) Upsert(ctx context.Context, collection string, points []UpsertPoint) error {
	if len(points) == 0 {
		return nil
	}
	qPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		payload, err := qdrant.TryValueMap(point.Payload)
		if err != nil {
			return err
		}
		qPoints = append(qPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(point.ID),
			Vectors: qdrant.NewVectorsDense(point.Vector),
			Payload: payload,
		})
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qPoints,
	})
	return err
}

func (s *QdrantStore) EnsureCollection(ctx context.Context, collection string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if dimension <= 0 {
		dimension = 1536
	}
	return s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func parseEndpoint(endpoint string) (string, int, bool, error) {
	if endpoint == "" {
		return "127.0.0.1", 6334, false, nil
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", 0, false, err
	}
	host := parsed.Hostname()
	if host == "" {
		host = "127.0.0.1"
	}
	port := 6334
	if parsed.Port() != "" {
		p, err := strconv.Atoi(parsed.Port())
		if err != nil {
			return "", 0, false, err
		}
		port = p
	}
	return host, port, parsed.Scheme == "https", nil
}

func buildFilter(filter map[string]any) *qdrant.Filter {
	if len(filter) == 0 {
		return nil
	}
	conditions := make([]*qdrant.Condition, 0, len(filter))
	for key, value := range filter {
		switch typed := value.(type) {
		case string:
			conditions = append(conditions, qdrant.NewMatch(key, typed))
		case bool:
			conditions = append(conditions, qdrant.NewMatchBool(key, typed))
		case int:
			conditions = append(conditions, qdrant.NewMatchInt(key, int64(typed)))
		case int64:
			conditions = append(conditions, qdrant.NewMatchInt(key, typed))
		default:
			conditions = append(conditions, qdrant.NewMatch(key, fmt.Sprint(value)))
		}
	}
	return &qdrant.Filter{Must: conditions}
}

func pointIDToString(id *qdrant.PointId) string {
	if id == nil {
		return ""
	}
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}
	if num := id.GetNum(); num != 0 {
		return strconv.FormatUint(num, 10)
	}
	return ""
}

func valueMapToInterface(values map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(values))
	for key, value := range values {
		result[key] = valueToInterface(value)
	}
	return result
}

func valueToInterface(value *qdrant.Value) any {
	if value == nil {
		return nil
	}
	switch kind := value.GetKind().(type) {
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_BoolValue:
		return kind.BoolValue
	case *qdrant.Value_IntegerValue:
		return kind.IntegerValue
	case *qdrant.Value_DoubleValue:
		return kind.DoubleValue
	case *qdrant.Value_StringValue:
		return kind.StringValue
	case *qdrant.Value_StructValue:
		return valueMapToInterface(kind.StructValue.GetFields())
	case *qdrant.Value_ListValue:
		items := make([]any, 0, len(kind.ListValue.GetValues()))
		for _, item := range kind.ListValue.GetValues() {
			items = append(items, valueToInterface(item))
		}
		return items
	default:
		return nil
	}
}
