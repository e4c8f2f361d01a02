package vectorstore

import (
	"context"
	"time"

	"github.com/qdrant/go-client/qdrant"

	"github.com/openclaw/core/internal/clawerr"
	"github.com/openclaw/core/internal/types"
)

// QdrantStore backs the Store contract with a Qdrant collection.
type QdrantStore struct {
	client     *qdrant.Client
	collection string
}

func NewQdrantStore(client *qdrant.Client, collection string) *QdrantStore {
	return &QdrantStore{client: client, collection: collection}
}

func payloadToQdrant(payload map[string]any) map[string]*qdrant.Value {
	out := make(map[string]*qdrant.Value, len(payload))
	for k, v := range payload {
		out[k] = qdrant.NewValue(v)
	}
	return out
}

func payloadFromQdrant(payload map[string]*qdrant.Value) map[string]any {
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = v.AsInterface()
	}
	return out
}

func (s *QdrantStore) Upsert(ctx context.Context, item types.VectorItem) error {
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points: []*qdrant.PointStruct{
			{
				Id:      qdrant.NewID(item.ID),
				Vectors: qdrant.NewVectors(item.Vector...),
				Payload: payloadToQdrant(item.Payload),
			},
		},
	})
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "qdrant", Op: "upsert", Err: err}
	}
	return nil
}

func (s *QdrantStore) UpsertBatch(ctx context.Context, items []types.VectorItem) (int, error) {
	points := make([]*qdrant.PointStruct, 0, len(items))
	for _, item := range items {
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(item.ID),
			Vectors: qdrant.NewVectors(item.Vector...),
			Payload: payloadToQdrant(item.Payload),
		})
	}
	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{CollectionName: s.collection, Points: points})
	if err != nil {
		return 0, &clawerr.VectorStoreError{Backend: "qdrant", Op: "upsert_batch", Err: err}
	}
	return len(points), nil
}

func (s *QdrantStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]types.ScoredVectorItem, error) {
	limit := uint64(opts.Limit)
	if limit == 0 {
		limit = 10
	}

	resp, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, &clawerr.VectorStoreError{Backend: "qdrant", Op: "search", Err: err}
	}

	results := make([]types.ScoredVectorItem, 0, len(resp))
	for _, point := range resp {
		payload := payloadFromQdrant(point.GetPayload())
		if !MatchFilter(opts.Filter, payload) {
			continue
		}
		results = append(results, types.ScoredVectorItem{
			VectorItem: types.VectorItem{ID: point.GetId().String(), Payload: payload},
			Score:      float64(point.GetScore()),
		})
	}
	return results, nil
}

func (s *QdrantStore) Get(ctx context.Context, id string) (types.VectorItem, bool, error) {
	resp, err := s.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: s.collection,
		Ids:            []*qdrant.PointId{qdrant.NewID(id)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil || len(resp) == 0 {
		return types.VectorItem{}, false, nil
	}
	point := resp[0]
	return types.VectorItem{ID: id, Payload: payloadFromQdrant(point.GetPayload())}, true, nil
}

func (s *QdrantStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorIDs([]*qdrant.PointId{qdrant.NewID(id)}),
	})
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "qdrant", Op: "delete", Err: err}
	}
	return nil
}

// DeleteByFilter scans and deletes matching points client-side since the
// shared Filter AST is backend-agnostic rather than a native Qdrant
// filter expression.
func (s *QdrantStore) DeleteByFilter(ctx context.Context, filter types.Filter) (int, error) {
	limit := uint32(1000)
	resp, _, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return 0, &clawerr.VectorStoreError{Backend: "qdrant", Op: "delete_by_filter", Err: err}
	}

	var ids []*qdrant.PointId
	for _, point := range resp {
		payload := payloadFromQdrant(point.GetPayload())
		if MatchFilter(filter, payload) {
			ids = append(ids, point.GetId())
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorIDs(ids),
	})
	if err != nil {
		return 0, &clawerr.VectorStoreError{Backend: "qdrant", Op: "delete_by_filter", Err: err}
	}
	return len(ids), nil
}

func (s *QdrantStore) Stats(ctx context.Context) (types.VectorStoreStats, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{CollectionName: s.collection})
	if err != nil {
		return types.VectorStoreStats{}, &clawerr.VectorStoreError{Backend: "qdrant", Op: "stats", Err: err}
	}
	return types.VectorStoreStats{TotalVectors: int64(count), LastUpdated: time.Now().UTC()}, nil
}

func (s *QdrantStore) Clear(ctx context.Context) error {
	limit := uint32(10000)
	resp, _, err := s.client.Scroll(ctx, &qdrant.ScrollPoints{CollectionName: s.collection, Limit: &limit})
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "qdrant", Op: "clear", Err: err}
	}
	var ids []*qdrant.PointId
	for _, point := range resp {
		ids = append(ids, point.GetId())
	}
	if len(ids) == 0 {
		return nil
	}
	_, err = s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorIDs(ids),
	})
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "qdrant", Op: "clear", Err: err}
	}
	return nil
}
