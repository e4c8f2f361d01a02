package types

import "time"

// VectorItem is a single embedded record: a fixed-dimension vector plus a
// free-form JSON payload. Dimension is fixed per collection and is not
// validated here; of the store implementations, only PgVectorStore checks
// it on upsert.
type VectorItem struct {
	ID        string         `json:"id"`
	Vector    []float32      `json:"vector"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewVectorItem(id string, vector []float32, payload map[string]any) VectorItem {
	return VectorItem{ID: id, Vector: vector, Payload: payload, CreatedAt: time.Now().UTC()}
}

// FilterOp enumerates the comparison operators a Filter predicate may use.
type FilterOp string

const (
	FilterEq       FilterOp = "eq"
	FilterNe       FilterOp = "ne"
	FilterGt       FilterOp = "gt"
	FilterGte      FilterOp = "gte"
	FilterLt       FilterOp = "lt"
	FilterLte      FilterOp = "lte"
	FilterIn       FilterOp = "in"
	FilterContains FilterOp = "contains"
)

// FilterPredicate is one clause of a conjunctive Filter.
type FilterPredicate struct {
	Field    string
	Operator FilterOp
	Value    any
}

// Filter is a conjunction of predicates over VectorItem.Payload. An empty
// filter matches everything.
type Filter struct {
	Predicates []FilterPredicate
}

// VectorStoreStats summarizes a backend's current contents.
type VectorStoreStats struct {
	TotalVectors   int64     `json:"total_vectors"`
	TotalSizeBytes int64     `json:"total_size_bytes"`
	LastUpdated    time.Time `json:"last_updated"`
}

// ScoredVectorItem is a VectorItem annotated with its similarity/relevance
// score for a particular query.
type ScoredVectorItem struct {
	VectorItem
	Score float64 `json:"score"`
}
