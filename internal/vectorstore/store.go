// Package vectorstore implements the Store contract over multiple ANN
// backends (in-memory, pgvector, Qdrant) plus the shared Filter predicate
// evaluator.
package vectorstore

import (
	"context"
	"strings"

	"github.com/openclaw/core/internal/types"
)

// SearchOptions bounds and filters a Store.Search call.
type SearchOptions struct {
	Limit  int
	Filter types.Filter
}

// Store is the contract every vector backend implements.
type Store interface {
	Upsert(ctx context.Context, item types.VectorItem) error
	UpsertBatch(ctx context.Context, items []types.VectorItem) (int, error)
	Search(ctx context.Context, query []float32, opts SearchOptions) ([]types.ScoredVectorItem, error)
	Get(ctx context.Context, id string) (types.VectorItem, bool, error)
	Delete(ctx context.Context, id string) error
	DeleteByFilter(ctx context.Context, filter types.Filter) (int, error)
	Stats(ctx context.Context) (types.VectorStoreStats, error)
	Clear(ctx context.Context) error
}

// MatchFilter reports whether payload satisfies every predicate in f (a
// conjunction). An empty filter matches everything.
func MatchFilter(f types.Filter, payload map[string]any) bool {
	for _, pred := range f.Predicates {
		if !matchPredicate(pred, payload) {
			return false
		}
	}
	return true
}

func matchPredicate(pred types.FilterPredicate, payload map[string]any) bool {
	value, ok := payload[pred.Field]
	if !ok {
		return false
	}
	switch pred.Operator {
	case types.FilterEq:
		return equalValue(value, pred.Value)
	case types.FilterNe:
		return !equalValue(value, pred.Value)
	case types.FilterGt, types.FilterGte, types.FilterLt, types.FilterLte:
		return compareNumeric(pred.Operator, value, pred.Value)
	case types.FilterIn:
		list, ok := pred.Value.([]any)
		if !ok {
			return false
		}
		for _, v := range list {
			if equalValue(value, v) {
				return true
			}
		}
		return false
	case types.FilterContains:
		s, ok1 := value.(string)
		sub, ok2 := pred.Value.(string)
		if ok1 && ok2 {
			return strings.Contains(s, sub)
		}
		return false
	default:
		return false
	}
}

func equalValue(a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func compareNumeric(op types.FilterOp, a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case types.FilterGt:
		return af > bf
	case types.FilterGte:
		return af >= bf
	case types.FilterLt:
		return af < bf
	case types.FilterLte:
		return af <= bf
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
