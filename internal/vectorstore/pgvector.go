package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openclaw/core/internal/clawerr"
	"github.com/openclaw/core/internal/types"
)

// PgVectorStore backs the Store contract with Postgres + the `vector`
// extension. Table schema: (id TEXT PK, vector VECTOR(d), content TEXT,
// payload JSONB, created_at), an ivfflat cosine index on vector, and a GIN
// index on payload. ANN delegates to `vector <=> $1` ordering (cosine
// distance); dimension is fixed at collection-create time.
type PgVectorStore struct {
	pool  *pgxpool.Pool
	table string
	dim   int
}

func NewPgVectorStore(pool *pgxpool.Pool, table string, dim int) *PgVectorStore {
	return &PgVectorStore{pool: pool, table: table, dim: dim}
}

// EnsureSchema creates the table and indexes if they do not already exist.
// Safe to call repeatedly.
func (s *PgVectorStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			vector VECTOR(%d),
			content TEXT,
			payload JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS %s_ivfflat ON %s USING ivfflat (vector vector_cosine_ops);
		CREATE INDEX IF NOT EXISTS %s_payload_gin ON %s USING gin (payload);
	`, s.table, s.dim, s.table, s.table, s.table, s.table)
	_, err := s.pool.Exec(ctx, ddl)
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "pgvector", Op: "ensure_schema", Err: err}
	}
	return nil
}

func encodeVector(v []float32) string {
	parts := make([]string, len(v))
	for i, f := range v {
		parts[i] = strconv.FormatFloat(float64(f), 'f', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (s *PgVectorStore) Upsert(ctx context.Context, item types.VectorItem) error {
	if len(item.Vector) != s.dim {
		return &clawerr.VectorStoreError{Backend: "pgvector", Op: "upsert", Err: fmt.Errorf("dimension mismatch: got %d want %d", len(item.Vector), s.dim)}
	}
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return &clawerr.SerializationError{Context: "pgvector.upsert", Err: err}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, vector, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET vector = $2, payload = $3
	`, s.table)
	_, err = s.pool.Exec(ctx, query, item.ID, encodeVector(item.Vector), payload, item.CreatedAt)
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "pgvector", Op: "upsert", Err: err}
	}
	return nil
}

func (s *PgVectorStore) UpsertBatch(ctx context.Context, items []types.VectorItem) (int, error) {
	count := 0
	for _, item := range items {
		if err := s.Upsert(ctx, item); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (s *PgVectorStore) Search(ctx context.Context, query []float32, opts SearchOptions) ([]types.ScoredVectorItem, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	sqlQuery := fmt.Sprintf(`
		SELECT id, vector, payload, created_at, 1 - (vector <=> $1) AS score
		FROM %s
		ORDER BY vector <=> $1
		LIMIT $2
	`, s.table)

	rows, err := s.pool.Query(ctx, sqlQuery, encodeVector(query), limit)
	if err != nil {
		return nil, &clawerr.VectorStoreError{Backend: "pgvector", Op: "search", Err: err}
	}
	defer rows.Close()

	var results []types.ScoredVectorItem
	for rows.Next() {
		var (
			id         string
			vectorStr  string
			payloadRaw []byte
			createdAt  time.Time
			score      float64
		)
		if err := rows.Scan(&id, &vectorStr, &payloadRaw, &createdAt, &score); err != nil {
			return nil, &clawerr.VectorStoreError{Backend: "pgvector", Op: "scan", Err: err}
		}
		var payload map[string]any
		_ = json.Unmarshal(payloadRaw, &payload)
		if !MatchFilter(opts.Filter, payload) {
			continue
		}
		results = append(results, types.ScoredVectorItem{
			VectorItem: types.VectorItem{ID: id, Payload: payload, CreatedAt: createdAt},
			Score:      score,
		})
	}
	return results, rows.Err()
}

func (s *PgVectorStore) Get(ctx context.Context, id string) (types.VectorItem, bool, error) {
	query := fmt.Sprintf(`SELECT id, payload, created_at FROM %s WHERE id = $1`, s.table)
	row := s.pool.QueryRow(ctx, query, id)

	var (
		gotID      string
		payloadRaw []byte
		createdAt  time.Time
	)
	if err := row.Scan(&gotID, &payloadRaw, &createdAt); err != nil {
		return types.VectorItem{}, false, nil
	}
	var payload map[string]any
	_ = json.Unmarshal(payloadRaw, &payload)
	return types.VectorItem{ID: gotID, Payload: payload, CreatedAt: createdAt}, true, nil
}

func (s *PgVectorStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)
	_, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "pgvector", Op: "delete", Err: err}
	}
	return nil
}

func (s *PgVectorStore) DeleteByFilter(ctx context.Context, filter types.Filter) (int, error) {
	// Filters are evaluated in Go rather than pushed to JSONB predicates to
	// keep the Filter AST backend-agnostic; acceptable since deletes are
	// rare, latency-insensitive operations.
	query := fmt.Sprintf(`SELECT id, payload FROM %s`, s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return 0, &clawerr.VectorStoreError{Backend: "pgvector", Op: "delete_by_filter", Err: err}
	}
	defer rows.Close()

	var toDelete []string
	for rows.Next() {
		var id string
		var payloadRaw []byte
		if err := rows.Scan(&id, &payloadRaw); err != nil {
			continue
		}
		var payload map[string]any
		_ = json.Unmarshal(payloadRaw, &payload)
		if MatchFilter(filter, payload) {
			toDelete = append(toDelete, id)
		}
	}

	for _, id := range toDelete {
		if err := s.Delete(ctx, id); err != nil {
			return 0, err
		}
	}
	return len(toDelete), nil
}

func (s *PgVectorStore) Stats(ctx context.Context) (types.VectorStoreStats, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, s.table)
	var total int64
	if err := s.pool.QueryRow(ctx, query).Scan(&total); err != nil {
		return types.VectorStoreStats{}, &clawerr.VectorStoreError{Backend: "pgvector", Op: "stats", Err: err}
	}
	return types.VectorStoreStats{TotalVectors: total, LastUpdated: time.Now().UTC()}, nil
}

func (s *PgVectorStore) Clear(ctx context.Context) error {
	query := fmt.Sprintf(`TRUNCATE %s`, s.table)
	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return &clawerr.VectorStoreError{Backend: "pgvector", Op: "clear", Err: err}
	}
	return nil
}
