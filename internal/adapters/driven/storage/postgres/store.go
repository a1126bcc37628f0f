package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/ranking/lexical"
)

var _ driven.ChunkStore = (*Store)(nil)

// Store is a PostgreSQL-backed chunk store.
type Store struct {
	pool   *pgxpool.Pool
	ranker driven.Ranker
}

// NewStore connects to databaseURL, applies migrations and returns a store.
// A nil ranker selects the lexical ranker.
func NewStore(ctx context.Context, databaseURL string, ranker driven.Ranker) (*Store, error) {
	if err := RunMigrations(databaseURL); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if ranker == nil {
		ranker = lexical.New()
	}
	return &Store{pool: pool, ranker: ranker}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Contains reports whether a chunk with the given hash is stored.
func (s *Store) Contains(ctx context.Context, hash string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM chunks WHERE hash = $1)", hash).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check chunk: %w", err)
	}
	return exists, nil
}

// AddChunk inserts the chunk unless its hash is already present.
func (s *Store) AddChunk(ctx context.Context, chunk domain.Chunk) (bool, error) {
	if chunk.ContentHash == "" {
		return false, &domain.StoreError{Op: "add", Err: domain.ErrStoreInvariant}
	}

	metadata := chunk.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return false, fmt.Errorf("marshal chunk metadata: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		INSERT INTO chunks (hash, text, source_label, position, metadata)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (hash) DO NOTHING
	`, chunk.ContentHash, chunk.Text, chunk.SourceLabel, chunk.Position, data)
	if err != nil {
		return false, fmt.Errorf("insert chunk: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SimilaritySearch ranks every stored chunk, in insertion order, against query.
func (s *Store) SimilaritySearch(ctx context.Context, query string, topK int) ([]domain.Chunk, error) {
	if topK <= 0 {
		return []domain.Chunk{}, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT hash, text, source_label, position, metadata
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}

	candidates, err := pgx.CollectRows(rows, scanChunk)
	if err != nil {
		return nil, fmt.Errorf("scan chunks: %w", err)
	}
	if len(candidates) == 0 {
		return []domain.Chunk{}, nil
	}
	return s.ranker.Rank(ctx, query, candidates, topK)
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// Truncate removes every chunk. Used by tests against a shared database.
func (s *Store) Truncate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "TRUNCATE chunks RESTART IDENTITY"); err != nil {
		return fmt.Errorf("truncate chunks: %w", err)
	}
	return nil
}

func scanChunk(row pgx.CollectableRow) (domain.Chunk, error) {
	var chunk domain.Chunk
	var metadata []byte
	if err := row.Scan(&chunk.ContentHash, &chunk.Text, &chunk.SourceLabel, &chunk.Position, &metadata); err != nil {
		return domain.Chunk{}, err
	}
	if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
		return domain.Chunk{}, fmt.Errorf("unmarshal chunk metadata: %w", err)
	}
	return chunk, nil
}
