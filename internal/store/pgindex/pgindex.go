// Package pgindex implements the tag embedding index on PostgreSQL with
// the pgvector extension.
package pgindex

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/store"
)

type Index struct {
	db *pgxpool.Pool
}

// New connects to the index database and ensures its schema exists. The
// dimension must match the embedding model configured for the index.
func New(ctx context.Context, dsn string, dimension int) (*Index, error) {
	if dsn == "" {
		return nil, fmt.Errorf("index DSN cannot be empty")
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", dimension)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse index DSN: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping index database: %w", err)
	}

	ix := &Index{db: pool}
	if err := ix.ensureSchema(ctx, dimension); err != nil {
		pool.Close()
		return nil, err
	}

	log.Debugf("Connected to tag index (dimension %d)", dimension)
	return ix, nil
}

func (ix *Index) ensureSchema(ctx context.Context, dimension int) error {
	statements := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tag_embeddings (
			name       TEXT PRIMARY KEY,
			embedding  vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimension),
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare index schema: %w", err)
		}
	}
	return nil
}

func (ix *Index) Close() error {
	if ix.db != nil {
		ix.db.Close()
	}
	return nil
}

func (ix *Index) Ping(ctx context.Context) error {
	if ix.db == nil {
		return fmt.Errorf("index connection is not initialized")
	}
	return ix.db.Ping(ctx)
}

// IndexTag upserts one tag embedding.
func (ix *Index) IndexTag(ctx context.Context, name string, embedding pgvector.Vector) error {
	query := `
		INSERT INTO tag_embeddings (name, embedding) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET embedding = EXCLUDED.embedding`
	if _, err := ix.db.Exec(ctx, query, name, embedding); err != nil {
		return fmt.Errorf("index tag %q: %w", name, err)
	}
	return nil
}

func (ix *Index) RemoveTag(ctx context.Context, name string) error {
	if _, err := ix.db.Exec(ctx, `DELETE FROM tag_embeddings WHERE name = $1`, name); err != nil {
		return fmt.Errorf("remove tag %q from index: %w", name, err)
	}
	return nil
}

// SimilarTags returns the k nearest catalog tags by L2 distance, nearest
// first.
func (ix *Index) SimilarTags(ctx context.Context, embedding pgvector.Vector, k int) ([]store.TagMatch, error) {
	if k <= 0 {
		k = 5
	}
	query := `SELECT name, (embedding <-> $1) AS distance
	          FROM tag_embeddings ORDER BY embedding <-> $1 LIMIT $2`

	rows, err := ix.db.Query(ctx, query, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("similar tags query: %w", err)
	}
	defer rows.Close()

	var matches []store.TagMatch
	for rows.Next() {
		var m store.TagMatch
		if err := rows.Scan(&m.Name, &m.Distance); err != nil {
			return nil, fmt.Errorf("scan similar tag row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar tag rows: %w", err)
	}
	return matches, nil
}

// Rebuild replaces the whole index with the given entries in one
// transaction.
func (ix *Index) Rebuild(ctx context.Context, entries []store.TagEntry) error {
	tx, err := ix.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin index rebuild: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE tag_embeddings`); err != nil {
		return fmt.Errorf("clear index: %w", err)
	}
	for _, entry := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO tag_embeddings (name, embedding) VALUES ($1, $2)`,
			entry.Name, entry.Embedding); err != nil {
			return fmt.Errorf("insert index entry %q: %w", entry.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit index rebuild: %w", err)
	}
	log.Infof("Rebuilt tag index with %d entries", len(entries))
	return nil
}

// Ensure Index satisfies the TagIndex interface.
var _ store.TagIndex = (*Index)(nil)
