package store

import (
	"context"

	"github.com/pgvector/pgvector-go"
)

// NoopTagIndex satisfies TagIndex without a backing database. Wired in
// when the tag index is disabled in configuration: lookups find nothing
// and writes vanish.
type NoopTagIndex struct{}

func NewNoopTagIndex() TagIndex {
	return &NoopTagIndex{}
}

func (ix *NoopTagIndex) IndexTag(ctx context.Context, name string, embedding pgvector.Vector) error {
	return nil
}

func (ix *NoopTagIndex) RemoveTag(ctx context.Context, name string) error {
	return nil
}

func (ix *NoopTagIndex) SimilarTags(ctx context.Context, embedding pgvector.Vector, k int) ([]TagMatch, error) {
	return nil, nil
}

func (ix *NoopTagIndex) Rebuild(ctx context.Context, entries []TagEntry) error {
	return nil
}

func (ix *NoopTagIndex) Ping(ctx context.Context) error {
	return nil
}

func (ix *NoopTagIndex) Close() error {
	return nil
}

var _ TagIndex = (*NoopTagIndex)(nil)
