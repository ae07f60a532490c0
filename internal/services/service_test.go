package services

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/store/sqlite"
	"tagsmith/pkg/tagger"
)

// Shared fixtures for the service tests.

func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type stubSuggester struct {
	res  *tagger.Result
	err  error
	last tagger.Document
}

func (s *stubSuggester) Suggest(ctx context.Context, doc tagger.Document) (*tagger.Result, error) {
	s.last = doc
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

// fakeEmbedder hands out deterministic one-hot vectors per text so the
// fake index can match on them.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Model() string { return "fake-embedding" }
func (e *fakeEmbedder) Enabled() bool { return true }

func (e *fakeEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vecs[0], nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	out := make([]pgvector.Vector, len(texts))
	for i, text := range texts {
		out[i] = pgvector.NewVector(e.vectors[text])
	}
	return out, nil
}
