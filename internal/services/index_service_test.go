package services

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/store"
)

// fakeIndex resolves similarity lookups from a table keyed by the first
// vector component, matching the one-hot fakeEmbedder.
type fakeIndex struct {
	store.NoopTagIndex
	similar map[float32][]store.TagMatch
	indexed []string
}

func (ix *fakeIndex) SimilarTags(ctx context.Context, embedding pgvector.Vector, k int) ([]store.TagMatch, error) {
	return ix.similar[embedding.Slice()[0]], nil
}

func (ix *fakeIndex) IndexTag(ctx context.Context, name string, embedding pgvector.Vector) error {
	ix.indexed = append(ix.indexed, name)
	return nil
}

func TestRouteTagsMergesNearDuplicates(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"#golang":  {1},
		"#parsing": {2},
	}}
	index := &fakeIndex{similar: map[float32][]store.TagMatch{
		1: {{Name: "#go", Distance: 0.1}},
	}}

	svc := NewIndexService(index, embedder, nil, 0.2, true)

	routed := svc.RouteTags(context.Background(), []string{"#golang", "#parsing"})
	require.Len(t, routed, 2)
	assert.Equal(t, RoutedTag{Name: "#go", Merged: true}, routed[0])
	assert.Equal(t, RoutedTag{Name: "#parsing", Merged: false}, routed[1])
}

func TestRouteTagsRespectsThreshold(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{"#k8s": {1}}}
	index := &fakeIndex{similar: map[float32][]store.TagMatch{
		1: {{Name: "#kubernetes", Distance: 0.5}},
	}}

	svc := NewIndexService(index, embedder, nil, 0.2, true)

	routed := svc.RouteTags(context.Background(), []string{"#k8s"})
	require.Len(t, routed, 1)
	assert.False(t, routed[0].Merged)
	assert.Equal(t, "#k8s", routed[0].Name)
}

func TestRouteTagsDisabledPassesThrough(t *testing.T) {
	svc := NewIndexService(store.NewNoopTagIndex(), nil, nil, 0.2, false)

	routed := svc.RouteTags(context.Background(), []string{"#anything"})
	require.Len(t, routed, 1)
	assert.Equal(t, RoutedTag{Name: "#anything"}, routed[0])
	assert.False(t, svc.Enabled())
}

func TestRebuildIndexesCatalog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.GetOrCreateTags(ctx, []string{"#go", "#sql"})
	require.NoError(t, err)

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"#go":  {1},
		"#sql": {2},
	}}
	index := &fakeIndex{}

	svc := NewIndexService(index, embedder, s, 0.2, true)
	n, err := svc.Rebuild(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
