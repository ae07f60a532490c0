package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/models"
	"tagsmith/internal/store"
	"tagsmith/internal/store/sqlite"
	"tagsmith/pkg/tagger"
)

func newTaggingService(s *sqlite.Store, stub *stubSuggester, index *IndexService) *TaggingService {
	return NewTaggingService(TaggingDeps{
		Suggester:        stub,
		Documents:        s,
		Tags:             s,
		Index:            index,
		Usage:            NewUsageService(s, nil),
		Provider:         "stub",
		Model:            "stub-model",
		MaxDocumentChars: 1000,
	})
}

func TestSuggestForTextEmptyBody(t *testing.T) {
	s := openTestStore(t)
	svc := newTaggingService(s, &stubSuggester{}, nil)

	_, err := svc.SuggestForText(context.Background(), "", "   \n\t  ", "")
	assert.ErrorIs(t, err, models.ErrEmptyDocument)
}

func TestSuggestForTextPreparesDocument(t *testing.T) {
	s := openTestStore(t)
	stub := &stubSuggester{res: &tagger.Result{Tags: []string{"#go"}, New: []string{"#go"}}}
	svc := newTaggingService(s, stub, nil)

	html := "<html><body><p>Go  concurrency   patterns.</p><script>x()</script></body></html>"
	res, err := svc.SuggestForText(context.Background(), "Notes", html, "text/html")
	require.NoError(t, err)
	assert.Equal(t, []string{"#go"}, res.Tags)

	// The suggester saw stripped, collapsed text, not markup.
	assert.Equal(t, "Go concurrency patterns.", stub.last.Body)
	assert.Equal(t, "Notes", stub.last.Title)
}

func TestTagDocumentPersistsOrigins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// Seed the catalog so "#go" counts as an existing tag.
	_, err := s.GetOrCreateTags(ctx, []string{"#go"})
	require.NoError(t, err)

	doc := &models.Document{Title: "Draft", Body: "Goroutines and channels."}
	require.NoError(t, s.CreateDocument(ctx, doc))

	stub := &stubSuggester{res: &tagger.Result{
		Tags:     []string{"#go", "#concurrency"},
		Existing: []string{"#go"},
		New:      []string{"#concurrency"},
	}}
	svc := newTaggingService(s, stub, nil)

	res, err := svc.TagDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"#go", "#concurrency"}, res.Tags)

	stored, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.TaggedAt)

	tags, err := s.GetDocumentTags(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestTagDocumentUnknownID(t *testing.T) {
	s := openTestStore(t)
	svc := newTaggingService(s, &stubSuggester{res: &tagger.Result{}}, nil)

	_, err := svc.TagDocument(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTagDocumentRoutesProposalsThroughIndex(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &models.Document{Title: "Cluster notes", Body: "Pod scheduling details."}
	require.NoError(t, s.CreateDocument(ctx, doc))

	embedder := &fakeEmbedder{vectors: map[string][]float32{"#k8s": {1}}}
	index := &fakeIndex{similar: map[float32][]store.TagMatch{
		1: {{Name: "#kubernetes", Distance: 0.05}},
	}}
	indexSvc := NewIndexService(index, embedder, s, 0.2, true)

	stub := &stubSuggester{res: &tagger.Result{
		Tags: []string{"#k8s"},
		New:  []string{"#k8s"},
	}}
	svc := newTaggingService(s, stub, indexSvc)

	res, err := svc.TagDocument(ctx, doc.ID)
	require.NoError(t, err)

	// The proposal was replaced by the near-duplicate catalog tag and
	// therefore counts as existing.
	assert.Equal(t, []string{"#kubernetes"}, res.Tags)
	assert.Equal(t, []string{"#kubernetes"}, res.Existing)
	assert.Empty(t, res.New)
}

func TestApplyManualTags(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	doc := &models.Document{Title: "Draft", Body: "Body."}
	require.NoError(t, s.CreateDocument(ctx, doc))

	svc := newTaggingService(s, &stubSuggester{}, nil)

	applied, err := svc.ApplyManualTags(ctx, doc.ID, []string{"Project Planning", "#go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"#project-planning", "#go"}, applied)

	tags, err := s.GetDocumentTags(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestApplyManualTagsRejectsEmpty(t *testing.T) {
	s := openTestStore(t)
	svc := newTaggingService(s, &stubSuggester{}, nil)

	_, err := svc.ApplyManualTags(context.Background(), 1, []string{"  ", "#"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
