package tests

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagsmith/internal/app"
	"tagsmith/internal/config"
	"tagsmith/internal/services"
	"tagsmith/pkg/tagger"
)

// testConfig builds a config that initializes fully offline: local SQLite,
// index disabled, and a dummy API key (no request is made at construction).
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LLM.Provider = "openai"
	cfg.LLM.Model = "gpt-4o-mini"
	cfg.LLM.OpenAIAPIKey = "test-key"
	cfg.LLM.RequestTimeout = 10 * time.Second
	cfg.Tagging.MaxTags = 5
	cfg.Tagging.MaxDocumentChars = 16000
	cfg.Database.Primary.Path = filepath.Join(t.TempDir(), "tagsmith.db")
	cfg.Redis.Address = "localhost:6379"
	cfg.Worker.Concurrency = 1
	cfg.Worker.Queues = map[string]int{"tagging": 1}
	cfg.Batch.Parallelism = 2
	return cfg
}

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.NewApp(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// stubSuggester replaces the model-backed tagger in tests.
type stubSuggester struct {
	res *tagger.Result
	err error
}

func (s *stubSuggester) Suggest(ctx context.Context, doc tagger.Document) (*tagger.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.res, nil
}

// useStubSuggester rebuilds the app's tagging service over a canned
// suggester so no test talks to a real endpoint.
func useStubSuggester(a *app.App, stub *stubSuggester) {
	a.TaggingService = services.NewTaggingService(services.TaggingDeps{
		Suggester:        stub,
		Documents:        a.DocumentStore,
		Tags:             a.TagStore,
		Index:            a.IndexService,
		Usage:            a.UsageService,
		Provider:         "stub",
		Model:            "stub-model",
		MaxDocumentChars: 16000,
	})
}

func TestAppInitialization(t *testing.T) {
	a := newTestApp(t)

	assert.NotNil(t, a.DocumentStore)
	assert.NotNil(t, a.TagStore)
	assert.NotNil(t, a.UsageStore)
	assert.NotNil(t, a.JobStore)
	assert.NotNil(t, a.JobClient)
	assert.NotNil(t, a.TagIndex)
	assert.NotNil(t, a.Completer)
	assert.NotNil(t, a.Tagger)
	assert.NotNil(t, a.DocumentService)
	assert.NotNil(t, a.TaggingService)
	assert.NotNil(t, a.CatalogService)
	assert.NotNil(t, a.UsageService)
	assert.NotNil(t, a.BatchService)

	require.NoError(t, a.DocumentStore.Ping(context.Background()))

	// Index is disabled, so routing must be off.
	assert.False(t, a.IndexService.Enabled())
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Model = ""

	_, err := app.NewApp(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.model")
}

func TestAppRejectsMissingAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.OpenAIAPIKey = ""

	_, err := app.NewApp(cfg)
	require.Error(t, err)
}

func TestAppStaticCatalog(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tagging.StaticTags = []string{"Go Lang", "#databases"}

	a, err := app.NewApp(cfg)
	require.NoError(t, err)
	defer a.Close()

	// The static catalog is normalized at construction; the tagger sees it
	// through the catalog source, which we verify indirectly through the
	// tagging flow in other tests. Here: the app still initializes.
	assert.NotNil(t, a.Tagger)
}
