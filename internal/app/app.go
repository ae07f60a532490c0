package app

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/config"
	"tagsmith/internal/llm"
	"tagsmith/internal/services"
	"tagsmith/internal/store"
	"tagsmith/internal/store/pgindex"
	"tagsmith/internal/store/sqlite"
	"tagsmith/pkg/tagger"
)

// App wires configuration, stores, the model client and the services into
// one container the commands and handlers pull from.
type App struct {
	Config *config.Config

	DocumentStore store.DocumentStore
	TagStore      store.TagStore
	UsageStore    store.UsageStore
	JobStore      store.JobStore
	JobClient     store.JobClient
	TagIndex      store.TagIndex

	Completer llm.Completer
	Tagger    *tagger.Tagger

	DocumentService *services.DocumentService
	TaggingService  *services.TaggingService
	CatalogService  *services.CatalogService
	UsageService    *services.UsageService
	IndexService    *services.IndexService
	BatchService    *services.BatchService

	primary *sqlite.Store
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	ctx := context.Background()
	app := &App{Config: cfg}

	if err := app.initPrimaryStore(); err != nil {
		return nil, err
	}
	if err := app.initJobClient(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initTagIndex(ctx); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initCompleter(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.cleanupPartialInit()
		return nil, err
	}

	log.Debug("Application initialization complete.")
	return app, nil
}

func (a *App) initPrimaryStore() error {
	s, err := sqlite.Open(a.Config.Database.Primary.Path)
	if err != nil {
		return fmt.Errorf("init primary store: %w", err)
	}
	a.primary = s
	a.DocumentStore = s
	a.TagStore = s
	a.UsageStore = s
	a.JobStore = s
	return nil
}

func (a *App) initJobClient() error {
	redisOpt := asynq.RedisClientOpt{
		Addr:     a.Config.Redis.Address,
		Password: a.Config.Redis.Password,
		DB:       a.Config.Redis.DB,
	}
	jc, err := store.NewAsynqJobClient(redisOpt, a.JobStore)
	if err != nil {
		return fmt.Errorf("init job client: %w", err)
	}
	a.JobClient = jc
	return nil
}

func (a *App) initTagIndex(ctx context.Context) error {
	cfg := a.Config
	if !cfg.Index.Enabled {
		a.TagIndex = store.NewNoopTagIndex()
		return nil
	}
	ix, err := pgindex.New(ctx, cfg.Database.Vector.DSN, cfg.Index.Dimension)
	if err != nil {
		return fmt.Errorf("init tag index: %w", err)
	}
	a.TagIndex = ix
	return nil
}

func (a *App) initCompleter() error {
	completer, err := llm.NewCompleter(a.Config)
	if err != nil {
		return fmt.Errorf("init llm client: %w", err)
	}
	a.Completer = completer
	return nil
}

func (a *App) initServices() error {
	cfg := a.Config

	a.UsageService = services.NewUsageService(a.UsageStore, cfg.Pricing)

	embedder := services.NewOpenAIEmbedder(cfg.LLM.OpenAIAPIKey, cfg.Index.EmbeddingModel, a.UsageService)
	a.IndexService = services.NewIndexService(a.TagIndex, embedder, a.TagStore, cfg.Index.SimilarityThreshold, cfg.Index.Enabled)

	a.CatalogService = services.NewCatalogService(a.TagStore, a.IndexService)
	a.DocumentService = services.NewDocumentService(a.DocumentStore, a.TagStore)

	// The catalog shown to the model: config-supplied static tags when
	// present, otherwise the stored catalog.
	var catalog tagger.CatalogSource
	if len(cfg.Tagging.StaticTags) > 0 {
		catalog = tagger.StaticCatalog(tagger.NormalizeAll(cfg.Tagging.StaticTags))
	} else {
		catalog = services.NewStoreCatalog(a.TagStore)
	}

	var systemTemplate string
	if cfg.Tagging.PromptTemplate != "" {
		content, err := config.LoadPromptContent(cfg.Tagging.PromptTemplate, "tagging.txt")
		if err != nil {
			log.Warnf("Failed to load tagging prompt override, using built-in template: %v", err)
		} else {
			systemTemplate = content
		}
	}

	a.Tagger = tagger.New(a.Completer, catalog, tagger.Options{
		SystemTemplate: systemTemplate,
		MaxTags:        cfg.Tagging.MaxTags,
	})

	a.TaggingService = services.NewTaggingService(services.TaggingDeps{
		Suggester:        a.Tagger,
		Documents:        a.DocumentStore,
		Tags:             a.TagStore,
		Index:            a.IndexService,
		Usage:            a.UsageService,
		Provider:         a.Completer.Provider(),
		Model:            a.Completer.Model(),
		MaxDocumentChars: cfg.Tagging.MaxDocumentChars,
	})

	a.BatchService = services.NewBatchService(a.DocumentStore, a.TaggingService, a.JobStore, a.JobClient, cfg.Batch.Parallelism)
	return nil
}

func (a *App) cleanupPartialInit() {
	if a.JobClient != nil {
		a.JobClient.Close()
	}
	if a.TagIndex != nil {
		a.TagIndex.Close()
	}
	if a.primary != nil {
		a.primary.Close()
	}
}

// Close releases every resource the app holds.
func (a *App) Close() {
	if c, ok := a.Completer.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			log.Warnf("Error closing llm client: %v", err)
		}
	}
	if a.JobClient != nil {
		if err := a.JobClient.Close(); err != nil {
			log.Warnf("Error closing job client: %v", err)
		}
	}
	if a.TagIndex != nil {
		if err := a.TagIndex.Close(); err != nil {
			log.Warnf("Error closing tag index: %v", err)
		}
	}
	if a.primary != nil {
		if err := a.primary.Close(); err != nil {
			log.Warnf("Error closing primary store: %v", err)
		}
	}
}
