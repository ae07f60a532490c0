package services

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"tagsmith/pkg/tagger"
)

// TagSuggester is the slice of pkg/tagger the services depend on. Keeping
// it an interface lets tests swap in a canned suggester without a client.
type TagSuggester interface {
	Suggest(ctx context.Context, doc tagger.Document) (*tagger.Result, error)
}

// Embedder turns tag names into vectors for the tag index. Disabled
// implementations report Enabled() == false and error on use.
type Embedder interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Model() string
	Enabled() bool
}
