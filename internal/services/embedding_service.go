package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"tagsmith/internal/llm"
)

// ErrEmbedderDisabled is returned when embeddings are requested but no
// API key was configured.
var ErrEmbedderDisabled = errors.New("embedding provider is disabled: no OpenAI API key configured")

// OpenAIEmbedder generates tag embeddings through the OpenAI embeddings
// endpoint. Constructed without an API key it becomes a disabled stub
// that fails on use.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	usage  *UsageService
}

func NewOpenAIEmbedder(apiKey, model string, usage *UsageService) *OpenAIEmbedder {
	if apiKey == "" {
		log.Debug("OpenAI API key not provided; the tag embedding index will be unavailable.")
		return &OpenAIEmbedder{model: model, usage: usage}
	}
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		model:  model,
		usage:  usage,
	}
}

func (e *OpenAIEmbedder) Model() string { return e.model }

func (e *OpenAIEmbedder) Enabled() bool { return e.client != nil }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) (pgvector.Vector, error) {
	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return pgvector.Vector{}, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error) {
	if e.client == nil {
		return nil, ErrEmbedderDisabled
	}
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	if e.usage != nil {
		e.usage.RecordCall(ctx, "openai", e.model, "embedding", llm.Usage{
			InputTokens: resp.Usage.PromptTokens,
		})
	}

	vectors := make([]pgvector.Vector, len(resp.Data))
	for i, d := range resp.Data {
		vectors[i] = pgvector.NewVector(d.Embedding)
	}
	return vectors, nil
}

var _ Embedder = (*OpenAIEmbedder)(nil)
