package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/loricahq/corpus/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Backend implements ai.EmbeddingBackend using OpenAI-compatible embedding
// APIs via langchaingo.
type Backend struct {
	embedder  embeddings.Embedder
	model     string
	host      string
	dimension int
	logger    *slog.Logger
}

var _ ai.EmbeddingBackend = (*Backend)(nil)

// NewBackend creates a backend using the provided configuration.
//
// Returns the ai.EmbeddingBackend interface to enforce abstraction.
func NewBackend(config *ai.Config) (ai.EmbeddingBackend, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.APIKey),
		openai.WithEmbeddingModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}

	return &Backend{
		embedder:  embedder,
		model:     config.Model,
		host:      config.Host,
		dimension: config.Dimension,
		logger:    slog.Default().With("component", "openai-backend"),
	}, nil
}

// EmbedTexts generates vector embeddings for multiple texts in a batch.
func (b *Backend) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	b.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		b.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	return vectors, nil
}

// EmbedQuery generates a vector embedding for a single search query.
func (b *Backend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	b.logger.Debug("generating query embedding", "length", len(text))

	vector, err := b.embedder.EmbedQuery(ctx, text)
	if err != nil {
		b.logger.Error("failed to generate query embedding", "err", err)
		return nil, err
	}
	return vector, nil
}

// Dimension returns the configured vector dimension for the model.
func (b *Backend) Dimension() int {
	return b.dimension
}

// Describe identifies the backend for logs and diagnostics.
func (b *Backend) Describe() string {
	return fmt.Sprintf("openai-compatible model=%s host=%s dim=%d", b.model, b.host, b.dimension)
}
