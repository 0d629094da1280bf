package ai

import "context"

// EmbeddingBackend is the capability interface to one embedding model.
// Implementations must be thread-safe for concurrent use.
//
// All vectors produced by one backend share the dimension it declares;
// the Gateway treats any deviation as a configuration error.
type EmbeddingBackend interface {
	// EmbedTexts generates embeddings for a batch of texts.
	// The returned slice has the same length and order as the input.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single search query.
	// Some models embed queries differently from documents, so this is a
	// separate operation rather than a one-element EmbedTexts call.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the fixed length of every vector this backend
	// produces.
	Dimension() int

	// Describe returns a human-readable identification of the backend and
	// model, used in logs and diagnostics.
	Describe() string
}
