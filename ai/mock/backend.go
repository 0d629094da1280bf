package mock

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"sync"
)

// Backend is a test double for ai.EmbeddingBackend.
// It allows custom behavior injection via function fields.
type Backend struct {
	// EmbedTextsFunc is called by EmbedTexts if set.
	// If nil, uses default deterministic behavior.
	EmbedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQueryFunc is called by EmbedQuery if set.
	// If nil, uses default deterministic behavior.
	EmbedQueryFunc func(ctx context.Context, text string) ([]float32, error)

	dimension int

	mu        sync.Mutex
	callCount int
}

// NewBackend creates a mock backend producing vectors of the given
// dimension with default deterministic behavior.
// Note: returns the concrete type to allow test assertions and injection.
func NewBackend(dimension int) *Backend {
	if dimension <= 0 {
		dimension = 8
	}
	return &Backend{dimension: dimension}
}

// EmbedTexts generates deterministic embeddings for multiple texts.
func (m *Backend) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	m.count()

	if m.EmbedTextsFunc != nil {
		return m.EmbedTextsFunc(ctx, texts)
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = deterministicVector(text, m.dimension)
	}
	return vectors, nil
}

// EmbedQuery generates a deterministic embedding based on text hash.
func (m *Backend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	m.count()

	if m.EmbedQueryFunc != nil {
		return m.EmbedQueryFunc(ctx, text)
	}
	return deterministicVector(text, m.dimension), nil
}

// Dimension returns the mock's configured dimension.
func (m *Backend) Dimension() int {
	return m.dimension
}

// Describe identifies the mock backend.
func (m *Backend) Describe() string {
	return fmt.Sprintf("mock dim=%d", m.dimension)
}

// CallCount returns the number of times any embed method was called.
func (m *Backend) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and injected functions.
func (m *Backend) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.EmbedTextsFunc = nil
	m.EmbedQueryFunc = nil
}

func (m *Backend) count() {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
}

// deterministicVector creates a deterministic unit vector from text.
// It uses FNV hash to ensure the same text always produces the same vector.
func deterministicVector(text string, dim int) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()

	vector := make([]float32, dim)
	for i := 0; i < dim; i++ {
		// LCG over the hash seed
		seed = seed*1664525 + 1013904223
		vector[i] = float32(seed%2000)/1000.0 - 1.0
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if sumSquares > 0 {
		norm := float32(1.0 / math.Sqrt(sumSquares))
		for i := range vector {
			vector[i] *= norm
		}
	}
	return vector
}
