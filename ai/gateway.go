// Copyright 2025 Lorica Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/loricahq/corpus/core"
	"github.com/panjf2000/ants/v2"
)

const (
	defaultBatchSize   = 64
	defaultConcurrency = 4
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
)

// Gateway wraps an EmbeddingBackend with batching, bounded concurrency,
// retry with exponential backoff, L2 normalization, and dimension
// enforcement. Document and query embedding share the same gateway, so
// every vector in one configuration has the same dimension and the same
// normalization.
//
// Callers block until a full batch result is available; there are no
// streaming partial results.
type Gateway struct {
	backend        EmbeddingBackend
	batchSize      int
	pool           *ants.Pool
	maxAttempts    int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway) error

// WithBatchSize sets the backend's preferred sub-batch size.
func WithBatchSize(size int) GatewayOption {
	return func(g *Gateway) error {
		if size < 1 {
			size = 1
		}
		g.batchSize = size
		return nil
	}
}

// WithConcurrency bounds the number of sub-batch calls in flight at once.
func WithConcurrency(n int) GatewayOption {
	return func(g *Gateway) error {
		if n < 1 {
			n = 1
		}
		if g.pool != nil {
			g.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		g.pool = pool
		return nil
	}
}

// WithRetry sets the retry policy for transient backend failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) GatewayOption {
	return func(g *Gateway) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		g.maxAttempts = maxAttempts
		g.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) GatewayOption {
	return func(g *Gateway) error {
		if logger == nil {
			logger = slog.Default()
		}
		g.logger = logger
		return nil
	}
}

// NewGateway creates a Gateway around backend.
func NewGateway(backend EmbeddingBackend, opts ...GatewayOption) (*Gateway, error) {
	if backend == nil {
		return nil, ErrBackendRequired
	}

	pool, err := ants.NewPool(defaultConcurrency)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		backend:        backend,
		batchSize:      defaultBatchSize,
		pool:           pool,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryDelay,
		logger:         slog.Default().With("component", "embedding-gateway"),
	}

	for _, opt := range opts {
		if optErr := opt(g); optErr != nil {
			g.Release()
			return nil, optErr
		}
	}

	return g, nil
}

// Dimension returns the backend's declared vector dimension.
func (g *Gateway) Dimension() int {
	return g.backend.Dimension()
}

// Describe returns the backend's self-description.
func (g *Gateway) Describe() string {
	return g.backend.Describe()
}

// EmbedBatch embeds texts in backend-sized sub-batches, dispatched
// concurrently up to the gateway's concurrency bound. The result has the
// same length and order as the input; result[i] corresponds to texts[i].
// Transient backend failures are retried with exponential backoff before
// being surfaced. A vector of unexpected dimension fails the whole batch
// with core.ErrDimensionMismatch and is never retried.
func (g *Gateway) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	g.logger.Debug("embedding batch", "texts", len(texts), "batchSize", g.batchSize)

	result := make([][]float32, len(texts))

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
	}

	for start := 0; start < len(texts); start += g.batchSize {
		end := min(start+g.batchSize, len(texts))
		offset, sub := start, texts[start:end]

		wg.Add(1)
		submitErr := g.pool.Submit(func() {
			defer wg.Done()
			vectors, err := g.embedSubBatch(ctx, sub)
			if err != nil {
				fail(err)
				return
			}
			copy(result[offset:], vectors)
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}

	wg.Wait()

	if firstErr != nil {
		g.logger.Error("batch embedding failed", "texts", len(texts), "err", firstErr)
		return nil, firstErr
	}
	return result, nil
}

// EmbedQuery embeds a single query text with the same retry, normalization
// and dimension rules as EmbedBatch.
func (g *Gateway) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	var vector []float32
	err := RetryTransient(ctx, func() error {
		var callErr error
		vector, callErr = g.backend.EmbedQuery(ctx, text)
		return callErr
	}, g.maxAttempts, g.retryBaseDelay)
	if err != nil {
		g.logger.Error("query embedding failed", "err", err)
		return nil, err
	}

	if err := g.checkDimension(vector); err != nil {
		return nil, err
	}
	return NormalizeVector(vector), nil
}

// Release frees the gateway's worker pool. The gateway must not be used
// after Release.
func (g *Gateway) Release() {
	if g.pool != nil {
		g.pool.Release()
	}
}

func (g *Gateway) embedSubBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := RetryTransient(ctx, func() error {
		var callErr error
		vectors, callErr = g.backend.EmbedTexts(ctx, texts)
		return callErr
	}, g.maxAttempts, g.retryBaseDelay)
	if err != nil {
		return nil, err
	}

	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d, received %d", ErrCountMismatch, len(texts), len(vectors))
	}

	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if err := g.checkDimension(v); err != nil {
			return nil, err
		}
		normalized[i] = NormalizeVector(v)
	}
	return normalized, nil
}

func (g *Gateway) checkDimension(v []float32) error {
	if want := g.backend.Dimension(); len(v) != want {
		return fmt.Errorf("%w: backend %s declared %d, returned %d",
			core.ErrDimensionMismatch, g.backend.Describe(), want, len(v))
	}
	return nil
}
