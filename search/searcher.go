package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/loricahq/corpus/access"
	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/storage"
)

// QueryEmbedder is the slice of the embedding gateway the searcher needs.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs role-filtered semantic retrieval over the vector store.
type Searcher struct {
	store    storage.VectorStore
	embedder QueryEmbedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "search")
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(store storage.VectorStore, embedder QueryEmbedder, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		store:    store,
		embedder: embedder,
		logger:   slog.Default().With("component", "search"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Retrieve returns up to k records visible to the caller, ordered by
// descending relevance.
func (s *Searcher) Retrieve(ctx context.Context, query, role, department string, k int) ([]*core.ScoredRecord, error) {
	return s.RetrieveWithMonitor(ctx, query, role, department, k, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks.
//
// The query fails as a whole on any stage error: a result set is either
// complete under the caller's access filter or absent, never partial.
// An empty result set with a nil error means nothing visible matched;
// a non-nil error means the answer is unknown.
func (s *Searcher) RetrieveWithMonitor(ctx context.Context, query, role, department string, k int, monitor RetrievalMonitor) ([]*core.ScoredRecord, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, k)
	}

	// Fail-closed role resolution: an unrecognized role is logged and
	// demoted to employee, never widened.
	parsedRole, roleErr := core.ParseRole(role)
	if roleErr != nil {
		s.logger.Warn("unknown role, using least privilege", "role", role)
	}
	monitor.Start(query, parsedRole, department)

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		s.logger.Error("error embedding query", "err", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	monitor.AfterQueryEmbedding(len(vector))

	predicate := access.BuildFilter(parsedRole, department)
	monitor.AfterFilterBuilt(predicate == nil)

	results, err := s.store.Search(ctx, vector, k, predicate)
	if err != nil {
		s.logger.Error("error searching store", "err", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	s.logger.Debug("retrieval finished",
		"role", string(parsedRole), "department", department,
		"requested", k, "returned", len(results))
	monitor.Finish(results)
	return results, nil
}
