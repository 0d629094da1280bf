package storage

import (
	"context"

	"github.com/loricahq/corpus/core"
)

// VectorStore persists (chunkId, vector, text, metadata) tuples and answers
// nearest-neighbor queries with a metadata predicate.
// Implementations must be thread-safe and support concurrent access; an
// Upsert batch must appear atomically to any concurrent Search.
type VectorStore interface {
	// Upsert replaces any existing record sharing a ChunkId.
	// The batch is applied all-or-nothing: a validation or write failure
	// on any record leaves the store unchanged.
	Upsert(ctx context.Context, records []*core.IndexedRecord) error

	// DeleteByDocument removes every record whose ChunkId was derived from
	// documentID. Deleting a document with no records is not an error.
	DeleteByDocument(ctx context.Context, documentID core.ID) error

	// DeleteRecords removes the records with the given chunk IDs.
	// Missing IDs are skipped, not errors.
	DeleteRecords(ctx context.Context, chunkIDs []string) error

	// Search returns up to k records ordered by ascending cosine distance
	// whose metadata satisfies predicate (nil matches everything).
	// Returns fewer than k if fewer matches exist, and an empty slice
	// (not an error) if nothing matches.
	Search(ctx context.Context, vector []float32, k int, predicate core.Predicate) ([]*core.ScoredRecord, error)

	// CountByDocument returns the number of records indexed for a document.
	CountByDocument(ctx context.Context, documentID core.ID) (int, error)

	// Close closes the store and releases resources.
	Close() error
}

// DocumentRepository stores document rows and their ingestion lifecycle
// state.
type DocumentRepository interface {
	// PutDocument inserts or replaces a document row.
	PutDocument(ctx context.Context, doc *core.Document) error

	// GetDocument retrieves a document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments returns all documents ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// DeleteDocument removes a document row.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// Close closes the repository and releases resources.
	Close() error
}
