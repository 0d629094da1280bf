package badger

import "testing"

// NewMemoryBackend opens an in-memory backend for tests and registers
// cleanup on the given testing.TB.
func NewMemoryBackend(tb testing.TB) *Backend {
	tb.Helper()

	backend, err := OpenBackend("", true)
	if err != nil {
		tb.Fatalf("open in-memory backend: %v", err)
	}
	tb.Cleanup(func() {
		if !backend.IsClosed() {
			_ = backend.Close()
		}
	})
	return backend
}

// NewMemoryStores opens an in-memory backend and returns a vector store
// and document repository sharing it.
func NewMemoryStores(tb testing.TB) (*VectorStore, *DocumentRepository) {
	tb.Helper()

	backend := NewMemoryBackend(tb)
	store, err := NewVectorStore(backend)
	if err != nil {
		tb.Fatalf("create vector store: %v", err)
	}
	repo, err := NewDocumentRepository(backend)
	if err != nil {
		tb.Fatalf("create document repository: %v", err)
	}
	return store, repo
}
