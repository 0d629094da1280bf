package ai

import "errors"

var (
	// ErrBackendRequired is returned when an embedding backend is not provided.
	ErrBackendRequired = errors.New("embedding backend required")

	// ErrInvalidMaxAttempts is returned for a non-positive retry attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")

	// ErrCountMismatch is returned when the backend produces a different
	// number of embeddings than texts submitted.
	ErrCountMismatch = errors.New("embedding count mismatch")
)
