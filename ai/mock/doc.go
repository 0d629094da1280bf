// Package mock provides a test double implementation of ai.EmbeddingBackend.
//
// The mock lets tests run without an external embedding service and with
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	backend := mock.NewBackend(8)
//	gateway, err := ai.NewGateway(backend)
//
//	// Custom behavior injection
//	backend.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("backend down")
//	}
//
//	// Check call counts
//	count := backend.CallCount()
//
// # Default Behavior
//
// Without injected functions the mock returns deterministic unit vectors
// derived from a hash of the input text, so identical texts always embed
// to identical vectors and similar test fixtures behave reproducibly.
package mock
