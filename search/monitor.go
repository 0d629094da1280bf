package search

import "github.com/loricahq/corpus/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps during a query,
// for example in a CLI that prints its work as it goes.
type RetrievalMonitor interface {
	Start(query string, role core.Role, department string)
	AfterQueryEmbedding(dimension int)
	AfterFilterBuilt(unrestricted bool)
	Finish(results []*core.ScoredRecord)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Role, _ string) {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)             {}
func (n *noopMonitor) AfterFilterBuilt(_ bool)               {}
func (n *noopMonitor) Finish(_ []*core.ScoredRecord)         {}
