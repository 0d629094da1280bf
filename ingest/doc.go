// Package ingest runs the per-document ingestion pipeline: extract,
// chunk, embed, index. Each document moves through a persisted state
// machine; a run fails as a unit and never disturbs records indexed by
// an earlier successful run.
package ingest
