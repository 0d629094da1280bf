package core

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from raw content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs, which makes
// re-ingestion of an unchanged file idempotent.
func IDFromContent(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// AccessLevel is the coarse sensitivity tier gating document visibility.
type AccessLevel string

const (
	AccessEmployee AccessLevel = "employee"
	AccessManager  AccessLevel = "manager"
	AccessAdmin    AccessLevel = "admin"
)

// Role identifies the caller's authorization tier for retrieval.
// Roles mirror access levels: a role sees its own tier and the tiers below it.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// IngestState tracks a document's position in the ingestion state machine.
type IngestState int

const (
	// StateUploaded is the initial state of a new ingestion run.
	StateUploaded IngestState = iota + 1
	// StateExtracting means text extraction is in progress.
	StateExtracting
	// StateChunking means the extracted text is being split.
	StateChunking
	// StateEmbedding means chunk texts are being embedded.
	StateEmbedding
	// StateIndexing means records are being written to the vector store.
	StateIndexing
	// StateIndexed is the terminal success state for a run.
	StateIndexed
	// StateFailed is the terminal failure state for a run.
	// The document's FailedStage and FailureReason fields identify the cause.
	StateFailed
)

// String returns the lowercase state name used in logs and CLI output.
func (s IngestState) String() string {
	switch s {
	case StateUploaded:
		return "uploaded"
	case StateExtracting:
		return "extracting"
	case StateChunking:
		return "chunking"
	case StateEmbedding:
		return "embedding"
	case StateIndexing:
		return "indexing"
	case StateIndexed:
		return "indexed"
	case StateFailed:
		return "failed"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// Terminal reports whether the state ends an ingestion run.
func (s IngestState) Terminal() bool {
	return s == StateIndexed || s == StateFailed
}

// Document represents one uploaded artifact and its ingestion lifecycle.
// AccessLevel and Department are immutable after creation; the ingestion
// pipeline reads them once per run and propagates them unchanged into
// every chunk's metadata.
type Document struct {
	Id            ID
	Title         string
	SourceName    string // Original file name, carried into chunk metadata
	FileType      string
	AccessLevel   AccessLevel
	Department    string // Empty means untagged (general knowledge)
	State         IngestState
	FailedStage   string // Stage name when State == StateFailed
	FailureReason string
	ChunkCount    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RecordMetadata is the metadata stored alongside every indexed chunk.
// It carries the owning document's access classification so the vector
// store can enforce visibility server-side during search.
type RecordMetadata struct {
	DocumentId  ID
	ChunkIndex  int
	TotalChunks int
	AccessLevel AccessLevel
	Department  string
	SourceName  string
}

// IndexedRecord is the tuple persisted in the vector store.
// The store exclusively owns these records; other components only ever
// upsert or delete them by ChunkId.
type IndexedRecord struct {
	ChunkId  string
	Vector   []float32
	Text     string
	Metadata RecordMetadata
}

// ScoredRecord is a search hit with its cosine distance and the derived
// relevance score in [0,1].
type ScoredRecord struct {
	Record    *IndexedRecord
	Distance  float32
	Relevance float32
}

// Predicate is a metadata-matching condition evaluated by the vector store
// during search. A nil Predicate matches everything.
type Predicate func(md *RecordMetadata) bool

// ChunkID derives the stable identity of a chunk from its document and index.
// The format matches "doc_<id>_chunk_<index>"; both fields are numeric so the
// separator can never appear inside them, making the function injective.
// Re-ingesting a document with the same chunking parameters reproduces the
// same set of IDs, so a re-run overwrites rather than duplicates records.
func ChunkID(documentID ID, chunkIndex int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, chunkIndex)
}

// ChunkIDPrefix returns the ChunkID prefix shared by every chunk of a
// document, used for cascade deletion.
func ChunkIDPrefix(documentID ID) string {
	return fmt.Sprintf("doc_%d_chunk_", documentID)
}
