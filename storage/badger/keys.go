package badger

import (
	"fmt"

	"github.com/loricahq/corpus/core"
)

// Key prefixes for different data types
const (
	vectorRecordPrefix = "vecrec"
	documentPrefix     = "docrec"
)

// makeVectorRecordKey generates a key for an indexed record by chunk ID.
// The chunk ID already encodes (documentId, chunkIndex), so the key space
// for one document forms a contiguous prefix range.
func makeVectorRecordKey(chunkID string) []byte {
	return []byte(vectorRecordPrefix + ":" + chunkID)
}

// makeVectorDocumentPrefix generates the key prefix shared by every record
// of one document, used for cascade deletes and per-document counts.
func makeVectorDocumentPrefix(documentID core.ID) []byte {
	return []byte(vectorRecordPrefix + ":" + core.ChunkIDPrefix(documentID))
}

// makeDocumentKey generates a key for a document row by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}
