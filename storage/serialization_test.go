package storage

import (
	"testing"
	"time"

	"github.com/loricahq/corpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexedRecordRoundTrip(t *testing.T) {
	record := &core.IndexedRecord{
		ChunkId: core.ChunkID(42, 3),
		Vector:  []float32{0.1, -0.2, 0.3, 0.4},
		Text:    "Reimbursement requests must be filed within 30 days.",
		Metadata: core.RecordMetadata{
			DocumentId:  42,
			ChunkIndex:  3,
			TotalChunks: 7,
			AccessLevel: core.AccessManager,
			Department:  "Finance",
			SourceName:  "expense-policy.md",
		},
	}

	data := MarshalIndexedRecord(record)
	got, err := UnmarshalIndexedRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestIndexedRecordRoundTrip_EmptyOptionalFields(t *testing.T) {
	record := &core.IndexedRecord{
		ChunkId: core.ChunkID(1, 0),
		Vector:  []float32{1},
		Text:    "general knowledge",
		Metadata: core.RecordMetadata{
			DocumentId:  1,
			TotalChunks: 1,
			AccessLevel: core.AccessEmployee,
			// Department empty: untagged content
		},
	}

	data := MarshalIndexedRecord(record)
	got, err := UnmarshalIndexedRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, got)
	assert.Empty(t, got.Metadata.Department)
}

func TestDocumentRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:          7,
		Title:       "HR Onboarding Guide",
		SourceName:  "onboarding.txt",
		FileType:    ".txt",
		AccessLevel: core.AccessEmployee,
		Department:  "HR",
		State:       core.StateIndexed,
		ChunkCount:  12,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	data := MarshalDocument(doc)
	got, err := UnmarshalDocument(data)
	require.NoError(t, err)

	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, doc.UpdatedAt.Equal(got.UpdatedAt))
	got.CreatedAt, got.UpdatedAt = doc.CreatedAt, doc.UpdatedAt
	assert.Equal(t, doc, got)
}

func TestDocumentRoundTrip_FailedState(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := &core.Document{
		Id:            9,
		Title:         "Corrupt Upload",
		FileType:      ".txt",
		AccessLevel:   core.AccessEmployee,
		State:         core.StateFailed,
		FailedStage:   "embedding",
		FailureReason: "embedder unreachable",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	data := MarshalDocument(doc)
	got, err := UnmarshalDocument(data)
	require.NoError(t, err)

	assert.True(t, doc.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, doc.UpdatedAt.Equal(got.UpdatedAt))
	got.CreatedAt, got.UpdatedAt = doc.CreatedAt, doc.UpdatedAt
	assert.Equal(t, doc, got)
}

func TestUnmarshal_TruncatedData(t *testing.T) {
	record := &core.IndexedRecord{
		ChunkId: core.ChunkID(1, 0),
		Vector:  []float32{0.5, 0.5},
		Text:    "text",
		Metadata: core.RecordMetadata{
			DocumentId:  1,
			TotalChunks: 1,
			AccessLevel: core.AccessEmployee,
		},
	}
	data := MarshalIndexedRecord(record)

	_, err := UnmarshalIndexedRecord(data[:len(data)/2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestIDRoundTrip(t *testing.T) {
	for _, id := range []core.ID{0, 1, 255, 1 << 20, 1<<63 + 17} {
		data := MarshalID(id)
		got, err := UnmarshalID(data)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}
