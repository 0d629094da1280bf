package badger

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitVector(dim, axis int) []float32 {
	v := make([]float32, dim)
	v[axis%dim] = 1
	return v
}

func blendVector(dim, axis int, weight float64) []float32 {
	v := make([]float32, dim)
	other := (axis + 1) % dim
	v[axis%dim] = float32(weight)
	v[other] = float32(math.Sqrt(1 - weight*weight))
	return v
}

func makeRecords(docID core.ID, count, dim int, level core.AccessLevel, department string) []*core.IndexedRecord {
	records := make([]*core.IndexedRecord, count)
	for i := 0; i < count; i++ {
		records[i] = &core.IndexedRecord{
			ChunkId: core.ChunkID(docID, i),
			Vector:  unitVector(dim, i),
			Text:    fmt.Sprintf("chunk %d of document %d", i, docID),
			Metadata: core.RecordMetadata{
				DocumentId:  docID,
				ChunkIndex:  i,
				TotalChunks: count,
				AccessLevel: level,
				Department:  department,
				SourceName:  "handbook.md",
			},
		}
	}
	return records
}

func TestVectorStoreUpsertAndCount(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	records := makeRecords(1, 5, 4, core.AccessEmployee, "")
	require.NoError(t, store.Upsert(ctx, records))

	count, err := store.CountByDocument(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	count, err = store.CountByDocument(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVectorStoreUpsertIdempotent(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	records := makeRecords(3, 4, 4, core.AccessEmployee, "")
	require.NoError(t, store.Upsert(ctx, records))
	require.NoError(t, store.Upsert(ctx, records))

	count, err := store.CountByDocument(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 4, count, "re-upserting the same chunk IDs must not grow the store")
}

func TestVectorStoreUpsertReplacesText(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	records := makeRecords(7, 1, 4, core.AccessEmployee, "")
	require.NoError(t, store.Upsert(ctx, records))

	records[0].Text = "revised content"
	require.NoError(t, store.Upsert(ctx, records))

	results, err := store.Search(ctx, records[0].Vector, 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "revised content", results[0].Record.Text)
}

func TestVectorStoreUpsertAtomic(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	records := makeRecords(9, 3, 4, core.AccessEmployee, "")
	records[2].Vector = nil // fails validation

	err := store.Upsert(ctx, records)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrValidation)

	count, err := store.CountByDocument(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "a failed batch must leave the store unchanged")
}

func TestVectorStoreUpsertEmptyBatch(t *testing.T) {
	store, _ := NewMemoryStores(t)

	err := store.Upsert(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrEmptyBatch)
}

func TestVectorStoreSearchValidation(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	_, err := store.Search(ctx, unitVector(4, 0), 0, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = store.Search(ctx, unitVector(4, 0), -3, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)

	_, err = store.Search(ctx, nil, 5, nil)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestVectorStoreSearchOrdering(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	// Three records at decreasing similarity to axis 0.
	records := []*core.IndexedRecord{
		{
			ChunkId:  core.ChunkID(1, 0),
			Vector:   blendVector(4, 0, 0.95),
			Text:     "near",
			Metadata: core.RecordMetadata{DocumentId: 1, TotalChunks: 3, AccessLevel: core.AccessEmployee},
		},
		{
			ChunkId:  core.ChunkID(1, 1),
			Vector:   blendVector(4, 0, 0.5),
			Text:     "middle",
			Metadata: core.RecordMetadata{DocumentId: 1, ChunkIndex: 1, TotalChunks: 3, AccessLevel: core.AccessEmployee},
		},
		{
			ChunkId:  core.ChunkID(1, 2),
			Vector:   unitVector(4, 1),
			Text:     "far",
			Metadata: core.RecordMetadata{DocumentId: 1, ChunkIndex: 2, TotalChunks: 3, AccessLevel: core.AccessEmployee},
		},
	}
	require.NoError(t, store.Upsert(ctx, records))

	results, err := store.Search(ctx, unitVector(4, 0), 10, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "near", results[0].Record.Text)
	assert.Equal(t, "middle", results[1].Record.Text)
	assert.Equal(t, "far", results[2].Record.Text)

	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Distance, results[i].Distance)
	}
	for _, r := range results {
		assert.GreaterOrEqual(t, r.Relevance, float32(0))
		assert.LessOrEqual(t, r.Relevance, float32(1))
	}
	assert.InDelta(t, 0.95, results[0].Relevance, 1e-5)
}

func TestVectorStoreSearchTieOrderDeterministic(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	// Identical vectors score identically; ties keep the key scan order.
	records := makeRecords(6, 4, 4, core.AccessEmployee, "")
	for _, r := range records {
		r.Vector = unitVector(4, 0)
	}
	require.NoError(t, store.Upsert(ctx, records))

	var first []string
	for run := 0; run < 3; run++ {
		results, err := store.Search(ctx, unitVector(4, 0), 10, nil)
		require.NoError(t, err)
		require.Len(t, results, 4)

		var ids []string
		for _, r := range results {
			ids = append(ids, r.Record.ChunkId)
		}
		if run == 0 {
			first = ids
			for i, id := range ids {
				assert.Equal(t, core.ChunkID(6, i), id)
			}
			continue
		}
		assert.Equal(t, first, ids, "equal-distance order must not change between runs")
	}
}

func TestVectorStoreSearchTruncatesToK(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, makeRecords(1, 8, 4, core.AccessEmployee, "")))

	results, err := store.Search(ctx, unitVector(4, 0), 3, nil)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = store.Search(ctx, unitVector(4, 0), 100, nil)
	require.NoError(t, err)
	assert.Len(t, results, 8, "k larger than the corpus returns every match")
}

func TestVectorStoreSearchEmptyStore(t *testing.T) {
	store, _ := NewMemoryStores(t)

	results, err := store.Search(context.Background(), unitVector(4, 0), 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.NotNil(t, results)
}

func TestVectorStoreSearchPredicate(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, makeRecords(1, 4, 4, core.AccessEmployee, "hr")))
	require.NoError(t, store.Upsert(ctx, makeRecords(2, 4, 4, core.AccessManager, "hr")))

	onlyEmployee := func(md *core.RecordMetadata) bool {
		return md != nil && md.AccessLevel == core.AccessEmployee
	}

	results, err := store.Search(ctx, unitVector(4, 0), 10, onlyEmployee)
	require.NoError(t, err)
	require.Len(t, results, 4)
	for _, r := range results {
		assert.Equal(t, core.AccessEmployee, r.Record.Metadata.AccessLevel)
	}
}

func TestVectorStoreSearchPredicateBeforeRanking(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	// The closest record is restricted; a permitted but more distant one
	// must still fill the single requested slot.
	records := []*core.IndexedRecord{
		{
			ChunkId:  core.ChunkID(1, 0),
			Vector:   unitVector(4, 0),
			Text:     "restricted exact match",
			Metadata: core.RecordMetadata{DocumentId: 1, TotalChunks: 1, AccessLevel: core.AccessManager},
		},
		{
			ChunkId:  core.ChunkID(2, 0),
			Vector:   blendVector(4, 0, 0.6),
			Text:     "permitted distant match",
			Metadata: core.RecordMetadata{DocumentId: 2, TotalChunks: 1, AccessLevel: core.AccessEmployee},
		},
	}
	require.NoError(t, store.Upsert(ctx, records))

	onlyEmployee := func(md *core.RecordMetadata) bool {
		return md != nil && md.AccessLevel == core.AccessEmployee
	}
	results, err := store.Search(ctx, unitVector(4, 0), 1, onlyEmployee)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "permitted distant match", results[0].Record.Text)
}

func TestVectorStoreDeleteByDocument(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, makeRecords(1, 5, 4, core.AccessEmployee, "")))
	require.NoError(t, store.Upsert(ctx, makeRecords(2, 3, 4, core.AccessEmployee, "")))

	require.NoError(t, store.DeleteByDocument(ctx, 1))

	count, err := store.CountByDocument(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = store.CountByDocument(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "deleting one document must not touch another")
}

func TestVectorStoreDeleteRecords(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, makeRecords(4, 5, 4, core.AccessEmployee, "")))

	ids := []string{
		core.ChunkID(4, 3),
		core.ChunkID(4, 4),
		core.ChunkID(4, 99), // missing, skipped
	}
	require.NoError(t, store.DeleteRecords(ctx, ids))
	require.NoError(t, store.DeleteRecords(ctx, nil))

	count, err := store.CountByDocument(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestVectorStoreDeleteMissingDocument(t *testing.T) {
	store, _ := NewMemoryStores(t)

	assert.NoError(t, store.DeleteByDocument(context.Background(), 404))
}

func TestVectorStoreDeletePrefixIsolation(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	// Document 7 and document 71 share a decimal prefix; the chunk ID
	// scheme keeps their key ranges disjoint.
	require.NoError(t, store.Upsert(ctx, makeRecords(7, 2, 4, core.AccessEmployee, "")))
	require.NoError(t, store.Upsert(ctx, makeRecords(71, 2, 4, core.AccessEmployee, "")))

	require.NoError(t, store.DeleteByDocument(ctx, 7))

	count, err := store.CountByDocument(ctx, 71)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorStoreConcurrentAccess(t *testing.T) {
	store, _ := NewMemoryStores(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, makeRecords(100, 10, 4, core.AccessEmployee, "")))

	var wg sync.WaitGroup
	errs := make(chan error, 24)

	for i := 0; i < 8; i++ {
		docID := core.ID(200 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Upsert(ctx, makeRecords(docID, 4, 4, core.AccessEmployee, ""))
		}()
	}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := store.Search(ctx, unitVector(4, 0), 5, nil)
			if err == nil && len(results) == 0 {
				err = fmt.Errorf("search returned no results from a populated store")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}
