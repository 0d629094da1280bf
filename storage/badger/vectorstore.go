package badger

import (
	"context"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/storage"
)

// VectorStore implements storage.VectorStore for BadgerDB.
//
// Records are stored under keys derived from their chunk IDs, so all
// records of one document occupy a contiguous prefix range. Upsert batches
// are applied in a single transaction: a concurrent Search reads a
// consistent snapshot and never observes a half-written batch.
type VectorStore struct {
	backend *Backend
}

var _ storage.VectorStore = (*VectorStore)(nil)

// NewVectorStore creates a new VectorStore.
func NewVectorStore(backend *Backend) (*VectorStore, error) {
	return &VectorStore{backend: backend}, nil
}

// Close releases resources. VectorStore has no resources of its own.
func (s *VectorStore) Close() error {
	return nil
}

// Upsert replaces any existing record sharing a ChunkId. The whole batch
// is validated first and written in one transaction, so a failure on any
// record leaves the store unchanged.
func (s *VectorStore) Upsert(ctx context.Context, records []*core.IndexedRecord) error {
	if len(records) == 0 {
		return storage.ErrEmptyBatch
	}
	for _, record := range records {
		if err := core.ValidateIndexedRecord(record); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeVectorRecordKey(record.ChunkId)
			if err := tx.Set(key, storage.MarshalIndexedRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteByDocument removes every record whose ChunkId was derived from
// documentID. Removing an unindexed document is a no-op.
func (s *VectorStore) DeleteByDocument(ctx context.Context, documentID core.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	prefix := makeVectorDocumentPrefix(documentID)
	var keys [][]byte

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteRecords removes the records with the given chunk IDs. Used to
// prune stale tail chunks when a re-ingested document shrinks.
func (s *VectorStore) DeleteRecords(ctx context.Context, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunkID := range chunkIDs {
			if err := tx.Delete(makeVectorRecordKey(chunkID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountByDocument returns the number of records indexed for a document.
func (s *VectorStore) CountByDocument(ctx context.Context, documentID core.ID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorDocumentPrefix(documentID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Search returns up to k records ordered by ascending cosine distance
// whose metadata satisfies predicate. The predicate is evaluated here,
// inside the store scan, before any ranking or truncation: a record that
// fails it never competes for the top k, so restricted content cannot
// leak through score-based cutoff.
func (s *VectorStore) Search(ctx context.Context, vector []float32, k int, predicate core.Predicate) ([]*core.ScoredRecord, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", storage.ErrInvalidQuery, k)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*core.ScoredRecord

	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.IndexedRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalIndexedRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			if predicate != nil && !predicate(&record.Metadata) {
				continue
			}

			// Cosine distance; vectors are normalized so the dot product
			// is the cosine similarity. Distance ranges [0,2], so the
			// relevance derived from it is clamped to [0,1].
			distance := 1 - dotProduct(vector, record.Vector)
			results = append(results, &core.ScoredRecord{
				Record:    record,
				Distance:  distance,
				Relevance: clamp01(1 - distance),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by distance ascending (most similar first). The stable sort
	// keeps equal-distance records in key scan order, so result order is
	// reproducible across runs.
	slices.SortStableFunc(results, func(a, b *core.ScoredRecord) int {
		if a.Distance < b.Distance {
			return -1
		}
		if a.Distance > b.Distance {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}
	if results == nil {
		results = []*core.ScoredRecord{}
	}
	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
