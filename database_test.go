package corpus

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/loricahq/corpus/ai/mock"
	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/ingest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir, WithEmbeddingBackend(mock.NewBackend(8)))
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.VectorStore())
		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.Gateway())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where a directory is expected
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile, WithEmbeddingBackend(mock.NewBackend(8)))
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithEmbeddingBackend(mock.NewBackend(8)))
	require.NoError(t, err)

	assert.NoError(t, db.Close())
}

func TestDatabase_IngestAndRetrieve(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(),
		WithEmbeddingBackend(mock.NewBackend(8)),
		WithChunking(80, 20))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	ctx := context.Background()
	result := pipeline.Ingest(ctx, &ingest.Request{
		Title:       "Employee Handbook",
		SourceName:  "handbook.md",
		FileType:    "md",
		AccessLevel: core.AccessEmployee,
		Department:  "hr",
		Data:        []byte("# Vacation\n\nEmployees accrue vacation days monthly.\n\n# Sick leave\n\nNotify your manager before noon."),
	})
	require.NoError(t, result.Err)
	require.Equal(t, core.StateIndexed, result.State)

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	results, err := searcher.Retrieve(ctx, "vacation policy", "employee", "hr", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
