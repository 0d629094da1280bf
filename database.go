// Copyright 2025 Lorica Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import (
	"log/slog"

	"github.com/loricahq/corpus/ai"
	"github.com/loricahq/corpus/ai/openai"
	"github.com/loricahq/corpus/chunk"
	"github.com/loricahq/corpus/extract"
	"github.com/loricahq/corpus/ingest"
	"github.com/loricahq/corpus/search"
	"github.com/loricahq/corpus/storage"
	"github.com/loricahq/corpus/storage/badger"
)

// Database is the composition root: it owns the storage backend and
// embedding gateway and builds pipelines and searchers wired to them.
type Database struct {
	backend      *badger.Backend
	store        storage.VectorStore
	documents    storage.DocumentRepository
	gateway      *ai.Gateway
	chunkSize    int
	chunkOverlap int
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	backend      ai.EmbeddingBackend
	gatewayOpts  []ai.GatewayOption
	chunkSize    int
	chunkOverlap int
	inMemory     bool
}

// WithAIConfig sets the embedding backend configuration.
func WithAIConfig(cfg *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = cfg
	}
}

// WithEmbeddingBackend injects a pre-built embedding backend instead of
// constructing the OpenAI-compatible one.
func WithEmbeddingBackend(backend ai.EmbeddingBackend) DatabaseOption {
	return func(o *databaseOptions) {
		o.backend = backend
	}
}

// WithGatewayOptions passes options through to the embedding gateway.
func WithGatewayOptions(opts ...ai.GatewayOption) DatabaseOption {
	return func(o *databaseOptions) {
		o.gatewayOpts = append(o.gatewayOpts, opts...)
	}
}

// WithChunking sets the chunk size and overlap used by new pipelines.
func WithChunking(size, overlap int) DatabaseOption {
	return func(o *databaseOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithInMemory opens the storage backend in memory, for tests.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// NewDatabase opens the storage backend at filePath and wires the
// repositories and embedding gateway.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:     ai.DefaultConfig(),
		chunkSize:    chunk.DefaultSize,
		chunkOverlap: chunk.DefaultOverlap,
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	store, err := badger.NewVectorStore(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		store.Close()
		backend.Close()
		return nil, err
	}

	embeddingBackend := options.backend
	if embeddingBackend == nil {
		embeddingBackend, err = openai.NewBackend(options.aiConfig)
		if err != nil {
			documents.Close()
			store.Close()
			backend.Close()
			return nil, err
		}
	}

	gateway, err := ai.NewGateway(embeddingBackend, options.gatewayOpts...)
	if err != nil {
		documents.Close()
		store.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:      backend,
		store:        store,
		documents:    documents,
		gateway:      gateway,
		chunkSize:    options.chunkSize,
		chunkOverlap: options.chunkOverlap,
		logger:       slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	db.gateway.Release()

	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		return err
	}
	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing vector store", "err", err)
		return err
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) VectorStore() storage.VectorStore {
	return db.store
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

func (db *Database) Gateway() *ai.Gateway {
	return db.gateway
}

func (db *Database) NewIngestionPipeline(opts ...ingest.PipelineOption) (*ingest.Pipeline, error) {
	splitter, err := chunk.NewSplitter(db.chunkSize, db.chunkOverlap)
	if err != nil {
		return nil, err
	}
	return ingest.NewPipeline(extract.NewTextExtractor(), splitter, db.gateway, db.store, db.documents, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.store, db.gateway, opts...)
}
