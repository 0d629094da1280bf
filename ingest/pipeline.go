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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/loricahq/corpus/ai"
	"github.com/loricahq/corpus/chunk"
	"github.com/loricahq/corpus/core"
	"github.com/loricahq/corpus/extract"
	"github.com/loricahq/corpus/storage"
)

const (
	defaultExtractTimeout = 30 * time.Second
	defaultEmbedTimeout   = 2 * time.Minute
	defaultIndexTimeout   = 30 * time.Second
	defaultConcurrency    = 4
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = time.Second
)

// Embedder is the slice of the embedding gateway the pipeline needs.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// TextSplitter is the slice of the chunker the pipeline needs.
type TextSplitter interface {
	Split(text string) []chunk.Span
}

// Request describes one document to ingest.
type Request struct {
	// DocumentId is optional; when zero it is derived from Data, making
	// repeated uploads of the same bytes land on the same document.
	DocumentId  core.ID
	Title       string
	SourceName  string
	FileType    string
	AccessLevel core.AccessLevel
	Department  string
	Data        []byte
}

// Result reports the outcome of one ingestion run.
type Result struct {
	DocumentId    core.ID
	State         core.IngestState
	ChunksCreated int
	Err           error
}

// Pipeline moves documents through extract, chunk, embed and index
// stages. Stages within one document run sequentially; distinct
// documents run concurrently on a bounded worker pool.
type Pipeline struct {
	extractor extract.Extractor
	splitter  TextSplitter
	embedder  Embedder
	store     storage.VectorStore
	documents storage.DocumentRepository

	pool           *ants.Pool
	extractTimeout time.Duration
	embedTimeout   time.Duration
	indexTimeout   time.Duration
	maxAttempts    int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithConcurrency sets the number of documents ingested in parallel.
func WithConcurrency(n int) PipelineOption {
	return func(p *Pipeline) error {
		if n <= 0 {
			return fmt.Errorf("concurrency must be positive, got %d", n)
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(n)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithStageTimeouts sets the per-stage deadlines.
func WithStageTimeouts(extractT, embedT, indexT time.Duration) PipelineOption {
	return func(p *Pipeline) error {
		if extractT <= 0 || embedT <= 0 || indexT <= 0 {
			return errors.New("stage timeouts must be positive")
		}
		p.extractTimeout = extractT
		p.embedTimeout = embedT
		p.indexTimeout = indexT
		return nil
	}
}

// WithRetry sets the retry policy for transient stage failures.
func WithRetry(maxAttempts int, baseDelay time.Duration) PipelineOption {
	return func(p *Pipeline) error {
		if maxAttempts < 1 {
			return ai.ErrInvalidMaxAttempts
		}
		p.maxAttempts = maxAttempts
		p.retryBaseDelay = baseDelay
		return nil
	}
}

// WithLogger sets the logger used by the pipeline.
func WithLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		p.logger = logger.With("component", "ingest")
		return nil
	}
}

// NewPipeline creates an ingestion pipeline over the given collaborators.
func NewPipeline(
	extractor extract.Extractor,
	splitter TextSplitter,
	embedder Embedder,
	store storage.VectorStore,
	documents storage.DocumentRepository,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if splitter == nil {
		return nil, ErrSplitterRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if documents == nil {
		return nil, ErrRepositoryRequired
	}

	p := &Pipeline{
		extractor:      extractor,
		splitter:       splitter,
		embedder:       embedder,
		store:          store,
		documents:      documents,
		extractTimeout: defaultExtractTimeout,
		embedTimeout:   defaultEmbedTimeout,
		indexTimeout:   defaultIndexTimeout,
		maxAttempts:    defaultMaxAttempts,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			if p.pool != nil {
				p.pool.Release()
			}
			return nil, err
		}
	}
	if p.pool == nil {
		pool, err := ants.NewPool(defaultConcurrency)
		if err != nil {
			return nil, err
		}
		p.pool = pool
	}
	return p, nil
}

// Release shuts down the worker pool.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Ingest runs the full pipeline for one document. The returned Result
// always carries the resolved document ID and final state; Err is nil
// only when the run reached the indexed state.
func (p *Pipeline) Ingest(ctx context.Context, req *Request) *Result {
	if req == nil {
		return &Result{Err: fmt.Errorf("%w: nil request", core.ErrValidation)}
	}
	docID := req.DocumentId
	if docID == 0 {
		docID = core.IDFromContent(req.Data)
	}
	result := &Result{DocumentId: docID}

	if len(req.Data) == 0 {
		result.Err = core.ErrEmptyDocument
		return result
	}
	if err := core.ValidateAccessLevel(req.AccessLevel); err != nil {
		result.Err = err
		return result
	}
	if req.Title == "" {
		result.Err = fmt.Errorf("%w: document title is required", core.ErrValidation)
		return result
	}

	// Preserve creation time and prior chunk count across re-ingestion.
	var priorChunks int
	now := time.Now().UTC()
	doc := &core.Document{
		Id:          docID,
		Title:       req.Title,
		SourceName:  req.SourceName,
		FileType:    extract.NormalizeFileType(req.FileType),
		AccessLevel: req.AccessLevel,
		Department:  req.Department,
		State:       core.StateUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if prior, err := p.documents.GetDocument(ctx, docID); err == nil {
		priorChunks = prior.ChunkCount
		doc.CreatedAt = prior.CreatedAt
		doc.ChunkCount = prior.ChunkCount
	} else if !errors.Is(err, storage.ErrNotFound) {
		result.Err = err
		return result
	}
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		result.Err = err
		return result
	}

	log := p.logger.With("documentId", uint64(docID), "title", req.Title)
	log.Info("ingestion started", "bytes", len(req.Data))

	chunks, err := p.runStages(ctx, doc, req, priorChunks, log)
	if err != nil {
		result.State = doc.State
		result.Err = err
		return result
	}

	result.State = core.StateIndexed
	result.ChunksCreated = chunks
	log.Info("ingestion finished", "chunks", chunks)
	return result
}

// runStages advances doc through the pipeline stages, persisting each
// transition. On failure it marks the document failed and returns a
// StageError; records indexed by a previous successful run are left
// untouched because the only store write happens after every stage has
// succeeded.
func (p *Pipeline) runStages(ctx context.Context, doc *core.Document, req *Request, priorChunks int, log *slog.Logger) (int, error) {
	// Extract
	if err := p.advance(ctx, doc, core.StateExtracting); err != nil {
		return 0, err
	}
	var text string
	err := p.stage(ctx, p.extractTimeout, func(stageCtx context.Context) error {
		return ai.RetryTransient(stageCtx, func() error {
			var extractErr error
			text, extractErr = p.extractor.Extract(stageCtx, req.Data, doc.FileType)
			return extractErr
		}, p.maxAttempts, p.retryBaseDelay)
	})
	if err != nil {
		return 0, p.fail(ctx, doc, StageExtract, err, log)
	}

	// Chunk
	if err := p.advance(ctx, doc, core.StateChunking); err != nil {
		return 0, err
	}
	spans := p.splitter.Split(text)
	if len(spans) == 0 {
		return 0, p.fail(ctx, doc, StageChunk, core.ErrEmptyDocument, log)
	}
	log.Debug("document chunked", "chunks", len(spans))

	// Embed
	if err := p.advance(ctx, doc, core.StateEmbedding); err != nil {
		return 0, err
	}
	texts := make([]string, len(spans))
	for i, span := range spans {
		texts[i] = span.Text
	}
	var vectors [][]float32
	err = p.stage(ctx, p.embedTimeout, func(stageCtx context.Context) error {
		var embedErr error
		vectors, embedErr = p.embedder.EmbedBatch(stageCtx, texts)
		return embedErr
	})
	if err != nil {
		return 0, p.fail(ctx, doc, StageEmbed, err, log)
	}

	records := make([]*core.IndexedRecord, len(spans))
	for i, span := range spans {
		records[i] = &core.IndexedRecord{
			ChunkId: core.ChunkID(doc.Id, span.Index),
			Vector:  vectors[i],
			Text:    span.Text,
			Metadata: core.RecordMetadata{
				DocumentId:  doc.Id,
				ChunkIndex:  span.Index,
				TotalChunks: len(spans),
				AccessLevel: doc.AccessLevel,
				Department:  doc.Department,
				SourceName:  doc.SourceName,
			},
		}
	}

	// A cancelled run must not reach the store at all.
	if err := ctx.Err(); err != nil {
		return 0, p.fail(ctx, doc, StageIndex, err, log)
	}

	// Index: the single store write of the run.
	if err := p.advance(ctx, doc, core.StateIndexing); err != nil {
		return 0, err
	}
	err = p.stage(ctx, p.indexTimeout, func(stageCtx context.Context) error {
		return ai.RetryTransient(stageCtx, func() error {
			return p.store.Upsert(stageCtx, records)
		}, p.maxAttempts, p.retryBaseDelay)
	})
	if err != nil {
		return 0, p.fail(ctx, doc, StageIndex, err, log)
	}

	// A shrunken re-ingestion leaves stale tail chunks behind; prune them
	// now that the new batch is committed.
	if priorChunks > len(spans) {
		stale := make([]string, 0, priorChunks-len(spans))
		for i := len(spans); i < priorChunks; i++ {
			stale = append(stale, core.ChunkID(doc.Id, i))
		}
		if err := p.store.DeleteRecords(ctx, stale); err != nil {
			log.Warn("failed to prune stale chunks", "error", err, "count", len(stale))
		}
	}

	doc.State = core.StateIndexed
	doc.ChunkCount = len(spans)
	doc.FailedStage = ""
	doc.FailureReason = ""
	doc.UpdatedAt = time.Now().UTC()
	if err := p.documents.PutDocument(ctx, doc); err != nil {
		return 0, err
	}
	return len(spans), nil
}

// stage runs fn under the stage deadline.
func (p *Pipeline) stage(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	stageCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(stageCtx)
}

// advance persists a state transition.
func (p *Pipeline) advance(ctx context.Context, doc *core.Document, state core.IngestState) error {
	doc.State = state
	doc.UpdatedAt = time.Now().UTC()
	return p.documents.PutDocument(ctx, doc)
}

// fail records the failed stage on the document and wraps the cause.
// Persistence is best-effort: the caller's error matters more than a
// bookkeeping write racing a cancelled context.
func (p *Pipeline) fail(ctx context.Context, doc *core.Document, stage string, cause error, log *slog.Logger) error {
	stageErr := NewStageError(stage, cause)
	doc.State = core.StateFailed
	doc.FailedStage = stage
	doc.FailureReason = cause.Error()
	doc.UpdatedAt = time.Now().UTC()

	persistCtx := ctx
	if persistCtx.Err() != nil {
		var cancel context.CancelFunc
		persistCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
	}
	if err := p.documents.PutDocument(persistCtx, doc); err != nil {
		log.Error("failed to persist failure state", "stage", stage, "error", err)
	}

	log.Error("ingestion failed", "stage", stage, "error", cause)
	return stageErr
}

// IngestAll ingests multiple documents concurrently on the worker pool.
// Results are returned in request order.
func (p *Pipeline) IngestAll(ctx context.Context, reqs []*Request) []*Result {
	results := make([]*Result, len(reqs))
	var wg sync.WaitGroup

	for i, req := range reqs {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.Ingest(ctx, req)
		})
		if submitErr != nil {
			wg.Done()
			docID := core.ID(0)
			if req != nil {
				docID = req.DocumentId
			}
			results[i] = &Result{DocumentId: docID, Err: submitErr}
		}
	}
	wg.Wait()
	return results
}
