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
	"errors"
	"fmt"
)

var (
	// ErrExtractorRequired indicates the pipeline was constructed without an extractor.
	ErrExtractorRequired = errors.New("extractor is required")

	// ErrSplitterRequired indicates the pipeline was constructed without a splitter.
	ErrSplitterRequired = errors.New("splitter is required")

	// ErrEmbedderRequired indicates the pipeline was constructed without an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrStoreRequired indicates the pipeline was constructed without a vector store.
	ErrStoreRequired = errors.New("vector store is required")

	// ErrRepositoryRequired indicates the pipeline was constructed without a
	// document repository.
	ErrRepositoryRequired = errors.New("document repository is required")
)

// Stage names as recorded on failed documents.
const (
	StageExtract = "extract"
	StageChunk   = "chunk"
	StageEmbed   = "embed"
	StageIndex   = "index"
)

// StageError wraps a pipeline failure with the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a StageError for the given stage.
func NewStageError(stage string, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
