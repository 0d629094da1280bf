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


// Package storage provides the storage abstraction layer for corpus.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - VectorStore: the indexed-record collection, keyed by chunk ID, with
//     nearest-neighbor search under a metadata predicate
//   - DocumentRepository: document rows and their ingestion lifecycle state
//
// The VectorStore exclusively owns IndexedRecords: callers only ever
// upsert or delete by chunk ID, never mutate stored records in place.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines. An upsert batch must appear
// atomically to any concurrent reader.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and
// timeout support.
package storage
