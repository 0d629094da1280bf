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


// Package ai provides the embedding abstractions used by ingestion and
// retrieval.
//
// The package defines the EmbeddingBackend capability interface and the
// Gateway that wraps a backend with batching, bounded concurrency, retry
// with exponential backoff, L2 normalization, and dimension enforcement.
// Both document and query embedding go through the same Gateway, so every
// vector in the system shares one dimension and one normalization scheme.
//
// Backends are selected once at startup via configuration, never branched
// at call time:
//
//   - ai/openai: production backend for OpenAI-compatible APIs (OpenAI,
//     Ollama, LocalAI, vLLM) via langchaingo
//   - ai/mock: deterministic test double
//
// A Gateway instance is explicitly constructed and owned by the process's
// composition root and passed by reference to the ingestion pipeline and
// the retrieval service. There is no global model state.
package ai
