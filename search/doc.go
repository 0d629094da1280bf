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


// Package search provides role-filtered semantic retrieval over the
// indexed corpus.
//
// The Searcher embeds the query, builds an access predicate from the
// caller's role and department, and runs a vector search with the
// predicate enforced inside the store. Access filtering therefore
// happens before ranking: a restricted chunk never occupies a result
// slot, and a query never fails open on an unknown role.
package search
