// Copyright 2026 Docent Labs
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


// Package index builds, persists and searches the vector index over
// corpus chunks.
//
// A build embeds chunks in parallel, stores (vector, chunk) records in a
// BadgerDB directory together with a manifest recording the embedding
// model identity, and atomically swaps the staged store into place. The
// manifest doubles as the commit marker: Load treats a store without one
// as an incomplete build.
//
// A loaded Index is immutable and held fully in memory. Search ranks by
// cosine similarity with internal normalization and breaks score ties by
// chunk sequence, so an unchanged corpus always ranks identically.
package index
