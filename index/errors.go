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


package index

import "errors"

var (
	// ErrNotFound indicates no index exists at the configured path.
	// The operator must run the indexing step first.
	ErrNotFound = errors.New("index not found")

	// ErrCorrupt indicates the persisted index is unreadable or
	// internally inconsistent and must be rebuilt.
	ErrCorrupt = errors.New("index is corrupt")

	// ErrBuildInProgress indicates another build holds the exclusive lock
	// on the index path. Callers should wait and retry.
	ErrBuildInProgress = errors.New("index build already in progress")

	// ErrDimensionMismatch indicates vectors of differing dimensionality
	// within one build, or a query vector that does not match the index.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrInvalidLimit indicates a non-positive search result limit.
	ErrInvalidLimit = errors.New("search limit must be positive")

	// ErrNoChunks indicates a build was requested with no chunks.
	ErrNoChunks = errors.New("no chunks to index")
)
