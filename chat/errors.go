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


package chat

import "errors"

var (
	// ErrNoIndex indicates that no loaded index was provided to the engine.
	ErrNoIndex = errors.New("no index loaded")

	// ErrModelMismatch indicates that the configured embedding model does
	// not match the one the index was built with. Queries embedded with a
	// different model are not comparable to the stored vectors.
	ErrModelMismatch = errors.New("embedding model does not match index")

	// ErrEmptyUtterance indicates that the user message was empty.
	ErrEmptyUtterance = errors.New("utterance is empty")

	// ErrGenerationTimeout indicates that the language model did not
	// respond within the configured request timeout.
	ErrGenerationTimeout = errors.New("generation timed out")

	// ErrGenerationUnavailable indicates that the language model could not
	// be reached or returned a failure.
	ErrGenerationUnavailable = errors.New("generation unavailable")
)
