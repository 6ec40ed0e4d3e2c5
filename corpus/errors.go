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


package corpus

import "errors"

var (
	// ErrCorpusNotFound indicates the corpus directory does not exist or
	// is not a directory. Precondition failure: nothing is indexed.
	ErrCorpusNotFound = errors.New("corpus directory not found")

	// ErrCorpusEmpty indicates the corpus directory contains no loadable
	// documents. Precondition failure: nothing is indexed.
	ErrCorpusEmpty = errors.New("corpus directory is empty")
)
