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


package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
	"github.com/docentlabs/docent/corpus"
	"github.com/docentlabs/docent/index"
)

// Pipeline runs the offline indexing path: load the corpus, chunk it,
// embed the chunks and persist the index. Corpus preconditions are
// checked before any index work starts, so a missing or empty corpus
// never leaves a partial index behind.
type Pipeline struct {
	corpusDir string
	indexPath string
	provider  ai.Provider

	chunkSize    int
	chunkOverlap int
	poolSize     int
	batchSize    int
	rebuild      bool
	logger       *slog.Logger
}

// Option configures a pipeline.
type Option func(*Pipeline)

// WithChunking sets the chunk target size and overlap in characters.
// Defaults are corpus.DefaultChunkSize and corpus.DefaultChunkOverlap.
func WithChunking(targetSize, overlap int) Option {
	return func(p *Pipeline) {
		p.chunkSize = targetSize
		p.chunkOverlap = overlap
	}
}

// WithPoolSize sets the embedding worker pool size.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) {
		p.poolSize = size
	}
}

// WithBatchSize sets how many chunks are embedded per model request.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) {
		p.batchSize = size
	}
}

// WithRebuild forces a rebuild even when a usable index already exists.
func WithRebuild(rebuild bool) Option {
	return func(p *Pipeline) {
		p.rebuild = rebuild
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Result summarizes one pipeline run.
type Result struct {
	Pages   int
	Chunks  int
	Files   []string
	Skipped bool // a usable index already existed and rebuild was not forced
	Elapsed time.Duration
}

// NewPipeline creates an ingestion pipeline from a corpus directory to
// an index path.
func NewPipeline(corpusDir, indexPath string, provider ai.Provider, opts ...Option) *Pipeline {
	p := &Pipeline{
		corpusDir:    corpusDir,
		indexPath:    indexPath,
		provider:     provider,
		chunkSize:    corpus.DefaultChunkSize,
		chunkOverlap: corpus.DefaultChunkOverlap,
		logger:       slog.Default().With("component", "ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the pipeline. When a usable index already exists at the
// target path and rebuild is not forced, Run short-circuits without
// touching the corpus.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if !p.rebuild {
		if existing, err := index.Load(p.indexPath); err == nil {
			p.logger.Info("index already exists, skipping build",
				"path", p.indexPath, "chunks", existing.Len())
			return &Result{
				Chunks:  existing.Len(),
				Files:   existing.Files(),
				Skipped: true,
				Elapsed: time.Since(start),
			}, nil
		} else if !errors.Is(err, index.ErrNotFound) {
			p.logger.Warn("existing index unusable, rebuilding", "error", err)
		}
	}

	pages, err := corpus.NewLoader(p.corpusDir).Load(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info("corpus loaded", "dir", p.corpusDir, "pages", len(pages))

	chunker := corpus.NewChunker(p.chunkSize, p.chunkOverlap)
	var chunks []core.Chunk
	for _, page := range pages {
		chunks = append(chunks, chunker.Chunk(page)...)
	}
	// Chunk sequence becomes global build order; IDs stay content-derived
	// and page-local, so they survive the renumbering.
	for i := range chunks {
		chunks[i].Seq = i
	}
	if len(chunks) == 0 {
		return nil, corpus.ErrCorpusEmpty
	}
	p.logger.Info("corpus chunked", "chunks", len(chunks))

	var buildOpts []index.BuildOption
	if p.poolSize > 0 {
		buildOpts = append(buildOpts, index.WithPoolSize(p.poolSize))
	}
	if p.batchSize > 0 {
		buildOpts = append(buildOpts, index.WithBatchSize(p.batchSize))
	}
	buildOpts = append(buildOpts, index.WithBuildLogger(p.logger))

	err = index.Build(ctx, p.indexPath, chunks, p.provider.Embedder(), p.provider.EmbeddingModel(), buildOpts...)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	seen := make(map[string]bool)
	for i := range chunks {
		if name := chunks[i].FileName(); !seen[name] {
			seen[name] = true
			files = append(files, name)
		}
	}

	result := &Result{
		Pages:   len(pages),
		Chunks:  len(chunks),
		Files:   files,
		Elapsed: time.Since(start),
	}
	p.logger.Info("ingestion complete",
		"pages", result.Pages, "chunks", result.Chunks, "elapsed", result.Elapsed)
	return result, nil
}

// Verify runs a smoke query against the freshly built index and returns
// the top match, proving the index is loadable and searchable end to end.
func (p *Pipeline) Verify(ctx context.Context, question string) (core.RetrievalResult, error) {
	idx, err := index.Load(p.indexPath)
	if err != nil {
		return nil, err
	}

	vector, err := p.provider.Embedder().EmbedText(ctx, question)
	if err != nil {
		return nil, err
	}

	results, err := idx.Search(vector, 1)
	if err != nil {
		return nil, err
	}

	p.logger.Info("verification query succeeded", "question", question, "matches", len(results))
	return results, nil
}
