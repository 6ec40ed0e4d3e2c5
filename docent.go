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


// Package docent answers questions about a private document corpus. An
// offline pipeline chunks and embeds the documents into a persistent
// vector index; at query time a conversational engine condenses each
// message against the chat history, retrieves the most similar passages
// and generates an answer grounded in them, with citations back to file
// and page.
package docent

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/ai/openai"
	"github.com/docentlabs/docent/chat"
	"github.com/docentlabs/docent/config"
	"github.com/docentlabs/docent/index"
	"github.com/docentlabs/docent/ingest"
)

// App wires configuration, the AI provider and the loaded index into
// one handle the CLI and TUI work against. The index is loaded once and
// replaced only by an explicit ReloadIndex; there is no hidden caching.
type App struct {
	cfg      *config.AppConfig
	provider ai.Provider
	logger   *slog.Logger

	mu  sync.RWMutex
	idx *index.Index
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	provider ai.Provider
}

// WithProvider injects a pre-built AI provider instead of constructing
// one from the configuration. Used by tests and embedders of the
// library.
func WithProvider(provider ai.Provider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// NewApp creates the application handle. A missing index is not an
// error at this point: ingestion creates it, and NewSession reports
// chat.ErrNoIndex until then.
func NewApp(cfg *config.AppConfig, opts ...AppOption) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	options := &appOptions{}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(ai.NewConfig(
			ai.WithEmbeddingHost(cfg.AI.EmbeddingHost),
			ai.WithChatHost(cfg.AI.ChatHost),
			ai.WithEmbeddingModel(cfg.AI.EmbeddingModel),
			ai.WithChatModel(cfg.AI.ChatModel),
			ai.WithRequestTimeout(cfg.Timeout()),
		))
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		cfg:      cfg,
		provider: provider,
		logger:   slog.Default().With("component", "app"),
	}

	if err := app.ReloadIndex(); err != nil && !errors.Is(err, index.ErrNotFound) {
		provider.Close()
		return nil, err
	}
	return app, nil
}

// Config returns the application configuration.
func (a *App) Config() *config.AppConfig {
	return a.cfg
}

// Provider returns the AI provider.
func (a *App) Provider() ai.Provider {
	return a.provider
}

// Index returns the currently loaded index, or nil when none has been
// built yet.
func (a *App) Index() *index.Index {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.idx
}

// ReloadIndex loads the index from its configured path, replacing the
// in-memory one. Call it after an ingestion run to pick up the new
// build. Returns index.ErrNotFound when no index exists yet.
func (a *App) ReloadIndex() error {
	idx, err := index.Load(a.cfg.Index.Path)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.idx = idx
	a.mu.Unlock()

	a.logger.Info("index ready", "path", idx.Path(), "chunks", idx.Len())
	return nil
}

// NewIngestionPipeline creates an ingestion pipeline configured from the
// application config. Extra options override the configured values.
func (a *App) NewIngestionPipeline(opts ...ingest.Option) *ingest.Pipeline {
	base := []ingest.Option{
		ingest.WithChunking(a.cfg.Index.ChunkSize, a.cfg.Index.ChunkOverlap),
		ingest.WithPoolSize(a.cfg.Index.PoolSize),
		ingest.WithBatchSize(a.cfg.Index.BatchSize),
	}
	return ingest.NewPipeline(a.cfg.Corpus.Dir, a.cfg.Index.Path, a.provider, append(base, opts...)...)
}

// NewSession creates a fresh conversational engine over the loaded
// index. Returns chat.ErrNoIndex when no index has been built.
func (a *App) NewSession(opts ...chat.EngineOption) (*chat.Engine, error) {
	idx := a.Index()
	if idx == nil {
		return nil, chat.ErrNoIndex
	}

	base := []chat.EngineOption{
		chat.WithTopK(a.cfg.Retrieval.TopK),
		chat.WithExcerptLength(a.cfg.Retrieval.ExcerptLength),
	}
	return chat.NewEngine(idx, a.provider, append(base, opts...)...)
}

// Close releases the AI provider. The loaded index holds no external
// resources.
func (a *App) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
		return err
	}
	return nil
}
