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

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
	"github.com/docentlabs/docent/index"
)

// Stage identifies where in the ask pipeline the engine currently is, or
// how the last ask ended.
type Stage int

const (
	// StageIdle means no ask is in flight.
	StageIdle Stage = iota
	// StageCondensing means the utterance is being rewritten into a
	// standalone query.
	StageCondensing
	// StageRetrieving means passages are being fetched from the index.
	StageRetrieving
	// StageGenerating means the grounded answer is being generated.
	StageGenerating
	// StageAppended means the last ask completed and both turns were
	// recorded.
	StageAppended
	// StageFailed means the last ask failed; only the user turn was
	// recorded.
	StageFailed
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageCondensing:
		return "condensing"
	case StageRetrieving:
		return "retrieving"
	case StageGenerating:
		return "generating"
	case StageAppended:
		return "appended"
	case StageFailed:
		return "failed"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// PipelineError reports which stage an ask failed in.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// engineConfig holds tunables for the engine.
type engineConfig struct {
	topK          int
	excerptLength int
	logger        *slog.Logger
}

// EngineOption configures an engine.
type EngineOption func(*engineConfig)

// WithTopK sets how many passages are retrieved per question.
// Default is DefaultTopK.
func WithTopK(k int) EngineOption {
	return func(c *engineConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithExcerptLength sets the citation excerpt budget in runes.
// Default is DefaultExcerptLength.
func WithExcerptLength(n int) EngineOption {
	return func(c *engineConfig) {
		if n > 0 {
			c.excerptLength = n
		}
	}
}

// WithEngineLogger sets a custom logger.
// Default is slog.Default().
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Engine runs the conversational pipeline over a loaded index: condense
// the utterance against the history, retrieve the most similar passages,
// generate a grounded answer, and append the exchange to the
// conversation.
//
// A failed ask appends only the user turn, so the history stays an
// honest record of what the user said even when no answer was produced.
//
// At most one turn is in flight per engine: concurrent Ask calls run
// one after another, so every successful turn appends its user and
// assistant turns adjacently.
type Engine struct {
	conversation *Conversation
	condenser    *Condenser
	retriever    *Retriever
	answerer     *Answerer
	logger       *slog.Logger

	// turnMu serializes the whole condense→retrieve→generate→append
	// sequence of one Ask.
	turnMu sync.Mutex

	mu    sync.Mutex
	stage Stage
}

// NewEngine wires a pipeline over a loaded index and an AI provider. The
// provider's embedding model must match the one the index was built
// with; a mismatch fails construction with ErrModelMismatch.
func NewEngine(idx *index.Index, provider ai.Provider, opts ...EngineOption) (*Engine, error) {
	if idx == nil {
		return nil, ErrNoIndex
	}
	if provider == nil {
		return nil, errors.New("provider is required")
	}

	cfg := &engineConfig{
		topK:          DefaultTopK,
		excerptLength: DefaultExcerptLength,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	retriever, err := NewRetriever(idx, provider.Embedder(), provider.EmbeddingModel(), cfg.topK, cfg.logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		conversation: NewConversation(),
		condenser:    NewCondenser(provider.Generator(), cfg.logger),
		retriever:    retriever,
		answerer:     NewAnswerer(provider.Generator(), cfg.excerptLength, cfg.logger),
		logger:       cfg.logger.With("component", "chat-engine"),
		stage:        StageIdle,
	}, nil
}

// Ask runs one full turn of the pipeline and returns the recorded
// assistant turn. On failure the returned error is a *PipelineError
// naming the stage, and only the user turn is appended.
func (e *Engine) Ask(ctx context.Context, utterance string) (core.Turn, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return core.Turn{}, &PipelineError{Stage: StageIdle, Err: ErrEmptyUtterance}
	}

	e.turnMu.Lock()
	defer e.turnMu.Unlock()

	// History snapshot from before this turn: the condenser and answerer
	// both work against the conversation as it stood when the user spoke.
	history := e.conversation.History()
	e.conversation.AppendHuman(utterance)

	e.setStage(StageCondensing)
	standalone := e.condenser.Condense(ctx, history, utterance)

	e.setStage(StageRetrieving)
	passages, err := e.retriever.Retrieve(ctx, standalone)
	if err != nil {
		e.setStage(StageFailed)
		return core.Turn{}, &PipelineError{Stage: StageRetrieving, Err: err}
	}

	e.setStage(StageGenerating)
	answer, citations, err := e.answerer.Answer(ctx, history, utterance, passages)
	if err != nil {
		e.setStage(StageFailed)
		return core.Turn{}, &PipelineError{Stage: StageGenerating, Err: classifyGenerationError(err)}
	}

	e.conversation.AppendAssistant(answer, citations)
	e.setStage(StageAppended)
	e.logger.Info("turn completed", "passages", len(passages))

	turns := e.conversation.History()
	return turns[len(turns)-1], nil
}

// Conversation returns the engine's conversation.
func (e *Engine) Conversation() *Conversation {
	return e.conversation
}

// Stage returns the current pipeline stage.
func (e *Engine) Stage() Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stage
}

// Reset clears the conversation and returns the engine to idle.
func (e *Engine) Reset() {
	e.conversation.Reset()
	e.setStage(StageIdle)
}

func (e *Engine) setStage(stage Stage) {
	e.mu.Lock()
	e.stage = stage
	e.mu.Unlock()
	e.logger.Debug("stage", "stage", stage)
}

// classifyGenerationError maps transport-level failures onto the
// engine's sentinels so callers can branch without knowing the backend.
func classifyGenerationError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrGenerationTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrGenerationUnavailable, err)
}
