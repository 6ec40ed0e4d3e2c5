package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
	"github.com/docentlabs/docent/index"
)

// DefaultTopK is the number of passages retrieved per question.
const DefaultTopK = 3

// Retriever embeds a standalone query and fetches the most similar
// chunks from the index.
type Retriever struct {
	index    *index.Index
	embedder ai.Embedder
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a retriever over a loaded index. The embedding
// model identity must match the one recorded in the index; a mismatch is
// fatal, since vectors from different models are not comparable.
func NewRetriever(idx *index.Index, embedder ai.Embedder, embeddingModel string, topK int, logger *slog.Logger) (*Retriever, error) {
	if idx == nil {
		return nil, ErrNoIndex
	}
	if embeddingModel != idx.EmbeddingModel() {
		return nil, fmt.Errorf("%w: configured %q, index built with %q",
			ErrModelMismatch, embeddingModel, idx.EmbeddingModel())
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		index:    idx,
		embedder: embedder,
		topK:     topK,
		logger:   logger.With("component", "retriever"),
	}, nil
}

// Retrieve returns the top-k chunks most similar to the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) (core.RetrievalResult, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := r.index.Search(vector, r.topK)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("retrieved passages", "query", query, "count", len(results))
	return results, nil
}
