package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
)

// Condenser rewrites a follow-up message into a standalone retrieval
// query using the conversation so far.
type Condenser struct {
	generator ai.Generator
	logger    *slog.Logger
}

// NewCondenser creates a condenser backed by the given generator.
func NewCondenser(generator ai.Generator, logger *slog.Logger) *Condenser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Condenser{
		generator: generator,
		logger:    logger.With("component", "condenser"),
	}
}

// Condense returns the standalone form of utterance given the history.
// With no history the utterance is already standalone and is returned
// unchanged without a model call. When the model call fails or returns
// nothing usable, Condense falls back to the raw utterance so that a
// degraded condenser never blocks retrieval.
func (c *Condenser) Condense(ctx context.Context, history []core.Turn, utterance string) string {
	if len(history) == 0 {
		return utterance
	}

	prompt := "Conversation:\n" + renderHistory(history) + "\nFollow-up message: " + utterance

	condensed, err := c.generator.Generate(ctx, condenseDirective, []ai.Message{
		{Role: ai.RoleHuman, Text: prompt},
	})
	if err != nil {
		c.logger.Warn("condensation failed, using raw utterance", "error", err)
		return utterance
	}

	condensed = strings.TrimSpace(condensed)
	if condensed == "" {
		c.logger.Warn("condensation returned empty text, using raw utterance")
		return utterance
	}

	c.logger.Debug("condensed utterance", "standalone", condensed)
	return condensed
}
