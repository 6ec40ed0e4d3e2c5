package chat

import (
	"context"
	"log/slog"
	"strings"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/core"
)

// DefaultExcerptLength is the citation excerpt budget in runes.
const DefaultExcerptLength = 300

// Answerer generates a grounded answer from retrieved passages and the
// conversation so far.
type Answerer struct {
	generator     ai.Generator
	excerptLength int
	logger        *slog.Logger
}

// NewAnswerer creates an answerer backed by the given generator.
func NewAnswerer(generator ai.Generator, excerptLength int, logger *slog.Logger) *Answerer {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Answerer{
		generator:     generator,
		excerptLength: excerptLength,
		logger:        logger.With("component", "answerer"),
	}
}

// Answer generates an answer to utterance grounded in the retrieved
// passages, in the context of the prior conversation. The original
// utterance is used here, not the condensed form: the model sees the
// full history, so condensation would only lose nuance.
//
// Citations are derived exclusively from the passages handed in; the
// answerer never invents provenance.
func (a *Answerer) Answer(ctx context.Context, history []core.Turn, utterance string, passages core.RetrievalResult) (string, []core.Citation, error) {
	system := groundingDirective + "\n\n" + renderContext(passages)

	messages := make([]ai.Message, 0, len(history)+1)
	for _, turn := range history {
		role := ai.RoleHuman
		if turn.Speaker == core.SpeakerAssistant {
			role = ai.RoleAssistant
		}
		messages = append(messages, ai.Message{Role: role, Text: turn.Text})
	}
	messages = append(messages, ai.Message{Role: ai.RoleHuman, Text: utterance})

	answer, err := a.generator.Generate(ctx, system, messages)
	if err != nil {
		return "", nil, err
	}
	answer = strings.TrimSpace(answer)

	citations := make([]core.Citation, len(passages))
	for i, p := range passages {
		citations[i] = core.Citation{
			File:    p.Chunk.FileName(),
			Page:    p.Chunk.PageLabel(),
			Excerpt: excerpt(p.Chunk.Text, a.excerptLength),
		}
	}

	a.logger.Debug("answer generated", "citations", len(citations))
	return answer, citations, nil
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// excerpt normalizes line breaks to spaces and truncates to at most
// limit runes, never splitting a multi-byte character.
func excerpt(text string, limit int) string {
	text = lineBreaks.Replace(text)

	if limit <= 0 {
		return text
	}
	count := 0
	for i := range text {
		if count == limit {
			return text[:i]
		}
		count++
	}
	return text
}
