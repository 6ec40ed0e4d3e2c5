package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/ai/mock"
	"github.com/docentlabs/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPassages() core.RetrievalResult {
	return core.RetrievalResult{
		{Chunk: core.Chunk{File: "A.pdf", Page: 2, Seq: 1, Text: "A martingale is a fair game."}, Score: 0.92},
		{Chunk: core.Chunk{File: "B.pdf", Page: 1, Seq: 2, Text: "Value at risk\nsummarizes losses."}, Score: 0.41},
	}
}

func TestAnswerBuildsGroundedPrompt(t *testing.T) {
	generator := mock.NewMockGenerator()
	var capturedSystem string
	generator.GenerateFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		capturedSystem = system
		return "A martingale is a fair game.", nil
	}
	answerer := NewAnswerer(generator, 0, nil)

	history := []core.Turn{
		{Speaker: core.SpeakerHuman, Text: "hello"},
		{Speaker: core.SpeakerAssistant, Text: "hi, ask me about the documents"},
	}
	answer, citations, err := answerer.Answer(context.Background(), history, "what is a martingale?", testPassages())
	require.NoError(t, err)
	assert.Equal(t, "A martingale is a fair game.", answer)

	// System prompt carries the directive and every passage with metadata.
	assert.Contains(t, capturedSystem, "could not find")
	assert.Contains(t, capturedSystem, "same language")
	assert.Contains(t, capturedSystem, "A.pdf, page 2")
	assert.Contains(t, capturedSystem, "B.pdf, page 1")
	assert.Contains(t, capturedSystem, "A martingale is a fair game.")

	// The model sees the prior history plus the original utterance last.
	messages := generator.LastMessages()
	require.Len(t, messages, 3)
	assert.Equal(t, ai.RoleHuman, messages[0].Role)
	assert.Equal(t, ai.RoleAssistant, messages[1].Role)
	assert.Equal(t, "what is a martingale?", messages[2].Text)

	require.Len(t, citations, 2)
	assert.Equal(t, "A.pdf", citations[0].File)
	assert.Equal(t, "2", citations[0].Page)
	assert.Equal(t, "Value at risk summarizes losses.", citations[1].Excerpt, "newlines normalized")
}

func TestAnswerCitationsOnlyFromPassages(t *testing.T) {
	// Even when the model names a phantom source, citations reflect only
	// what retrieval produced.
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		return "According to C.pdf page 9, martingales drift.", nil
	}
	answerer := NewAnswerer(generator, 0, nil)

	_, citations, err := answerer.Answer(context.Background(), nil, "question", testPassages())
	require.NoError(t, err)
	require.Len(t, citations, 2)
	for _, c := range citations {
		assert.NotEqual(t, "C.pdf", c.File)
	}
}

func TestAnswerNoPassages(t *testing.T) {
	answerer := NewAnswerer(mock.NewMockGenerator(), 0, nil)

	answer, citations, err := answerer.Answer(context.Background(), nil, "question", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.Empty(t, citations)
}

func TestExcerpt(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short", excerpt("short", 300))
	})

	t.Run("line breaks become spaces", func(t *testing.T) {
		assert.Equal(t, "a b c d", excerpt("a\nb\r\nc\rd", 300))
	})

	t.Run("truncates to rune budget", func(t *testing.T) {
		long := strings.Repeat("x", 400)
		assert.Len(t, excerpt(long, 300), 300)
	})

	t.Run("never splits a multi-byte rune", func(t *testing.T) {
		text := strings.Repeat("é", 10)
		got := excerpt(text, 4)
		assert.Equal(t, strings.Repeat("é", 4), got)
	})
}
