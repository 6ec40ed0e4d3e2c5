package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/docentlabs/docent/ai"
	"github.com/docentlabs/docent/ai/mock"
	"github.com/docentlabs/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCondenseEmptyHistoryIsIdentity(t *testing.T) {
	generator := mock.NewMockGenerator()
	condenser := NewCondenser(generator, nil)

	got := condenser.Condense(context.Background(), nil, "what is value at risk?")

	assert.Equal(t, "what is value at risk?", got)
	assert.Equal(t, 0, generator.CallCount(), "standalone utterances need no model call")
}

func TestCondenseUsesHistory(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		return "  what is the definition of a martingale?\n", nil
	}
	condenser := NewCondenser(generator, nil)

	history := []core.Turn{
		{Speaker: core.SpeakerHuman, Text: "tell me about stochastic processes"},
		{Speaker: core.SpeakerAssistant, Text: "they model random evolution over time"},
	}
	got := condenser.Condense(context.Background(), history, "and the martingale one?")

	assert.Equal(t, "what is the definition of a martingale?", got)
	require.Equal(t, 1, generator.CallCount())

	// The prompt carries both the transcript and the follow-up.
	prompt := generator.LastMessages()[0].Text
	assert.Contains(t, prompt, "tell me about stochastic processes")
	assert.Contains(t, prompt, "and the martingale one?")
}

func TestCondenseFallsBackOnError(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		return "", errors.New("model offline")
	}
	condenser := NewCondenser(generator, nil)

	history := []core.Turn{{Speaker: core.SpeakerHuman, Text: "earlier question"}}
	got := condenser.Condense(context.Background(), history, "follow-up")

	assert.Equal(t, "follow-up", got)
}

func TestCondenseFallsBackOnEmptyReply(t *testing.T) {
	generator := mock.NewMockGenerator()
	generator.GenerateFunc = func(ctx context.Context, system string, messages []ai.Message) (string, error) {
		return "   \n", nil
	}
	condenser := NewCondenser(generator, nil)

	history := []core.Turn{{Speaker: core.SpeakerHuman, Text: "earlier question"}}
	got := condenser.Condense(context.Background(), history, "follow-up")

	assert.Equal(t, "follow-up", got)
}
