package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/docentlabs/docent/chat"
	"github.com/docentlabs/docent/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAsker scripts pipeline outcomes for the model tests.
type fakeAsker struct {
	turn core.Turn
	err  error

	asked []string
}

func (f *fakeAsker) Ask(ctx context.Context, utterance string) (core.Turn, error) {
	f.asked = append(f.asked, utterance)
	return f.turn, f.err
}

func sized(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func submit(m Model, question string) (Model, tea.Cmd) {
	m.input.SetValue(question)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func TestSubmitRunsAskAsync(t *testing.T) {
	asker := &fakeAsker{turn: core.Turn{
		Speaker: core.SpeakerAssistant,
		Text:    "grounded answer",
		Citations: []core.Citation{
			{File: "A.pdf", Page: "2", Excerpt: "the passage"},
		},
	}}

	m := sized(New(asker, []string{"A.pdf"}))
	m, cmd := submit(m, "what is a martingale?")
	require.NotNil(t, cmd)
	assert.True(t, m.waiting)
	require.Len(t, m.turns, 1, "user turn shows immediately")
	assert.Equal(t, core.SpeakerHuman, m.turns[0].Speaker)

	// Batch contains the spinner tick and the ask; find the answer.
	msg := runUntilAnswer(t, cmd)
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.waiting)
	require.Len(t, m.turns, 2)
	assert.Equal(t, "grounded answer", m.turns[1].Text)
	assert.Equal(t, []string{"what is a martingale?"}, asker.asked)
}

func TestSubmitWhileWaitingIgnored(t *testing.T) {
	asker := &fakeAsker{}
	m := sized(New(asker, nil))
	m, _ = submit(m, "first")
	require.True(t, m.waiting)

	m, cmd := submit(m, "second")
	assert.Nil(t, cmd)
	assert.Len(t, m.turns, 1)
}

func TestEmptySubmitIgnored(t *testing.T) {
	m := sized(New(&fakeAsker{}, nil))
	m, cmd := submit(m, "   ")
	assert.Nil(t, cmd)
	assert.Empty(t, m.turns)
	assert.False(t, m.waiting)
}

func TestErrorShowsActionableStatus(t *testing.T) {
	asker := &fakeAsker{err: fmt.Errorf("wrapped: %w", chat.ErrGenerationTimeout)}
	m := sized(New(asker, nil))
	m, cmd := submit(m, "question")

	msg := runUntilAnswer(t, cmd)
	updated, _ := m.Update(msg)
	m = updated.(Model)

	assert.False(t, m.waiting)
	assert.Len(t, m.turns, 1, "failed ask keeps only the user turn")
	assert.Contains(t, m.status, "timed out")
}

func TestUnreachableModelStatus(t *testing.T) {
	asker := &fakeAsker{err: chat.ErrGenerationUnavailable}
	m := sized(New(asker, nil))
	m, cmd := submit(m, "question")

	updated, _ := m.Update(runUntilAnswer(t, cmd))
	m = updated.(Model)
	assert.Contains(t, m.status, "unreachable")
}

func TestSourcesToggle(t *testing.T) {
	m := sized(New(&fakeAsker{}, nil))
	m.turns = []core.Turn{
		{Speaker: core.SpeakerHuman, Text: "q"},
		{Speaker: core.SpeakerAssistant, Text: "a", Citations: []core.Citation{
			{File: "A.pdf", Page: "2", Excerpt: "the passage"},
		}},
	}

	assert.NotContains(t, m.renderTranscript(), "A.pdf, page 2")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	transcript := m.renderTranscript()
	assert.Contains(t, transcript, "A.pdf, page 2")
	assert.Contains(t, transcript, "the passage")

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = updated.(Model)
	assert.NotContains(t, m.renderTranscript(), "A.pdf, page 2")
}

func TestQuitKeys(t *testing.T) {
	m := sized(New(&fakeAsker{}, nil))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestDescribeError(t *testing.T) {
	assert.Contains(t, describeError(chat.ErrGenerationTimeout), "timed out")
	assert.Contains(t, describeError(chat.ErrGenerationUnavailable), "unreachable")
	assert.Contains(t, describeError(errors.New("boom")), "boom")
}

// runUntilAnswer executes a command tree until it produces an answerMsg.
func runUntilAnswer(t *testing.T, cmd tea.Cmd) answerMsg {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case answerMsg:
			return msg
		case tea.BatchMsg:
			queue = append(queue, msg...)
		}
	}
	t.Fatal("command produced no answer")
	return answerMsg{}
}
