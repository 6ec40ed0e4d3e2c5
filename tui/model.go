// Package tui implements the interactive chat surface: a scrolling
// transcript, a question input, a spinner while the pipeline runs, and
// per-answer source lists that can be toggled open.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/docentlabs/docent/chat"
	"github.com/docentlabs/docent/core"
)

// Asker is the TUI-facing subset of the chat engine.
type Asker interface {
	Ask(ctx context.Context, utterance string) (core.Turn, error)
}

// answerMsg carries the outcome of an asynchronous ask.
type answerMsg struct {
	turn core.Turn
	err  error
}

// Model is the Bubble Tea model for the chat session.
type Model struct {
	session Asker
	files   []string

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	turns       []core.Turn
	showSources bool
	waiting     bool
	status      string
	ready       bool
}

// New creates a chat model over a session. files is the list of indexed
// documents, shown in the header.
func New(session Asker, files []string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the documents and press Enter"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return Model{
		session:  session,
		files:    files,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		status:   "Ready. Ctrl+S toggles sources, Ctrl+C quits.",
	}
}

// Init starts the text input cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, fh := transcriptStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + spacer + input frame + status
		vh := msg.Height - reserved - fh
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = vh
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if m.waiting {
				return m, nil
			}
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.input.Reset()
			m.turns = append(m.turns, core.Turn{Speaker: core.SpeakerHuman, Text: question})
			m.waiting = true
			m.status = "Thinking..."
			m.refresh()
			return m, tea.Batch(m.spinner.Tick, ask(m.session, question))
		case "ctrl+s":
			m.showSources = !m.showSources
			m.refresh()
			return m, nil
		case "up":
			m.viewport.ScrollUp(1)
			return m, nil
		case "down":
			m.viewport.ScrollDown(1)
			return m, nil
		}

	case answerMsg:
		m.waiting = false
		if msg.err != nil {
			m.status = errorStyle.Render(describeError(msg.err))
		} else {
			m.turns = append(m.turns, msg.turn)
			m.status = "Ready. Ctrl+S toggles sources, Ctrl+C quits."
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("docent") + "  " +
		fileListStyle.Render(strings.Join(m.files, ", "))
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())

	status := m.status
	if m.waiting {
		status = m.spinner.View() + " " + m.status
	}
	return header + "\n" + transcript + "\n" + input + "\n" + status
}

// ask runs one pipeline turn off the UI goroutine.
func ask(session Asker, question string) tea.Cmd {
	return func() tea.Msg {
		turn, err := session.Ask(context.Background(), question)
		return answerMsg{turn: turn, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "Ask a question about the indexed documents."
	}

	var sb strings.Builder
	for i, turn := range m.turns {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		switch turn.Speaker {
		case core.SpeakerHuman:
			sb.WriteString(humanStyle.Render("You: ") + turn.Text)
		case core.SpeakerAssistant:
			sb.WriteString(assistantStyle.Render("Docent: ") + turn.Text)
			if m.showSources && len(turn.Citations) > 0 {
				sb.WriteString("\n" + renderSources(turn.Citations))
			}
		}
	}
	return sb.String()
}

func renderSources(citations []core.Citation) string {
	var sb strings.Builder
	sb.WriteString(sourceHeadStyle.Render("Sources:"))
	for _, c := range citations {
		sb.WriteString(fmt.Sprintf("\n  %s", sourceStyle.Render(
			fmt.Sprintf("%s, page %s — %s", c.File, c.Page, c.Excerpt))))
	}
	return sb.String()
}

// describeError keeps pipeline failures readable in the status line.
func describeError(err error) string {
	switch {
	case errors.Is(err, chat.ErrGenerationTimeout):
		return "The model timed out. Try again, or check that it is running."
	case errors.Is(err, chat.ErrGenerationUnavailable):
		return "The model is unreachable. Check the configured host."
	}
	return "Error: " + err.Error()
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	fileListStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	humanStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	sourceHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	spinnerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Run starts the interactive session and blocks until the user quits.
func Run(session Asker, files []string) error {
	p := tea.NewProgram(New(session, files), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
