package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"caselens/internal/domain"
)

// Answerer is the TUI-facing subset of the QA component.
type Answerer interface {
	Answer(ctx context.Context, question string, history []domain.Message) (domain.AnswerResult, error)
}

// turn is one rendered exchange in the transcript.
type turn struct {
	question string
	result   domain.AnswerResult
	err      error
}

// Model is the Bubble Tea model for the case Q&A chat.
type Model struct {
	answerer Answerer

	input        textinput.Model
	viewport     viewport.Model
	turns        []turn
	history      []domain.Message
	status       string
	waiting      bool
	showExcerpts bool
	ready        bool
}

// New creates the chat model.
func New(answerer Answerer) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the Mastercard case and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		answerer: answerer,
		input:    ti,
		viewport: vp,
		status:   "Ready. Ctrl+E toggles excerpts, Ctrl+L clears history.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// answerMsg carries one completed question back into Update.
type answerMsg struct {
	question string
	result   domain.AnswerResult
	err      error
}

func (m Model) ask(question string, history []domain.Message) tea.Cmd {
	return func() tea.Msg {
		result, err := m.answerer.Answer(context.Background(), question, history)
		return answerMsg{question: question, result: result, err: err}
	}
}

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header, status, input frame, spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = maxInt(20, msg.Width)
		m.viewport.Height = vh
		m.viewport.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q != "" && !m.waiting {
				m.waiting = true
				m.status = "Searching documents…"
				m.input.SetValue("")
				return m, m.ask(q, m.history)
			}
		case "ctrl+e":
			m.showExcerpts = !m.showExcerpts
			m.viewport.SetContent(m.renderTranscript())
			m.viewport.GotoBottom()
			return m, nil
		case "ctrl+l":
			m.turns = nil
			m.history = nil
			m.status = "History cleared."
			m.viewport.SetContent(m.renderTranscript())
			return m, nil
		case "up", "down", "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case answerMsg:
		m.waiting = false
		m.turns = append(m.turns, turn{question: msg.question, result: msg.result, err: msg.err})
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
		} else {
			m.status = "Ready."
			// Keep the exchange so follow-up questions can reference it.
			m.history = append(m.history,
				domain.Message{Role: domain.RoleUser, Content: msg.question},
				domain.Message{Role: domain.RoleAssistant, Content: msg.result.Answer},
			)
		}
		m.viewport.SetContent(m.renderTranscript())
		m.viewport.GotoBottom()
		return m, nil
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
	header := headerStyle.Render("CaseLens — Case Q&A")
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + m.viewport.View() + "\n" + input + "\n" + status
}

func (m Model) renderTranscript() string {
	if len(m.turns) == 0 {
		return "Ask a question about the case documents.\n"
	}
	var b strings.Builder
	for _, t := range m.turns {
		b.WriteString(questionStyle.Render("You: " + t.question))
		b.WriteString("\n")
		if t.err != nil {
			b.WriteString(errorStyle.Render("Error: " + t.err.Error()))
			b.WriteString("\n\n")
			continue
		}
		b.WriteString(t.result.Answer)
		b.WriteString("\n")
		if len(t.result.Citations) > 0 {
			b.WriteString(citationStyle.Render("Sources: " + strings.Join(t.result.Citations, " · ")))
			b.WriteString("\n")
		}
		if m.showExcerpts {
			for _, ex := range t.result.Excerpts {
				label := fmt.Sprintf("%s (score: %.3f)", ex.Citation, ex.Score)
				b.WriteString(excerptStyle.Render(label + "\n" + truncate(ex.Text, 600)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

var (
	headerStyle   = lipgloss.NewStyle().Bold(true)
	queryBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	citationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	excerptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).PaddingLeft(2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
