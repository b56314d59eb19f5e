package cli

import (
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptQuestionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	promptHintStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ConfirmModel - Y/n question
// =============================================================================

// ConfirmModel is the bubbletea model for a yes/no question. Enter picks the
// default answer.
type ConfirmModel struct {
	Question string
	Default  bool

	Answered bool
	Answer   bool
}

// NewConfirmModel creates a question that defaults to yes.
func NewConfirmModel(question string) ConfirmModel {
	return ConfirmModel{Question: question, Default: true}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.Answered, m.Answer = true, true
		return m, tea.Quit
	case "n", "esc", "q", "ctrl+c":
		m.Answered, m.Answer = true, false
		return m, tea.Quit
	case "enter":
		m.Answered, m.Answer = true, m.Default
		return m, tea.Quit
	}
	return m, nil
}

func (m ConfirmModel) View() string {
	hint := "[Y/n]"
	if !m.Default {
		hint = "[y/N]"
	}
	if m.Answered {
		answer := "no"
		if m.Answer {
			answer = "yes"
		}
		return promptQuestionStyle.Render(m.Question) + " " + promptHintStyle.Render(answer) + "\n"
	}
	return promptQuestionStyle.Render(m.Question) + " " + promptHintStyle.Render(hint)
}

// =============================================================================
// Prompting
// =============================================================================

// confirmer returns a Confirm callback for pipeline.ComposeOptions. Without
// a terminal on stdin it returns nil, which refuses every fix.
func confirmer(in *os.File, out io.Writer) func(string) bool {
	if !isTerminal(in) {
		return nil
	}
	return func(question string) bool {
		return askConfirm(in, out, question)
	}
}

// askConfirm runs a ConfirmModel and reports the answer. A failing program
// counts as no.
func askConfirm(in io.Reader, out io.Writer, question string) bool {
	p := tea.NewProgram(NewConfirmModel(question), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Answered && m.Answer
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
