package cli

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		name string
		key  tea.KeyMsg
		want bool
	}{
		{"yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")}, true},
		{"upper yes", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("Y")}, true},
		{"no", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")}, false},
		{"enter takes default", tea.KeyMsg{Type: tea.KeyEnter}, true},
		{"escape", tea.KeyMsg{Type: tea.KeyEsc}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmd := NewConfirmModel("Fix it?").Update(tt.key)
			got := m.(ConfirmModel)
			if !got.Answered || got.Answer != tt.want {
				t.Errorf("answered=%v answer=%v, want %v", got.Answered, got.Answer, tt.want)
			}
			if cmd == nil {
				t.Error("answering should quit the program")
			}
		})
	}
}

func TestConfirmModelIgnoresOtherKeys(t *testing.T) {
	m, cmd := NewConfirmModel("Fix it?").Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if m.(ConfirmModel).Answered || cmd != nil {
		t.Error("unrelated key should leave the question open")
	}
}

func TestConfirmModelView(t *testing.T) {
	m := NewConfirmModel("Fix it?")
	if v := m.View(); !strings.Contains(v, "Fix it?") || !strings.Contains(v, "[Y/n]") {
		t.Errorf("View = %q", v)
	}
	m.Default = false
	if v := m.View(); !strings.Contains(v, "[y/N]") {
		t.Errorf("View = %q", v)
	}
}

func TestConfirmerWithoutTerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "stdin")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if confirmer(f, os.Stderr) != nil {
		t.Error("a regular file is not a terminal, confirmer should be nil")
	}
}
