// repl is an interactive transliteration console: type romanized Manchu and
// watch the script render live, press enter to keep a line in the history.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jusunglee/manchuscript/manchu"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1)

	scriptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	historyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

type historyEntry struct {
	romanized string
	script    string
}

type model struct {
	textInput textinput.Model
	history   []historyEntry
	width     int
}

func initialModel() model {
	ti := textinput.New()
	ti.Placeholder = "manju gisun"
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return model{textInput: ti}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			text := strings.TrimSpace(m.textInput.Value())
			if text == "" {
				return m, nil
			}
			script, err := manchu.ConvertText(text)
			if err != nil {
				return m, nil
			}
			m.history = append(m.history, historyEntry{romanized: text, script: script})
			m.textInput.SetValue("")
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("manchuscript"))
	b.WriteString("\n")

	for _, entry := range m.history {
		b.WriteString(historyStyle.Render(entry.romanized))
		b.WriteString(dimStyle.Render("  →  "))
		b.WriteString(scriptStyle.Render(entry.script))
		b.WriteString("\n")
	}
	if len(m.history) > 0 {
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(m.preview()))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("enter: keep line · esc: quit"))
	b.WriteString("\n")

	return b.String()
}

// preview converts what has been typed so far. Trailing input that is not yet
// a complete romanization shows as an error until the next keystrokes land.
func (m model) preview() string {
	text := strings.TrimSpace(m.textInput.Value())
	if text == "" {
		return dimStyle.Render("…")
	}

	script, err := manchu.ConvertText(text)
	if err != nil {
		var inputErr *manchu.UnrecognizedInputError
		if errors.As(err, &inputErr) {
			return errorStyle.Render(fmt.Sprintf("can't read %q in %q", inputErr.Substring, inputErr.Word))
		}
		return errorStyle.Render(err.Error())
	}
	return scriptStyle.Render(script)
}

func main() {
	if _, err := tea.NewProgram(initialModel()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
