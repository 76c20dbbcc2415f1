package console

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type inputModel struct {
	label   string
	input   textinput.Model
	done    bool
	aborted bool
}

func newInputModel(label string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 4096
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	ti.Focus()
	return inputModel{label: label, input: ti}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	s := labelStyle.Render(m.label) + m.input.View()
	if !m.done && !m.aborted {
		s += "\n" + hintStyle.Render("enter confirm  esc cancel")
	}
	return s + "\n"
}

// TUIPrompter reads input with a bubbletea text field; secrets are masked.
type TUIPrompter struct {
	in  *os.File
	out io.Writer
}

func NewTUIPrompter(in *os.File, out io.Writer) *TUIPrompter {
	return &TUIPrompter{in: in, out: out}
}

func (p *TUIPrompter) Line(ctx context.Context, label string) (string, error) {
	return p.run(ctx, newInputModel(label, false))
}

func (p *TUIPrompter) Secret(ctx context.Context, label string) (string, error) {
	return p.run(ctx, newInputModel(label, true))
}

func (p *TUIPrompter) run(ctx context.Context, m inputModel) (string, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if errors.Is(err, tea.ErrInterrupted) {
			return "", ErrAborted
		}
		return "", err
	}
	fm := final.(inputModel)
	if fm.aborted {
		return "", ErrAborted
	}
	return fm.input.Value(), nil
}
