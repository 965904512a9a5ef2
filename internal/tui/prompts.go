package tui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrInteractiveDisabled is returned when a prompt is needed but no terminal is available
var ErrInteractiveDisabled = errors.New("interactive prompts are disabled (no terminal or BACKPORT_NO_INTERACTIVE is set)")

// ErrCanceled is returned when the user aborts a prompt
var ErrCanceled = errors.New("canceled")

// Prompter asks the user questions. Workflows depend on this interface so
// tests can script the answers.
type Prompter interface {
	// Confirm asks a yes/no question
	Confirm(message string, defaultValue bool) (bool, error)
	// SelectCommits lets the user pick a subset of options, preselecting defaults
	SelectCommits(message string, options, defaults []string) ([]string, error)
	// TextInput asks for a single line of text
	TextInput(message, defaultValue string) (string, error)
}

// TerminalPrompter implements Prompter on the controlling terminal
type TerminalPrompter struct{}

// NewTerminalPrompter returns a Prompter backed by the terminal
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// IsInteractive reports whether prompts can be shown
func IsInteractive() bool {
	return os.Getenv("BACKPORT_NO_INTERACTIVE") == "" && IsTTY()
}

// textInputModel is a simple text input prompt model
type textInputModel struct {
	textInput textinput.Model
	prompt    string
	done      bool
	err       error
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrCanceled
			m.done = true
			return m, tea.Quit
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	if m.done {
		return ""
	}
	styleObj := lipgloss.NewStyle().Margin(1, 0)
	return styleObj.Render(fmt.Sprintf("%s\n%s\n\n(Press Enter to submit, Ctrl+C to cancel)", m.prompt, m.textInput.View()))
}

// confirmModel is a simple yes/no confirmation prompt model
type confirmModel struct {
	prompt string
	choice bool
	done   bool
	err    error
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrCanceled
			m.done = true
			return m, tea.Quit
		case tea.KeyRunes:
			switch strings.ToLower(string(msg.Runes)) {
			case "y":
				m.choice = true
				m.done = true
				return m, tea.Quit
			case "n":
				m.choice = false
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		return ""
	}
	yesNo := "[y/N]"
	if m.choice {
		yesNo = "[Y/n]"
	}
	return lipgloss.NewStyle().Margin(1, 0).Render(fmt.Sprintf("%s %s", m.prompt, yesNo))
}

// Confirm prompts the user for yes/no confirmation
func (p *TerminalPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if !IsInteractive() {
		return false, ErrInteractiveDisabled
	}

	program := tea.NewProgram(confirmModel{prompt: message, choice: defaultValue},
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := program.Run()
	if err != nil {
		return false, err
	}

	finalModel, ok := model.(confirmModel)
	if !ok {
		return false, fmt.Errorf("unexpected model type %T", model)
	}
	if finalModel.err != nil {
		return false, finalModel.err
	}
	return finalModel.choice, nil
}

// TextInput prompts the user for a line of text
func (p *TerminalPrompter) TextInput(message, defaultValue string) (string, error) {
	if !IsInteractive() {
		return "", ErrInteractiveDisabled
	}

	ti := textinput.New()
	ti.SetValue(defaultValue)
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60

	program := tea.NewProgram(textInputModel{textInput: ti, prompt: message},
		tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := program.Run()
	if err != nil {
		return "", err
	}

	finalModel, ok := model.(textInputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type %T", model)
	}
	if finalModel.err != nil {
		return "", finalModel.err
	}
	return strings.TrimSpace(finalModel.textInput.Value()), nil
}

// SelectCommits shows a multi-select list of commits
func (p *TerminalPrompter) SelectCommits(message string, options, defaults []string) ([]string, error) {
	if !IsInteractive() {
		return nil, ErrInteractiveDisabled
	}

	var selected []string
	prompt := &survey.MultiSelect{
		Message:  message,
		Options:  options,
		Default:  defaults,
		PageSize: 15,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return nil, selectError(err)
	}
	return selected, nil
}

// selectError maps an interrupt to ErrCanceled and keeps every other failure
func selectError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCanceled
	}
	return fmt.Errorf("commit selection failed: %w", err)
}
