package tui

import (
	"errors"
	"io"
	"testing"

	"github.com/AlecAivazis/survey/v2/terminal"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestConfirmModel(t *testing.T) {
	t.Run("y accepts", func(t *testing.T) {
		model, _ := confirmModel{prompt: "Apply?"}.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
		m := model.(confirmModel)
		require.True(t, m.done)
		require.True(t, m.choice)
	})

	t.Run("enter keeps the default", func(t *testing.T) {
		model, _ := confirmModel{prompt: "Apply?", choice: true}.Update(tea.KeyMsg{Type: tea.KeyEnter})
		m := model.(confirmModel)
		require.True(t, m.done)
		require.True(t, m.choice)
	})

	t.Run("escape cancels", func(t *testing.T) {
		model, _ := confirmModel{prompt: "Apply?"}.Update(tea.KeyMsg{Type: tea.KeyEsc})
		m := model.(confirmModel)
		require.ErrorIs(t, m.err, ErrCanceled)
	})

	t.Run("view shows the default", func(t *testing.T) {
		require.Contains(t, confirmModel{prompt: "Apply?", choice: true}.View(), "[Y/n]")
		require.Contains(t, confirmModel{prompt: "Apply?"}.View(), "[y/N]")
	})
}

func TestTerminalPrompterNonInteractive(t *testing.T) {
	t.Setenv("BACKPORT_NO_INTERACTIVE", "1")
	p := NewTerminalPrompter()

	_, err := p.Confirm("Apply?", true)
	require.ErrorIs(t, err, ErrInteractiveDisabled)

	_, err = p.SelectCommits("Pick", []string{"a"}, nil)
	require.ErrorIs(t, err, ErrInteractiveDisabled)

	_, err = p.TextInput("Reviewer", "")
	require.ErrorIs(t, err, ErrInteractiveDisabled)
}

func TestSelectError(t *testing.T) {
	require.ErrorIs(t, selectError(terminal.InterruptErr), ErrCanceled)

	err := selectError(io.ErrUnexpectedEOF)
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.False(t, errors.Is(err, ErrCanceled))
}
