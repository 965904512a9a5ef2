package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

var (
	currentBranchStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	branchStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	commitStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	headerStyle        = lipgloss.NewStyle().Bold(true)
)

// ConfigureColors selects the color profile for all styled output.
// Colors are disabled when stdout is not a terminal or NO_COLOR is set.
func ConfigureColors(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout.Fd()) {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.EnvColorProfile())
}

// ColorBranchName colors a branch name based on whether it's current
func ColorBranchName(branchName string, isCurrent bool) string {
	if isCurrent {
		return currentBranchStyle.Render(branchName + " (current)")
	}
	return branchStyle.Render(branchName)
}

// ColorCommit renders an abbreviated commit hash
func ColorCommit(sha string) string {
	if len(sha) > 12 {
		sha = sha[:12]
	}
	return commitStyle.Render(sha)
}

// ColorDim renders secondary text
func ColorDim(text string) string {
	return dimStyle.Render(text)
}

// ColorSuccess renders a completion message
func ColorSuccess(text string) string {
	return successStyle.Render(text)
}

// ColorHeader renders a section header
func ColorHeader(text string) string {
	return headerStyle.Render(text)
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsTTY returns true if both stdin and stdout are terminals
func IsTTY() bool {
	return isTerminal(os.Stdin.Fd()) && isTerminal(os.Stdout.Fd())
}
