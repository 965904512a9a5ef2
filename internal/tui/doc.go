// Package tui provides the terminal user interface for backport.
//
// It handles:
//   - Interactive confirmation and commit selection (using survey and bubbletea)
//   - Structured logging to the console and a rotating log file (Splog)
//   - Terminal styling and colors (using lipgloss)
package tui
