package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"coursecast/internal/media"
)

var (
	grantedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	deniedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// styled reports whether output is going to an interactive terminal;
// plain text is emitted otherwise so pipes stay clean.
func styled() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Decision renders an access decision as a colored badge.
func Decision(d media.AccessDecision) string {
	if !styled() {
		return d.String()
	}
	if d.Allowed() {
		return grantedStyle.Render(d.String())
	}
	return deniedStyle.Render(d.String())
}

// Label renders a field label for key/value output.
func Label(s string) string {
	if !styled() {
		return s
	}
	return labelStyle.Render(s)
}

// Faint renders secondary detail text.
func Faint(s string) string {
	if !styled() {
		return s
	}
	return faintStyle.Render(s)
}
