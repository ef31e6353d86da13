package ui

import (
	"github.com/charmbracelet/lipgloss"

	"picket/internal/render"
)

// styleSet holds the lipgloss styles the watch chrome renders with, built
// once from the active palette. Record blocks inside the viewport use the
// render package styles instead, so both surfaces stay in sync.
type styleSet struct {
	Logo    lipgloss.Style
	Text    lipgloss.Style
	Muted   lipgloss.Style
	Accent  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
}

func newStyleSet(p render.Palette) styleSet {
	return styleSet{
		Logo:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)).Bold(true),
		Text:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.Text)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.Muted)),
		Accent:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Accent)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.Warning)),
		Danger:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.Danger)),
	}
}
