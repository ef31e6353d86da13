package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	sections := []helpSection{
		{
			title: "Navigation",
			items: []helpItem{
				{"j/k", "Scroll down/up"},
				{"g/G", "Go to top/bottom"},
				{"ctrl+d/u", "Half page down/up"},
				{"pgdn/pgup", "Page down/up"},
			},
		},
		{
			title: "Stream",
			items: []helpItem{
				{"f", "Toggle follow mode"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"h/?", "Toggle help"},
				{"q/ctrl+c", "Quit"},
			},
		},
	}

	var b strings.Builder

	b.WriteString(m.styles.Text.Bold(true).Render("Keyboard Shortcuts"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := m.styles.Warning.Width(12)
	for i, section := range sections {
		b.WriteString(m.styles.Accent.Bold(true).Render(section.title))
		b.WriteString("\n")

		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(m.styles.Text.Render(item.desc))
			b.WriteString("\n")
		}

		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Press any key to close"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.palette.Accent)).
		Padding(1, 2).
		Width(40)

	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal.Render(b.String()))
	}
	return modal.Render(b.String())
}

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}
