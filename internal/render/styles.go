package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"picket/internal/classify"
)

// Palette defines the colors used for rendered output.
type Palette struct {
	Name string

	Text    string
	Muted   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string
}

// DefaultPalette returns the built-in palette.
func DefaultPalette() Palette {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Palette{
		Name:    "Slate",
		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500
	}
}

// Styles contains pre-built lipgloss styles for the palette.
type Styles struct {
	Timestamp lipgloss.Style
	ID        lipgloss.Style
	Message   lipgloss.Style

	emphasis map[classify.Emphasis]lipgloss.Style
}

// Styles returns lipgloss styles for this palette.
func (p Palette) Styles() Styles {
	return Styles{
		Timestamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		ID: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Muted)),

		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color(p.Text)),

		emphasis: map[classify.Emphasis]lipgloss.Style{
			classify.EmphasisPlain: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Text)),

			classify.EmphasisMuted: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Muted)),

			classify.EmphasisAccent: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Accent)),

			classify.EmphasisSuccess: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Success)).
				Bold(true),

			classify.EmphasisWarning: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Warning)),

			classify.EmphasisDanger: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Danger)).
				Bold(true),

			classify.EmphasisInfo: lipgloss.NewStyle().
				Foreground(lipgloss.Color(p.Info)),
		},
	}
}

// Label returns the style for the given emphasis.
func (s Styles) Label(e classify.Emphasis) lipgloss.Style {
	if st, ok := s.emphasis[e]; ok {
		return st
	}
	return s.Message
}

// SetColorMode applies the output.color setting to the global lipgloss
// renderer. "auto" keeps lipgloss's own terminal detection; "always"
// forces true color; "never" strips all styling.
func SetColorMode(mode string) {
	switch mode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}
