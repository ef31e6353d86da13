package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// renderHeader renders the status bar: identity, liveness, source, record
// counts, watermark age, and the last error when one is pending.
func (m Model) renderHeader() string {
	compact := m.width < 80

	var parts []string

	parts = append(parts, m.styles.Logo.Render("picket"))
	parts = append(parts, m.statusIndicator())

	parts = append(parts,
		m.styles.Muted.Render("src:")+" "+m.styles.Text.Render(m.snapshot.Source))

	parts = append(parts,
		m.styles.Muted.Render("records:")+" "+
			m.styles.Text.Render(fmt.Sprintf("%d", m.snapshot.Records)))

	if counts := m.labelCounts(compact); counts != "" {
		parts = append(parts, m.styles.Muted.Render(counts))
	}

	if wm := m.formatWatermark(); wm != "" {
		parts = append(parts, m.styles.Muted.Render(wm))
	}

	if m.snapshot.LastError != nil {
		maxErr := 80
		if compact {
			maxErr = 40
		}
		errText := truncate(fmt.Sprintf("%v", m.snapshot.LastError), maxErr)
		parts = append(parts,
			m.styles.Danger.Bold(true).Render("ERROR")+" "+
				m.styles.Danger.Render(errText))
	}

	return m.styles.Text.Width(m.width).Render(strings.Join(parts, "  "))
}

// statusIndicator shows source liveness: live, retrying after one failed
// poll, offline after two.
func (m Model) statusIndicator() string {
	switch {
	case m.snapshot.IsOffline():
		return m.styles.Danger.Bold(true).Render("● OFFLINE")
	case m.snapshot.ConsecutiveFailures > 0:
		return m.styles.Warning.Render("● RETRY")
	default:
		return m.styles.Success.Render("● LIVE")
	}
}

// labelCounts summarizes per-label record counts, busiest first, ties
// alphabetically. The tail is folded into "+N more" when space is short.
func (m Model) labelCounts(compact bool) string {
	type labelCount struct {
		label string
		count uint64
	}
	items := make([]labelCount, 0, len(m.snapshot.Counts))
	for label, count := range m.snapshot.Counts {
		if count == 0 {
			continue
		}
		items = append(items, labelCount{label, count})
	}
	if len(items) == 0 {
		return ""
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count == items[j].count {
			return items[i].label < items[j].label
		}
		return items[i].count > items[j].count
	})

	limit := 4
	if compact {
		limit = 2
	}

	segments := make([]string, 0, limit+1)
	for i, it := range items {
		if i == limit {
			segments = append(segments, fmt.Sprintf("+%d more", len(items)-limit))
			break
		}
		segments = append(segments, fmt.Sprintf("%s=%d", it.label, it.count))
	}
	return strings.Join(segments, " ")
}

// formatWatermark formats the poll watermark with a relative indicator.
func (m Model) formatWatermark() string {
	if m.snapshot.Watermark.IsZero() {
		return ""
	}

	timeSince := time.Since(m.snapshot.Watermark)
	timeStr := m.snapshot.Watermark.Format("15:04:05")

	if timeSince < time.Minute {
		timeStr += " (now)"
	} else if timeSince < time.Hour {
		timeStr += fmt.Sprintf(" (%dm ago)", int(timeSince.Minutes()))
	} else if timeSince < 24*time.Hour {
		timeStr += fmt.Sprintf(" (%dh ago)", int(timeSince.Hours()))
	}

	return timeStr
}

// renderCommandBar renders the command hints bar.
func (m Model) renderCommandBar() string {
	followLabel := "Pause"
	if !m.follow {
		followLabel = "Follow"
	}

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"f", followLabel},
		{"j/k", "Scroll"},
		{"g/G", "Top/Bottom"},
		{"?", "Help"},
		{"q", "Quit"},
	}

	segments := make([]string, 0, len(commands))
	for _, c := range commands {
		segments = append(segments,
			m.styles.Accent.Render(c.key)+m.styles.Muted.Render(":")+m.styles.Muted.Render(c.desc))
	}

	return m.styles.Text.Width(m.width).Render(strings.Join(segments, "  "))
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
