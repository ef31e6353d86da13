package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"picket/internal/classify"
	"picket/internal/event"
	"picket/internal/render"
	"picket/internal/state"
)

func plainModel(t *testing.T) Model {
	t.Helper()
	render.SetColorMode("never")
	return New(Options{Store: state.NewStore("jsonl", 10)})
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 24})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNew_Defaults(t *testing.T) {
	m := New(Options{})
	if m.pollTick != time.Second {
		t.Errorf("pollTick = %v, want 1s", m.pollTick)
	}
	if !m.follow {
		t.Errorf("follow = false, want true on start")
	}
}

func TestView_LoadingUntilFirstWindowSize(t *testing.T) {
	m := plainModel(t)
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View before sizing = %q", got)
	}

	m = sized(t, m)
	view := m.View()
	if view == "Loading..." {
		t.Fatalf("View still loading after WindowSizeMsg")
	}
	if !strings.Contains(view, "picket") {
		t.Errorf("view missing app name:\n%s", view)
	}
	if !strings.Contains(view, "waiting for records") {
		t.Errorf("view missing empty placeholder:\n%s", view)
	}
}

func TestUpdate_SnapshotFillsViewportAndHeader(t *testing.T) {
	m := sized(t, plainModel(t))

	snap := state.Snapshot{
		Source:  "jsonl",
		Records: 2,
		Counts:  map[string]uint64{"NETWORK": 1, "OTHER": 1},
		Recent: []state.Entry{
			{
				Record: event.Record{
					Timestamp: time.Date(2024, 5, 1, 10, 0, 1, 0, time.UTC).Local(),
					Category:  3,
					Message:   "conn to 1.2.3.4",
				},
				Rule: classify.Rule{Category: 3, Label: "NETWORK", Emphasis: classify.EmphasisDanger},
			},
		},
	}
	updated, _ := m.Update(snapshotMsg(snap))
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "NETWORK [id 3] conn to 1.2.3.4") {
		t.Errorf("view missing record block:\n%s", view)
	}
	if !strings.Contains(view, "src: jsonl") {
		t.Errorf("view missing source segment:\n%s", view)
	}
	if !strings.Contains(view, "records: 2") {
		t.Errorf("view missing record count:\n%s", view)
	}
	if !strings.Contains(view, "NETWORK=1") {
		t.Errorf("view missing label counts:\n%s", view)
	}
}

func TestStatusIndicator(t *testing.T) {
	m := plainModel(t)

	tests := []struct {
		failures int
		want     string
	}{
		{0, "● LIVE"},
		{1, "● RETRY"},
		{2, "● OFFLINE"},
		{5, "● OFFLINE"},
	}
	for _, tt := range tests {
		m.snapshot.ConsecutiveFailures = tt.failures
		if got := m.statusIndicator(); got != tt.want {
			t.Errorf("statusIndicator with %d failures = %q, want %q", tt.failures, got, tt.want)
		}
	}
}

func TestHandleKey_QuitReturnsQuit(t *testing.T) {
	m := sized(t, plainModel(t))

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatalf("q produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q produced %T, want tea.QuitMsg", cmd())
	}
}

func TestHandleKey_FollowToggleUpdatesCommandBar(t *testing.T) {
	m := sized(t, plainModel(t))
	if !strings.Contains(m.View(), "f:Pause") {
		t.Fatalf("initial command bar missing pause hint:\n%s", m.View())
	}

	updated, _ := m.Update(keyMsg("f"))
	m = updated.(Model)
	if m.follow {
		t.Fatalf("follow still enabled after toggle")
	}
	if !strings.Contains(m.View(), "f:Follow") {
		t.Errorf("command bar missing follow hint:\n%s", m.View())
	}

	updated, _ = m.Update(keyMsg("f"))
	m = updated.(Model)
	if !m.follow {
		t.Fatalf("follow not re-enabled after second toggle")
	}
}

func TestHelpOverlayOpensAndCloses(t *testing.T) {
	m := sized(t, plainModel(t))

	updated, _ := m.Update(keyMsg("?"))
	m = updated.(Model)
	if !strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay not shown:\n%s", m.View())
	}

	updated, _ = m.Update(keyMsg("j"))
	m = updated.(Model)
	if strings.Contains(m.View(), "Keyboard Shortcuts") {
		t.Fatalf("help overlay still shown after keypress")
	}
}

func TestLabelCounts_FoldsTail(t *testing.T) {
	m := plainModel(t)
	m.snapshot.Counts = map[string]uint64{
		"AUTH": 5, "NETWORK": 4, "FILE": 3, "DISK": 2, "OTHER": 1,
	}

	if got := m.labelCounts(false); got != "AUTH=5 NETWORK=4 FILE=3 DISK=2 +1 more" {
		t.Errorf("labelCounts(false) = %q", got)
	}
	if got := m.labelCounts(true); got != "AUTH=5 NETWORK=4 +3 more" {
		t.Errorf("labelCounts(true) = %q", got)
	}
}

func TestFormatWatermark(t *testing.T) {
	m := plainModel(t)

	if got := m.formatWatermark(); got != "" {
		t.Errorf("formatWatermark with zero watermark = %q, want empty", got)
	}

	m.snapshot.Watermark = time.Now().Add(-2 * time.Second)
	if got := m.formatWatermark(); !strings.HasSuffix(got, "(now)") {
		t.Errorf("formatWatermark fresh = %q, want (now) suffix", got)
	}

	m.snapshot.Watermark = time.Now().Add(-90 * time.Second)
	if got := m.formatWatermark(); !strings.HasSuffix(got, "(1m ago)") {
		t.Errorf("formatWatermark stale = %q, want (1m ago) suffix", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hello", 3, "hel"},
		{"hello", 0, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.max, got, tt.want)
		}
	}
}
