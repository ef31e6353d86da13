// Package ui provides the Bubble Tea watch view: a full-screen live tail of
// classified records with a status header and scrollable history.
//
// The view is a pure reader. It polls store snapshots on a tick and never
// talks to the monitor or the source, so a wedged terminal can not stall
// record collection.
package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"picket/internal/render"
	"picket/internal/state"
)

// chromeLines is the fixed vertical space around the viewport: the status
// header and the command bar.
const chromeLines = 2

// Options configures the watch view.
type Options struct {
	Context  context.Context
	Store    *state.Store
	Palette  render.Palette
	PollTick time.Duration
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx      context.Context
	store    *state.Store
	pollTick time.Duration

	keys      keyMap
	palette   render.Palette
	styles    styleSet
	formatter *render.Renderer

	width  int
	height int
	ready  bool

	snapshot    state.Snapshot
	lastUpdated time.Time

	viewport viewport.Model
	follow   bool

	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = time.Second
	}

	palette := opts.Palette
	if palette.Name == "" {
		palette = render.DefaultPalette()
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		pollTick:  pollTick,
		keys:      DefaultKeyMap(),
		palette:   palette,
		styles:    newStyleSet(palette),
		formatter: render.New(io.Discard, palette),
		follow:    true,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	// Fetch snapshot immediately on start
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, m.contentHeight())
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.contentHeight()
		}
		m.updateViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.lastUpdated = time.Now()
		m.updateViewport()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	return b.String()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes the help overlay, except quit which still works
	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.ToggleFollow):
		m.follow = !m.follow
		if m.follow {
			m.viewport.GotoBottom()
		}

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		m.follow = false

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		m.follow = true

	case key.Matches(msg, m.keys.Down):
		m.viewport.ScrollDown(1)
		m.follow = false

	case key.Matches(msg, m.keys.Up):
		m.viewport.ScrollUp(1)
		m.follow = false

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.PageDown()
		m.follow = false

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.PageUp()
		m.follow = false

	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.HalfPageDown()
		m.follow = false

	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.HalfPageUp()
		m.follow = false
	}

	return m, nil
}

// handleTick processes the polling tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}

	// Schedule next tick
	cmds = append(cmds, tickCmd(m.pollTick))

	return m, tea.Batch(cmds...)
}

// contentHeight is the viewport height for the current window size.
func (m Model) contentHeight() int {
	h := m.height - chromeLines
	if h < 1 {
		h = 1
	}
	return h
}

// updateViewport rebuilds the viewport content from the latest snapshot.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}

	if len(m.snapshot.Recent) == 0 {
		m.viewport.SetContent(m.styles.Muted.Render("waiting for records..."))
		return
	}

	var b strings.Builder
	for _, entry := range m.snapshot.Recent {
		b.WriteString(m.formatter.Format(entry.Record, entry.Rule))
	}
	m.viewport.SetContent(strings.TrimRight(b.String(), "\n"))

	// Auto-scroll if following
	if m.follow {
		m.viewport.GotoBottom()
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	if opts.Store == nil {
		return fmt.Errorf("watch mode requires a data store")
	}

	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		<-m.ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("watch ui: %w", err)
	}
	return nil
}
