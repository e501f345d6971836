package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pithecene-io/webasset/metrics"
)

// maxFeedLines caps the number of reload events kept in the feed.
const maxFeedLines = 256

// ReloadMsg is sent into the program for each dispatched reload.
type ReloadMsg struct {
	Path string
	Seq  int64
	Time time.Time
}

// tickMsg drives periodic counter refreshes.
type tickMsg time.Time

// keyMap defines key bindings.
type keyMap struct {
	Quit  key.Binding
	Clear key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear feed"),
	),
}

// feedLine is one rendered reload event.
type feedLine struct {
	at   time.Time
	path string
	seq  int64
}

// WatchModel is a Bubble Tea model showing a live reload feed plus
// watcher counters.
type WatchModel struct {
	root      string
	collector *metrics.Collector
	feed      []feedLine
	snapshot  metrics.Snapshot
	width     int
	height    int
	quitting  bool
}

// NewWatchModel creates a watch model for the given root directory.
func NewWatchModel(root string, collector *metrics.Collector) WatchModel {
	return WatchModel{
		root:      root,
		collector: collector,
	}
}

// Init implements tea.Model.
func (m WatchModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if m.collector != nil {
			m.snapshot = m.collector.Snapshot()
		}
		return m, tick()

	case ReloadMsg:
		m.feed = append(m.feed, feedLine{at: msg.Time, path: msg.Path, seq: msg.Seq})
		if len(m.feed) > maxFeedLines {
			m.feed = m.feed[len(m.feed)-maxFeedLines:]
		}
		if m.collector != nil {
			m.snapshot = m.collector.Snapshot()
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Clear):
			m.feed = nil
			return m, nil
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m WatchModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Watching " + m.root))
	b.WriteString("\n\n")

	b.WriteString(m.renderCounters())
	b.WriteString("\n\n")
	b.WriteString(m.renderFeed())

	help := HelpStyle.Render("Press q to quit, c to clear the feed")
	return b.String() + "\n" + help
}

func (m WatchModel) renderCounters() string {
	dispatched := StatBoxStyle.Render(
		StatLabelStyle.Render("Reloads") + "\n" +
			StatValueStyle.Render(fmt.Sprintf("%d", m.snapshot.ReloadsDispatched)))
	ignored := StatBoxStyle.Render(
		StatLabelStyle.Render("Ignored") + "\n" +
			StatValueStyle.Render(fmt.Sprintf("%d", m.snapshot.EventsIgnored)))
	return lipgloss.JoinHorizontal(lipgloss.Top, dispatched, " ", ignored)
}

func (m WatchModel) renderFeed() string {
	if len(m.feed) == 0 {
		return LabelStyle.Render("Waiting for changes...")
	}

	// Show the newest events that fit the viewport
	visible := m.feed
	limit := m.height - 12
	if limit > 0 && len(visible) > limit {
		visible = visible[len(visible)-limit:]
	}

	var b strings.Builder
	for i, line := range visible {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(LabelStyle.Render(line.at.Format("15:04:05")))
		b.WriteString(SuccessStyle.Render(fmt.Sprintf(" #%d ", line.seq)))
		b.WriteString(ValueStyle.Render(line.path))
	}
	return b.String()
}

// RunWatchTUI starts the watch TUI program. The returned program accepts
// ReloadMsg values via Send from the watch loop goroutine.
func RunWatchTUI(root string, collector *metrics.Collector) *tea.Program {
	model := NewWatchModel(root, collector)
	return tea.NewProgram(model, tea.WithAltScreen())
}
