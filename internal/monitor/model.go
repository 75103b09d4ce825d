package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/tmon/internal/errors"
	"github.com/rileyhilliard/tmon/internal/logger"
)

// MenuItem is one selectable monitor. New builds a fresh panel each time it
// is opened, so no series or tracker survives leaving a view.
type MenuItem struct {
	Key   string
	Title string
	New   func() Panel
}

// Model is the Bubble Tea model: a menu plus at most one running panel.
type Model struct {
	ctx      context.Context
	items    []MenuItem
	interval time.Duration
	log      logger.Logger
	now      func() time.Time

	mode     ViewMode
	active   Panel
	title    string
	gen      int // bumped whenever the active panel changes
	cancel   context.CancelFunc
	notice   string
	width    int
	height   int
	help     help.Model
	quitting bool
}

// tickMsg asks for the next collection of generation gen.
type tickMsg struct {
	gen int
}

// readingMsg carries a finished collection back to Update.
type readingMsg struct {
	gen     int
	reading Reading
	took    time.Duration
}

// NewModel creates the dashboard. ctx bounds every collection.
func NewModel(ctx context.Context, items []MenuItem, interval time.Duration, log logger.Logger) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logger.Noop()
	}
	return Model{
		ctx:      ctx,
		items:    items,
		interval: interval,
		log:      log,
		now:      time.Now,
		help:     help.New(),
	}
}

// Open returns a copy of m with the monitor bound to itemKey already running,
// for starting straight into one view from the command line.
func (m Model) Open(itemKey string) (Model, tea.Cmd) {
	for i, item := range m.items {
		if item.Key == itemKey {
			cmd := m.openPanel(i)
			return m, cmd
		}
	}
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd := m.HandleKeyMsg(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.active != nil {
			m.active.Resize(msg.Width)
		}

	case tickMsg:
		if msg.gen != m.gen || m.active == nil {
			return m, nil
		}
		return m, m.collectCmd()

	case readingMsg:
		// A reading from a panel that has since been closed.
		if msg.gen != m.gen || m.active == nil {
			return m, nil
		}
		if err := msg.reading.Err; err != nil {
			if errors.Unavailable(err) {
				m.log.Debug("%s: %s", m.title, errorSummary(err))
			} else {
				m.log.Warn("%s: %v", m.title, err)
			}
		}
		m.active.Apply(msg.reading)
		return m, m.tickCmd(msg.took)
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.mode == ViewPanel && m.active != nil {
		return m.renderPanel()
	}
	return m.renderMenu()
}

// Mode returns the current view mode.
func (m Model) Mode() ViewMode {
	return m.mode
}

// Notice returns the menu's status line.
func (m Model) Notice() string {
	return m.notice
}

// Generation identifies the active panel instance.
func (m Model) Generation() int {
	return m.gen
}

func (m *Model) openPanel(i int) tea.Cmd {
	m.stopCollection()
	m.gen++
	m.active = m.items[i].New()
	m.title = m.items[i].Title
	m.mode = ViewPanel
	if m.width > 0 {
		m.active.Resize(m.width)
	}
	m.log.Debug("open %s (gen %d)", m.title, m.gen)
	return m.collectCmd()
}

func (m *Model) leavePanel() {
	m.stopCollection()
	m.gen++
	m.active = nil
	m.title = ""
	m.mode = ViewMenu
}

func (m *Model) quit() tea.Cmd {
	m.stopCollection()
	m.quitting = true
	return tea.Quit
}

func (m *Model) stopCollection() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}

// collectCmd runs the active panel's collection off the update loop.
func (m *Model) collectCmd() tea.Cmd {
	m.stopCollection()
	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel

	panel, gen := m.active, m.gen
	return func() tea.Msg {
		defer cancel()
		start := time.Now()
		r := panel.Collect(ctx)
		return readingMsg{gen: gen, reading: r, took: time.Since(start)}
	}
}

// tickCmd waits out the rest of the interval. A collection that already
// took a full interval starts the next one immediately.
func (m Model) tickCmd(took time.Duration) tea.Cmd {
	gen := m.gen
	wait := m.interval - took
	if wait <= 0 {
		return func() tea.Msg { return tickMsg{gen: gen} }
	}
	return tea.Tick(wait, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
