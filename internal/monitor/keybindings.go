package monitor

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewMode is what the dashboard is showing.
type ViewMode int

const (
	ViewMenu ViewMode = iota
	ViewPanel
)

// keyMap holds the bindings shown in the help footer.
type keyMap struct {
	Select    key.Binding
	Quit      key.Binding
	Interrupt key.Binding
	Back      key.Binding
}

var keys = keyMap{
	Select: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6"),
		key.WithHelp("1-6", "open monitor"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	Interrupt: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "exit"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("any key", "back to menu"),
	),
}

func (k keyMap) menuHelp() []key.Binding  { return []key.Binding{k.Select, k.Quit} }
func (k keyMap) panelHelp() []key.Binding { return []key.Binding{k.Back, k.Interrupt} }

// invalidSelection is shown when a menu key matches no monitor.
const invalidSelection = "invalid selection"

// HandleKeyMsg processes a keypress and returns the command to run next.
func (m *Model) HandleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Interrupt) {
		return m.quit()
	}

	if m.mode == ViewPanel {
		m.leavePanel()
		return nil
	}

	if key.Matches(msg, keys.Quit) {
		return m.quit()
	}
	for i, item := range m.items {
		if msg.String() == item.Key {
			m.notice = ""
			return m.openPanel(i)
		}
	}
	m.notice = invalidSelection
	return nil
}
