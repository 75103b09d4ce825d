package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMenuView(t *testing.T) {
	var built []*stubPanel
	m := NewModel(context.Background(), stubMenu(&built), time.Second, nil)

	view := m.View()
	assert.Contains(t, view, appTitle)
	assert.Contains(t, view, "[1]")
	assert.Contains(t, view, "CPU")
	assert.Contains(t, view, "[2]")
	assert.Contains(t, view, "Memory")
	assert.Contains(t, view, "[q]")
	assert.Contains(t, view, "Quit")
	assert.NotContains(t, view, invalidSelection)

	m, _ = update(t, m, runes("z"))
	assert.Contains(t, m.View(), invalidSelection)
}

func TestPanelView(t *testing.T) {
	var built []*stubPanel
	m := NewModel(context.Background(), stubMenu(&built), time.Second, nil)
	m, _ = update(t, m, runes("2"))

	view := m.View()
	assert.Contains(t, view, "panel:Memory")
	assert.Contains(t, view, "back to menu")
	assert.NotContains(t, view, "[q]")
}
