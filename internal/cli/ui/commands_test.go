package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestCommandsPanelEscDismissesBeforeLeaving(t *testing.T) {
	c := testContainer()
	c.Notifier.Errorf("Couldn't save the commands.")

	m := commandsModel{container: c}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, cmd)
	require.Nil(t, c.Notifier.Current(), "first esc only clears the notification")

	cm, ok := next.(commandsModel)
	require.True(t, ok)
	_, cmd = cm.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd, "second esc leaves the panel")
}
