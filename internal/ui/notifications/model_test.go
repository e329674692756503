package notifications

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
)

func newLoaded(t *testing.T, items []model.Notification) Model {
	t.Helper()
	m := New(keys.DefaultKeyMap(), 80, 24)
	m, cmd := m.Update(LoadedMsg{Items: items})
	if cmd != nil {
		cmd()
	}
	return m
}

func TestEscClosesListInsteadOfQuitting(t *testing.T) {
	m := newLoaded(t, []model.Notification{{ID: "n1", Title: "arrived"}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	msg := cmd()
	assert.IsType(t, CloseMsg{}, msg)
}

func TestListNeverEmitsQuit(t *testing.T) {
	m := newLoaded(t, []model.Notification{{ID: "n1", Title: "arrived"}})

	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
	} {
		var cmd tea.Cmd
		m, cmd = m.Update(k)
		if cmd == nil {
			continue
		}
		assert.NotEqual(t, tea.QuitMsg{}, cmd(), "key %q must not quit the program", k.String())
	}
}

func TestEnterOpensSelectedNotification(t *testing.T) {
	ts := time.Now()
	m := newLoaded(t, []model.Notification{
		{ID: "n1", Title: "arrived", ReadAt: &ts},
	})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)

	sel, ok := cmd().(SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "n1", sel.Notification.ID)
}
