package notifications

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// LoadedMsg carries a fresh snapshot of the notification cache into the
// list view.
type LoadedMsg struct {
	Items []model.Notification
}

// SelectedMsg is sent when the user opens a notification. The parent
// fires the mark-read mutation (if unread) and shows the detail view
// immediately, without waiting for the mutation to complete.
type SelectedMsg struct {
	Notification model.Notification
}

// CloseMsg signals the parent to leave the notification list.
type CloseMsg struct{}

// MarkAllRequestMsg asks the parent to issue the bulk mark-all-read
// mutation.
type MarkAllRequestMsg struct{}

// ToggleReadRequestMsg asks the parent to flip the read state of one
// notification.
type ToggleReadRequestMsg struct {
	ID   string
	Read bool
}

// Model is the full-page notification list.
type Model struct {
	list   list.Model
	keys   *keys.KeyMap
	width  int
	height int
	loaded bool
}

// New creates the notification list view.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Notifications"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init returns the initial command for the list view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the notification list.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loaded = true
		items := make([]list.Item, len(msg.Items))
		for i, n := range msg.Items {
			items[i] = NotificationItem{Notification: n}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg {
				return CloseMsg{}
			}

		case key.Matches(msg, m.keys.Select):
			item, ok := m.list.SelectedItem().(NotificationItem)
			if !ok {
				return m, nil
			}
			n := item.Notification
			return m, func() tea.Msg {
				return SelectedMsg{Notification: n}
			}

		case key.Matches(msg, m.keys.MarkAllRead):
			return m, func() tea.Msg {
				return MarkAllRequestMsg{}
			}

		case key.Matches(msg, m.keys.ToggleRead):
			item, ok := m.list.SelectedItem().(NotificationItem)
			if !ok {
				return m, nil
			}
			n := item.Notification
			return m, func() tea.Msg {
				return ToggleReadRequestMsg{ID: n.ID, Read: !n.IsRead()}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the notification list.
func (m Model) View() string {
	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows placeholder text for an empty list.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if !m.loaded {
		return style.Render("Loading notifications...")
	}
	return style.Render("No notifications.")
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
