package notifications

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// NotificationItem wraps a model.Notification for use in a bubbles/list.
type NotificationItem struct {
	Notification model.Notification
}

// FilterValue returns the string used for fuzzy filtering.
func (i NotificationItem) FilterValue() string { return i.Notification.Title }

// ItemDelegate implements list.ItemDelegate for rendering notification rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single notification line. Unread entries get a dot
// marker and a bold title.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	notifItem, ok := item.(NotificationItem)
	if !ok {
		return
	}

	n := notifItem.Notification

	marker := " "
	if !n.IsRead() {
		marker = "●"
	}

	badge := theme.CategoryStyle(n.Category).Render(string(n.Category))
	line := fmt.Sprintf(
		"%s %s %s  %s",
		marker, badge, n.Title, n.SentAt.Format("2006-01-02 15:04"),
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}
