package orders

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// OrderItem wraps a model.Order so it can be used in a bubbles/list.
type OrderItem struct {
	Order model.Order
}

// FilterValue returns the string used for fuzzy filtering.
func (i OrderItem) FilterValue() string { return i.Order.OrderID }

// ItemDelegate implements list.ItemDelegate for rendering order rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single order line: id, route, status badge.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	orderItem, ok := item.(OrderItem)
	if !ok {
		return
	}

	order := orderItem.Order
	line := fmt.Sprintf(
		"%s  %s → %s %s",
		order.OrderID,
		order.Sender.Name,
		order.Receiver.Name,
		theme.OrderStatusStyle(order.Status).Render(order.Status),
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}
