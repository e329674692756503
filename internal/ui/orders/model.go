package orders

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
	"github.com/vantai/console/internal/ui/ordersearch"
)

// RecentSource supplies the recently viewed orders shown when no search
// is active.
type RecentSource interface {
	GetRecentOrders(ctx context.Context, limit int) ([]model.Order, error)
}

// OrdersLoadedMsg is sent when the recent order list has been loaded.
type OrdersLoadedMsg struct {
	Orders []model.Order
}

// SelectedOrderMsg is sent when the user opens an order's detail view.
type SelectedOrderMsg struct {
	OrderID string
}

// Model is the dashboard view: recently viewed orders plus the search
// overlay toggled with "/".
type Model struct {
	list       list.Model
	recent     RecentSource
	keys       *keys.KeyMap
	search     ordersearch.Model
	searchMode bool
	width      int
	height     int
}

// New creates the orders view.
func New(
	recent RecentSource,
	searcher ordersearch.Searcher,
	customerID string,
	k *keys.KeyMap,
	width, height int,
) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height-2)
	l.Title = "Recent Orders"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		recent: recent,
		keys:   k,
		search: ordersearch.New(searcher, customerID, width),
		width:  width,
		height: height,
	}
}

// Init returns a command that loads the recently viewed orders.
func (m Model) Init() tea.Cmd {
	return m.LoadRecent()
}

// Update handles messages for the orders view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case OrdersLoadedMsg:
		items := make([]list.Item, len(msg.Orders))
		for i, order := range msg.Orders {
			items[i] = OrderItem{Order: order}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case ordersearch.SelectedMsg:
		// Leave search mode; the parent handles navigation.
		m.searchMode = false
		orderID := msg.OrderID
		return m, func() tea.Msg {
			return SelectedOrderMsg{OrderID: orderID}
		}

	case tea.KeyMsg:
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	// The search box owns its debounce and result messages.
	if m.searchMode {
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleSearchKeys routes keystrokes while the search overlay is open.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.searchMode = false
		m.search.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input in normal (non-search) mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select):
		item, ok := m.list.SelectedItem().(OrderItem)
		if !ok {
			return m, nil
		}
		orderID := item.Order.OrderID
		return m, func() tea.Msg {
			return SelectedOrderMsg{OrderID: orderID}
		}

	case key.Matches(msg, m.keys.Search):
		m.searchMode = true
		m.search.Reset()
		return m, m.search.Focus()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the orders view.
func (m Model) View() string {
	if m.searchMode {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			m.search.View(),
			m.list.View(),
		)
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}

	return m.list.View()
}

// renderEmptyState shows guidance text when no orders have been viewed yet.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	return style.Render(
		"No recent orders.\n\n" +
			"Press / to search for an order.",
	)
}

// LoadRecent returns a tea.Cmd that loads recently viewed orders.
func (m Model) LoadRecent() tea.Cmd {
	recent := m.recent
	return func() tea.Msg {
		if recent == nil {
			return OrdersLoadedMsg{}
		}
		orders, err := recent.GetRecentOrders(context.Background(), 50)
		if err != nil {
			return OrdersLoadedMsg{Orders: nil}
		}
		return OrdersLoadedMsg{Orders: orders}
	}
}

// InSearchMode reports whether the search overlay is active.
func (m Model) InSearchMode() bool {
	return m.searchMode
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
	m.search.SetSize(width)
}
