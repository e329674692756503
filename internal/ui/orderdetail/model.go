package orderdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// BackMsg signals the parent to navigate back to the orders view.
type BackMsg struct{}

// LoadedMsg carries the loaded order summary.
type LoadedMsg struct {
	Order *model.Order
	Err   error
}

// Model is the order detail view component.
type Model struct {
	order    *model.Order
	err      error
	viewport viewport.Model
	keys     *keys.KeyMap
	width    int
	height   int
	loading  bool
}

// New creates a new order detail view.
func New(k *keys.KeyMap, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.order = msg.Order
		m.err = msg.Err
		m.loading = false
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return BackMsg{}
			}
		}
	}

	// Delegate to viewport for scrolling (j/k, up/down, pgup/pgdn)
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// SetLoading sets the loading state.
func (m *Model) SetLoading(loading bool) {
	m.loading = loading
}

// View renders the detail view.
func (m Model) View() string {
	if m.loading {
		return m.centered("Loading order...")
	}
	if m.err != nil {
		return m.centered("Could not load order: " + m.err.Error())
	}
	if m.order == nil {
		return m.centered("No order selected")
	}
	return m.viewport.View()
}

// centered renders a dimmed message in the middle of the content area.
func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// renderContent builds the full detail content string for the viewport.
func (m Model) renderContent() string {
	if m.order == nil {
		return ""
	}

	order := m.order
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render("Order "+order.OrderID))

	statusBadge := theme.OrderStatusStyle(order.Status).Render(order.Status)
	sections = append(sections, statusBadge)
	sections = append(sections, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)

	sections = append(sections,
		metaStyle.Render("Sender"),
		fmt.Sprintf("  %s  %s",
			valStyle.Render(order.Sender.Name),
			metaStyle.Render(order.Sender.Phone),
		),
		"",
		metaStyle.Render("Receiver"),
		fmt.Sprintf("  %s  %s",
			valStyle.Render(order.Receiver.Name),
			metaStyle.Render(order.Receiver.Phone),
		),
	)

	if order.Receiver.Address != "" {
		sections = append(sections,
			"  "+valStyle.Render(order.Receiver.Address),
		)
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(m.width-4, 80)))
	sections = append(sections, "", separator)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
