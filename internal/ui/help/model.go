package help

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/theme"
	"github.com/vantai/console/internal/ui/command"
)

// Model is the help overlay: keyboard shortcuts plus the command
// palette reference.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorBlue).
		MarginTop(1)

	m.help.Width = m.width - 4
	m.help.ShowAll = true

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("VanTai Console Help"),
		sectionStyle.Render("Keys"),
		m.help.View(m.keys),
		sectionStyle.Render("Commands (:)"),
		m.renderCommands(),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// renderCommands lists the command palette entries.
func (m Model) renderCommands() string {
	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	lines := make([]string, 0, len(command.Palette()))
	for _, e := range command.Palette() {
		lines = append(lines, nameStyle.Width(16).Render(e.Name)+descStyle.Render(e.Desc))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
