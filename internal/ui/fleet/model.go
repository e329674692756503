package fleet

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// LoadedMsg carries the fetched warehouse and vehicle statuses.
type LoadedMsg struct {
	Warehouses []model.Warehouse
	Vehicles   []model.Vehicle
	Err        error
}

// CloseMsg signals the parent to leave the fleet view.
type CloseMsg struct{}

// Model is the warehouse/vehicle status view. It is a plain render of
// server data with no interaction beyond scrolling.
type Model struct {
	warehouses []model.Warehouse
	vehicles   []model.Vehicle
	err        error
	loaded     bool
	viewport   viewport.Model
	keys       *keys.KeyMap
	width      int
	height     int
}

// New creates the fleet status view.
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

// Init returns the initial command for the fleet view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the fleet view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loaded = true
		m.warehouses = msg.Warehouses
		m.vehicles = msg.Vehicles
		m.err = msg.Err
		m.viewport.SetContent(m.renderContent())
		m.viewport.GotoTop()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg {
				return CloseMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the fleet view.
func (m Model) View() string {
	if !m.loaded {
		return lipgloss.NewStyle().
			Width(m.width).
			Height(m.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("Loading fleet status...")
	}
	return m.viewport.View()
}

// renderContent builds the warehouse and vehicle sections.
func (m Model) renderContent() string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	var sections []string

	if m.err != nil {
		sections = append(sections, metaStyle.Render(
			"Fleet status unavailable: "+m.err.Error(),
		))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, headerStyle.Render(
		fmt.Sprintf("Warehouses (%d)", len(m.warehouses)),
	))
	for _, w := range m.warehouses {
		badge := theme.FleetStatusStyle(w.Status).Render(w.Status)
		sections = append(sections, fmt.Sprintf(
			"  %s — %s  %d/%d %s",
			w.Name, w.Location, w.Occupancy, w.Capacity, badge,
		))
	}

	sections = append(sections, "")
	sections = append(sections, headerStyle.Render(
		fmt.Sprintf("Vehicles (%d)", len(m.vehicles)),
	))
	for _, v := range m.vehicles {
		badge := theme.FleetStatusStyle(v.Status).Render(v.Status)
		driver := v.Driver
		if driver == "" {
			driver = metaStyle.Render("unassigned")
		}
		sections = append(sections, fmt.Sprintf(
			"  %s  %s  %s %s",
			v.Plate, v.Type, driver, badge,
		))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
}
