package notifications

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// DetailBackMsg signals the parent to close the detail view. The parent
// re-broadcasts the changed signal so badge and list counts reflect the
// read that just happened.
type DetailBackMsg struct{}

// Detail is the single-notification view.
type Detail struct {
	notification *model.Notification
	viewport     viewport.Model
	keys         *keys.KeyMap
	width        int
	height       int
}

// NewDetail creates a notification detail view.
func NewDetail(k *keys.KeyMap, width, height int) Detail {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Detail{
		viewport: vp,
		keys:     k,
		width:    width,
		height:   height,
	}
}

// Show sets the notification being displayed. The detail opens
// immediately; it is never gated on the mark-read mutation.
func (d *Detail) Show(n model.Notification) {
	d.notification = &n
	d.viewport.SetContent(d.renderContent())
	d.viewport.GotoTop()
}

// Update handles messages for the detail view.
func (d Detail) Update(msg tea.Msg) (Detail, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(keyMsg, d.keys.Back) {
			return d, func() tea.Msg {
				return DetailBackMsg{}
			}
		}
	}

	var cmd tea.Cmd
	d.viewport, cmd = d.viewport.Update(msg)
	return d, cmd
}

// View renders the detail view.
func (d Detail) View() string {
	if d.notification == nil {
		return lipgloss.NewStyle().
			Width(d.width).
			Height(d.height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render("No notification selected")
	}
	return d.viewport.View()
}

// renderContent builds the full detail content string for the viewport.
func (d Detail) renderContent() string {
	n := d.notification
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(n.Title))

	badge := theme.CategoryStyle(n.Category).Render(string(n.Category))
	timeStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)
	sections = append(sections, lipgloss.JoinHorizontal(
		lipgloss.Top,
		badge, "  ",
		timeStyle.Render(n.SentAt.Format("2006-01-02 15:04")),
	))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", min(d.width-4, 80)))
	sections = append(sections, "", separator, "")

	body := n.Content
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No further details")
	}
	sections = append(sections, body)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the detail view dimensions.
func (d *Detail) SetSize(width, height int) {
	d.width = width
	d.height = height
	d.viewport.Width = width
	d.viewport.Height = height - 2
}
