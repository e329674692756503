package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/theme"
)

// CommandMsg is emitted when the user executes a command. The parent
// owns the dispatch table; unknown commands are ignored there.
type CommandMsg string

// Entry is one command the palette offers.
type Entry struct {
	Name string
	Desc string
}

// Palette lists the commands the console understands, in display order.
func Palette() []Entry {
	return []Entry{
		{Name: "orders", Desc: "recent orders dashboard"},
		{Name: "notifications", Desc: "open the notification list"},
		{Name: "addresses", Desc: "open the address book"},
		{Name: "fleet", Desc: "warehouse and vehicle status"},
		{Name: "refresh", Desc: "refetch the current view"},
		{Name: "mark all read", Desc: "mark every notification read"},
		{Name: "logout", Desc: "sign out and clear the saved session"},
		{Name: "quit", Desc: "exit the console"},
	}
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type a command..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			cmd := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if cmd != "" {
				return m, func() tea.Msg {
					return CommandMsg(cmd)
				}
			}
			return m, nil

		case "tab":
			if matches := m.matches(); len(matches) > 0 {
				m.input.SetValue(matches[0].Name)
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// matches returns the palette entries whose name starts with the
// current input. An empty input matches everything.
func (m Model) matches() []Entry {
	typed := strings.ToLower(strings.TrimSpace(m.input.Value()))

	var out []Entry
	for _, e := range Palette() {
		if strings.HasPrefix(e.Name, typed) {
			out = append(out, e)
		}
	}
	return out
}

// View renders the command palette with the matching commands beneath
// the input.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	nameStyle := lipgloss.NewStyle().Foreground(theme.ColorBlue)
	descStyle := lipgloss.NewStyle().Foreground(theme.ColorGray)

	sections := []string{
		titleStyle.Render("Command Palette"),
		m.input.View(),
	}

	matches := m.matches()
	if len(matches) == 0 {
		sections = append(sections, "", descStyle.Render("no matching command"))
	} else {
		sections = append(sections, "")
		for _, e := range matches {
			line := nameStyle.Width(16).Render(e.Name) + descStyle.Render(e.Desc)
			sections = append(sections, line)
		}
		sections = append(sections, "", descStyle.Render("tab complete | enter run"))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}
