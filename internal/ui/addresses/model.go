package addresses

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// LoadedMsg carries the fetched address book into the view.
type LoadedMsg struct {
	Addresses []model.Address
	Err       error
}

// CreateRequestMsg asks the parent to save a new address book entry.
type CreateRequestMsg struct {
	Address model.Address
}

// DeleteRequestMsg asks the parent to delete an address book entry.
type DeleteRequestMsg struct {
	ID string
}

// CloseMsg signals the parent to leave the address book view.
type CloseMsg struct{}

// addressItem wraps a model.Address for use in a bubbles/list.
type addressItem struct {
	addr model.Address
}

func (i addressItem) FilterValue() string { return i.addr.Label }

// itemDelegate renders one address per line.
type itemDelegate struct{}

func (d itemDelegate) Height() int  { return 1 }
func (d itemDelegate) Spacing() int { return 0 }

func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ai, ok := item.(addressItem)
	if !ok {
		return
	}

	a := ai.addr
	line := fmt.Sprintf(
		"%s  %s, %s — %s (%s)",
		a.Label, a.Line, a.City, a.Recipient, a.Phone,
	)

	if index == m.Index() {
		fmt.Fprint(w, theme.SelectedItemStyle.Render(line))
		return
	}
	fmt.Fprint(w, theme.ListItemStyle.Render(line))
}

// formBindings holds form field values on the heap so that huh's
// Value() pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	label     string
	recipient string
	phone     string
	line      string
	city      string
}

// Model is the address book view: a list plus an inline create form.
type Model struct {
	list     list.Model
	keys     *keys.KeyMap
	form     *huh.Form
	fb       *formBindings
	formOpen bool
	loaded   bool
	loadErr  error
	width    int
	height   int
}

// New creates the address book view.
func New(k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, itemDelegate{}, width, height-2)
	l.Title = "Address Book"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		list:   l,
		keys:   k,
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Init returns the initial command for the address book view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the address book.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.loaded = true
		m.loadErr = msg.Err
		items := make([]list.Item, len(msg.Addresses))
		for i, a := range msg.Addresses {
			items[i] = addressItem{addr: a}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.formOpen {
			return m.updateForm(msg)
		}
		return m.handleListKeys(msg)
	}

	if m.formOpen {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleListKeys processes key input while the list has focus.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, func() tea.Msg {
			return CloseMsg{}
		}

	case key.Matches(msg, m.keys.New):
		m.formOpen = true
		*m.fb = formBindings{}
		m.form = m.buildForm()
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		item, ok := m.list.SelectedItem().(addressItem)
		if !ok {
			return m, nil
		}
		id := item.addr.ID
		return m, func() tea.Msg {
			return DeleteRequestMsg{ID: id}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateForm routes messages to the create form while it is open.
func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formOpen = false
		addr := model.Address{
			Label:     m.fb.label,
			Recipient: m.fb.recipient,
			Phone:     m.fb.phone,
			Line:      m.fb.line,
			City:      m.fb.city,
		}
		return m, func() tea.Msg {
			return CreateRequestMsg{Address: addr}
		}
	}
	if m.form.State == huh.StateAborted {
		m.formOpen = false
		return m, nil
	}

	return m, cmd
}

// FormOpen reports whether the inline create form has input focus.
func (m Model) FormOpen() bool {
	return m.formOpen
}

// View renders the address book view.
func (m Model) View() string {
	if m.formOpen {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite).
			MarginBottom(1)
		content := titleStyle.Render("New Address") + "\n" + m.form.View()
		return lipgloss.NewStyle().Padding(1, 2).Render(content)
	}

	if len(m.list.Items()) == 0 {
		return m.renderEmptyState()
	}
	return m.list.View()
}

// renderEmptyState shows placeholder text for an empty address book.
func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	switch {
	case !m.loaded:
		return style.Render("Loading addresses...")
	case m.loadErr != nil:
		return style.Render("Could not load addresses.\nPress r to retry.")
	default:
		return style.Render("No saved addresses.\n\nPress a to add one.")
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Label").
				Placeholder("Home, Office...").
				Value(&m.fb.label).
				Validate(validateRequired("Label")),
			huh.NewInput().
				Title("Recipient").
				Value(&m.fb.recipient).
				Validate(validateRequired("Recipient")),
			huh.NewInput().
				Title("Phone").
				Value(&m.fb.phone).
				Validate(validateRequired("Phone")),
			huh.NewInput().
				Title("Street address").
				Value(&m.fb.line).
				Validate(validateRequired("Street address")),
			huh.NewInput().
				Title("City").
				Value(&m.fb.city).
				Validate(validateRequired("City")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
