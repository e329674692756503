package ordersearch

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vantai/console/internal/model"
	"github.com/vantai/console/internal/theme"
)

// debounceDelay is the quiet period that must elapse after the last
// keystroke before a search request fires.
const debounceDelay = 300 * time.Millisecond

// maxVisibleSuggestions caps the rendered suggestion list.
const maxVisibleSuggestions = 8

// Searcher is the remote lookup behind the autocomplete.
type Searcher interface {
	SearchOrders(
		ctx context.Context,
		query string,
		customerID string,
	) ([]model.Order, error)
}

// SelectedMsg is sent when the user picks an order from the
// suggestions; the parent navigates to its detail view.
type SelectedMsg struct {
	OrderID string
}

// debounceMsg fires when a debounce timer elapses. Only the timer for
// the latest keystroke is live; stale timers carry an old seq and are
// dropped, which is the single-timer-slot discipline.
type debounceMsg struct {
	seq   int
	query string
}

// resultsMsg carries a search response tagged with its request
// sequence number so a slow stale response never overwrites a newer one.
type resultsMsg struct {
	seq       int
	immediate bool
	orders    []model.Order
	err       error
}

// Model is the debounced order search box with its suggestion list.
type Model struct {
	input      textinput.Model
	searcher   Searcher
	customerID string

	suggestions []model.Order
	cursor      int
	notFound    bool
	searching   bool

	timerSeq   int // latest scheduled debounce timer
	issuedSeq  int // requests issued
	appliedSeq int // newest response applied

	width int
}

// New creates an order search model. A non-empty customerID scopes
// every search to that customer's own orders (customer role); staff
// pass an empty customerID for a global search.
func New(searcher Searcher, customerID string, width int) Model {
	ti := textinput.New()
	ti.Placeholder = "order number, sender or receiver..."
	ti.Prompt = "/ "
	ti.Width = width - 4

	return Model{
		input:      ti,
		searcher:   searcher,
		customerID: customerID,
		width:      width,
	}
}

// Focus puts the input into editing mode.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the query, suggestions, and all transient state.
func (m *Model) Reset() {
	m.input.Reset()
	m.suggestions = nil
	m.cursor = 0
	m.notFound = false
	m.searching = false
	m.timerSeq++
}

// Value returns the current query text.
func (m Model) Value() string {
	return m.input.Value()
}

// Suggestions returns the currently loaded suggestion list.
func (m Model) Suggestions() []model.Order {
	return m.suggestions
}

// NotFound reports whether the last search yielded no matches. It is
// distinct from "no query yet": an empty input never sets it.
func (m Model) NotFound() bool {
	return m.notFound
}

// Update handles messages for the search box.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case debounceMsg:
		// A newer keystroke rescheduled the timer; this one is dead.
		if msg.seq != m.timerSeq {
			return m, nil
		}
		return m.issueSearch(msg.query, false)

	case resultsMsg:
		return m.applyResults(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey processes a keystroke: Enter selects or forces a search,
// arrows move the cursor, anything else edits the query and restarts
// the debounce timer.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		// Suggestions already loaded: select without a new request.
		if len(m.suggestions) > 0 {
			return m.selectOrder(m.suggestions[m.cursor])
		}
		// Nothing loaded but the field is non-empty: search right now.
		if m.input.Value() != "" {
			return m.issueSearch(m.input.Value(), true)
		}
		return m, nil

	case "down":
		if m.cursor < len(m.suggestions)-1 {
			m.cursor++
		}
		return m, nil

	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()

	if after == before {
		return m, cmd
	}

	// Any edit invalidates the pending timer.
	m.timerSeq++

	// Clearing the input empties the list immediately, no debounce and
	// no network call.
	if after == "" {
		m.suggestions = nil
		m.cursor = 0
		m.notFound = false
		m.searching = false
		return m, cmd
	}

	seq := m.timerSeq
	query := after
	tick := tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: query}
	})
	return m, tea.Batch(cmd, tick)
}

// issueSearch fires a request for the given query, tagged with the next
// sequence number.
func (m Model) issueSearch(query string, immediate bool) (Model, tea.Cmd) {
	m.issuedSeq++
	seq := m.issuedSeq
	m.searching = true

	searcher := m.searcher
	customerID := m.customerID
	return m, func() tea.Msg {
		orders, err := searcher.SearchOrders(
			context.Background(), query, customerID,
		)
		return resultsMsg{seq: seq, immediate: immediate, orders: orders, err: err}
	}
}

// applyResults folds a tagged response into the model, discarding
// anything older than the newest applied response.
func (m Model) applyResults(msg resultsMsg) (Model, tea.Cmd) {
	if msg.seq <= m.appliedSeq {
		return m, nil
	}
	m.appliedSeq = msg.seq
	m.searching = false

	// The query was cleared while this request was in flight.
	if m.input.Value() == "" {
		return m, nil
	}

	// A failed search reads as "not found"; the suggestion list is a
	// best-effort affordance, not an error surface.
	if msg.err != nil || len(msg.orders) == 0 {
		m.suggestions = nil
		m.cursor = 0
		m.notFound = true
		return m, nil
	}

	if msg.immediate && len(msg.orders) == 1 {
		return m.selectOrder(msg.orders[0])
	}

	m.suggestions = msg.orders
	m.cursor = 0
	m.notFound = false
	return m, nil
}

// selectOrder commits a suggestion: the query text becomes the order's
// identifier, the list closes, and the parent is told what was picked.
func (m Model) selectOrder(order model.Order) (Model, tea.Cmd) {
	m.input.SetValue(order.OrderID)
	m.input.CursorEnd()
	m.suggestions = nil
	m.cursor = 0
	m.notFound = false
	m.searching = false

	orderID := order.OrderID
	return m, func() tea.Msg {
		return SelectedMsg{OrderID: orderID}
	}
}

// View renders the search bar and, below it, the suggestion list or the
// empty-state message.
func (m Model) View() string {
	bar := lipgloss.NewStyle().
		Foreground(theme.ColorWhite).
		Padding(0, 1).
		Render(m.input.View())

	sections := []string{bar}

	switch {
	case m.searching:
		sections = append(sections, theme.HelpStyle.Render("  searching..."))

	case m.notFound:
		sections = append(sections, theme.HelpStyle.Render(
			fmt.Sprintf("  no orders match %q", m.input.Value()),
		))

	case len(m.suggestions) > 0:
		count := len(m.suggestions)
		if count > maxVisibleSuggestions {
			count = maxVisibleSuggestions
		}
		for i := 0; i < count; i++ {
			sections = append(sections, m.renderSuggestion(i))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderSuggestion renders one row of the suggestion list.
func (m Model) renderSuggestion(i int) string {
	order := m.suggestions[i]
	line := fmt.Sprintf(
		"%s  %s → %s",
		order.OrderID, order.Sender.Name, order.Receiver.Name,
	)
	line += theme.OrderStatusStyle(order.Status).Render(order.Status)

	if i == m.cursor {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// SetSize updates the search box dimensions.
func (m *Model) SetSize(width int) {
	m.width = width
	m.input.Width = width - 4
}
