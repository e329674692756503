package ordersearch

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantai/console/internal/model"
)

// fakeSearcher records every query it receives.
type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	scopes  []string
	results []model.Order
	err     error
}

func (f *fakeSearcher) SearchOrders(
	ctx context.Context, query, customerID string,
) ([]model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	f.scopes = append(f.scopes, customerID)
	return f.results, f.err
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newFocused(searcher Searcher, customerID string) Model {
	m := New(searcher, customerID, 80)
	m.Focus()
	return m
}

func typeString(t *testing.T, m Model, s string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, r := range s {
		m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m, cmd
}

func pressEnter(m Model) (Model, tea.Cmd) {
	return m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

// runSearch executes a command returned by Update and feeds the
// resulting message back, the way the Bubble Tea runtime would.
func runSearch(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Msg) {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	results, ok := msg.(resultsMsg)
	require.True(t, ok, "expected a search response, got %T", msg)
	m, next := m.Update(results)
	if next == nil {
		return m, nil
	}
	return m, next()
}

func TestDebounceOnlyLatestTimerFires(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{
		{OrderID: "VT100"}, {OrderID: "VT101"},
	}}
	m := newFocused(searcher, "")

	m, _ = typeString(t, m, "V")
	staleSeq := m.timerSeq

	m, _ = typeString(t, m, "T")

	// The timer armed for "V" was invalidated by the second keystroke.
	m, cmd := m.Update(debounceMsg{seq: staleSeq, query: "V"})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, searcher.callCount())

	// The live timer fires the one request, for the final text.
	m, cmd = m.Update(debounceMsg{seq: m.timerSeq, query: "VT"})
	m, _ = runSearch(t, m, cmd)

	require.Equal(t, []string{"VT"}, searcher.queries)
	assert.Len(t, m.Suggestions(), 2)
}

func TestClearingInputEmptiesListWithoutSearching(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{{OrderID: "VT100"}}}
	m := newFocused(searcher, "")

	m, _ = typeString(t, m, "V")
	m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "V"})
	m, _ = runSearch(t, m, cmd)
	require.Len(t, m.Suggestions(), 1)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Empty(t, m.Value())
	assert.Empty(t, m.Suggestions())
	assert.False(t, m.NotFound())

	// The clear itself must not trigger a request.
	assert.Equal(t, 1, searcher.callCount())
}

func TestResponseAfterClearIsDropped(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{{OrderID: "VT100"}}}
	m := newFocused(searcher, "")

	m, _ = typeString(t, m, "V")
	m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "V"})
	require.NotNil(t, cmd)
	inflight := cmd().(resultsMsg)

	// The user clears the box while the request is in flight.
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.Empty(t, m.Value())

	m, _ = m.Update(inflight)
	assert.Empty(t, m.Suggestions())
	assert.False(t, m.NotFound())
}

func TestStaleResponseNeverOverwritesNewer(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{{OrderID: "VT1"}}}
	m := newFocused(searcher, "")
	m, _ = typeString(t, m, "VT1")

	m, slowCmd := m.issueSearch("VT1", false)
	slow := slowCmd().(resultsMsg)

	searcher.results = []model.Order{{OrderID: "VT12"}, {OrderID: "VT120"}}
	m, fastCmd := m.issueSearch("VT12", false)
	fast := fastCmd().(resultsMsg)

	// The newer response lands first; the older one resolves late and
	// must be discarded.
	m, _ = m.Update(fast)
	m, _ = m.Update(slow)

	require.Len(t, m.Suggestions(), 2)
	assert.Equal(t, "VT12", m.Suggestions()[0].OrderID)
}

func TestEnterSelectsHighlightedSuggestion(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{
		{OrderID: "VT100"}, {OrderID: "VT101"},
	}}
	m := newFocused(searcher, "")

	m, _ = typeString(t, m, "VT10")
	m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "VT10"})
	m, _ = runSearch(t, m, cmd)
	require.Len(t, m.Suggestions(), 2)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = pressEnter(m)
	require.NotNil(t, cmd)

	selected, ok := cmd().(SelectedMsg)
	require.True(t, ok)
	assert.Equal(t, "VT101", selected.OrderID)
	assert.Equal(t, "VT101", m.Value())
	assert.Empty(t, m.Suggestions())
}

func TestEnterForcesImmediateSearch(t *testing.T) {
	t.Run("single match is opened directly", func(t *testing.T) {
		searcher := &fakeSearcher{results: []model.Order{{OrderID: "VT777"}}}
		m := newFocused(searcher, "")

		m, _ = typeString(t, m, "VT777")
		m, cmd := pressEnter(m)
		m, msg := runSearch(t, m, cmd)

		selected, ok := msg.(SelectedMsg)
		require.True(t, ok)
		assert.Equal(t, "VT777", selected.OrderID)
	})

	t.Run("multiple matches show the list", func(t *testing.T) {
		searcher := &fakeSearcher{results: []model.Order{
			{OrderID: "VT700"}, {OrderID: "VT701"},
		}}
		m := newFocused(searcher, "")

		m, _ = typeString(t, m, "VT7")
		m, cmd := pressEnter(m)
		m, msg := runSearch(t, m, cmd)

		assert.Nil(t, msg)
		assert.Len(t, m.Suggestions(), 2)
	})

	t.Run("empty input does nothing", func(t *testing.T) {
		searcher := &fakeSearcher{}
		m := newFocused(searcher, "")

		_, cmd := pressEnter(m)
		assert.Nil(t, cmd)
		assert.Equal(t, 0, searcher.callCount())
	})
}

func TestCustomerScopeIsAppliedToEverySearch(t *testing.T) {
	searcher := &fakeSearcher{results: []model.Order{{OrderID: "VT1"}}}
	m := newFocused(searcher, "cust-42")

	m, _ = typeString(t, m, "VT")
	m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "VT"})
	runSearch(t, m, cmd)

	require.Equal(t, []string{"cust-42"}, searcher.scopes)
}

func TestNoMatchesReadsAsNotFound(t *testing.T) {
	t.Run("empty result", func(t *testing.T) {
		searcher := &fakeSearcher{results: []model.Order{}}
		m := newFocused(searcher, "")

		m, _ = typeString(t, m, "nope")
		m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "nope"})
		m, _ = runSearch(t, m, cmd)

		assert.True(t, m.NotFound())
		assert.Empty(t, m.Suggestions())
	})

	t.Run("search failure", func(t *testing.T) {
		searcher := &fakeSearcher{err: context.DeadlineExceeded}
		m := newFocused(searcher, "")

		m, _ = typeString(t, m, "VT9")
		m, cmd := m.Update(debounceMsg{seq: m.timerSeq, query: "VT9"})
		m, _ = runSearch(t, m, cmd)

		assert.True(t, m.NotFound())
		assert.Empty(t, m.Suggestions())
	})
}
