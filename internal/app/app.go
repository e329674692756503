package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vantai/console/internal/api"
	"github.com/vantai/console/internal/keys"
	"github.com/vantai/console/internal/notify"
	"github.com/vantai/console/internal/realtime"
	"github.com/vantai/console/internal/session"
	"github.com/vantai/console/internal/store"
	"github.com/vantai/console/internal/ui"
	"github.com/vantai/console/internal/ui/addresses"
	"github.com/vantai/console/internal/ui/command"
	"github.com/vantai/console/internal/ui/fleet"
	helpview "github.com/vantai/console/internal/ui/help"
	"github.com/vantai/console/internal/ui/login"
	"github.com/vantai/console/internal/ui/notifications"
	"github.com/vantai/console/internal/ui/orderdetail"
	"github.com/vantai/console/internal/ui/orders"
)

// sessionRestoredMsg reports the outcome of the startup session restore.
type sessionRestoredMsg struct {
	err error
}

// loginResultMsg reports the outcome of a login attempt.
type loginResultMsg struct {
	err error
}

// markResultMsg reports the outcome of a read-state mutation. Failures
// surface in the status bar of the view that initiated them.
type markResultMsg struct {
	err error
}

// addressMutatedMsg reports the outcome of an address create or delete.
type addressMutatedMsg struct {
	err error
}

// pollMsg fires on the background refresh interval.
type pollMsg struct{}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLogin ViewState = iota
	ViewOrders
	ViewOrderDetail
	ViewNotifications
	ViewNotificationDetail
	ViewAddresses
	ViewFleet
	ViewHelp
	ViewCommand
)

// Model is the root Bubble Tea model that manages view routing, layout,
// the session lifecycle, and notification synchronization.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap

	api      *api.Client
	session  *session.Manager
	notify   *notify.Store
	bus      *notify.Bus
	busCh    <-chan struct{}
	realtime *realtime.Client
	cache    *store.Cache

	loginView   login.Model
	ordersView  orders.Model
	detailView  orderdetail.Model
	notifList   notifications.Model
	notifDetail notifications.Detail
	addressView addresses.Model
	fleetView   fleet.Model
	helpView    helpview.Model
	commandView command.Model

	pollInterval  time.Duration
	ready         bool
	statusMessage string
}

// New creates the root application model over the shared services.
func New(
	apiClient *api.Client,
	sess *session.Manager,
	notifyStore *notify.Store,
	bus *notify.Bus,
	rt *realtime.Client,
	cache *store.Cache,
	pollInterval time.Duration,
) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewLogin,
		keys:         k,
		api:          apiClient,
		session:      sess,
		notify:       notifyStore,
		bus:          bus,
		busCh:        bus.Subscribe(),
		realtime:     rt,
		cache:        cache,
		loginView:    login.New(80, 24),
		ordersView:   orders.New(cache, apiClient, "", k, 80, 24),
		detailView:   orderdetail.New(k, 80, 24),
		notifList:    notifications.New(k, 80, 24),
		notifDetail:  notifications.NewDetail(k, 80, 24),
		addressView:  addresses.New(k, 80, 24),
		fleetView:    fleet.New(k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
		commandView:  command.New(80, 24),
		pollInterval: pollInterval,
	}
}

// Init seeds the notification list from the local cache, restores any
// persisted session, and arms the changed-signal listener and the
// background refresh timer.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.loadCachedNotifications(),
		m.restoreSession(),
		notify.Wait(m.busCh),
	}
	if m.pollInterval > 0 {
		cmds = append(cmds, m.schedulePoll())
	}
	return tea.Batch(cmds...)
}

// schedulePoll arms the next background refresh tick.
func (m Model) schedulePoll() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.loginView.SetSize(contentWidth, contentHeight)
		m.ordersView.SetSize(contentWidth, contentHeight)
		m.detailView.SetSize(contentWidth, contentHeight)
		m.notifList.SetSize(contentWidth, contentHeight)
		m.notifDetail.SetSize(contentWidth, contentHeight)
		m.addressView.SetSize(contentWidth, contentHeight)
		m.fleetView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		m.commandView.SetSize(contentWidth, contentHeight)
		// Forward to the active view so huh forms can lay themselves out.
		return m.updateActiveView(msg)

	case sessionRestoredMsg:
		if msg.err != nil || !m.session.IsAuthenticated() {
			m.currentView = ViewLogin
			return m, m.loginView.Start()
		}
		return m.enterAuthenticated()

	case login.SubmitMsg:
		return m, m.doLogin(msg.Email, msg.Password)

	case loginResultMsg:
		if msg.err != nil {
			return m, m.loginView.SetError(msg.err.Error())
		}
		return m.enterAuthenticated()

	case pollMsg:
		cmds := []tea.Cmd{m.schedulePoll()}
		if m.session.IsAuthenticated() {
			cmds = append(cmds, m.fetchNotifications())
		}
		return m, tea.Batch(cmds...)

	case notify.ChangedMsg:
		// Re-arm the listener, then refetch. Every consumer reads the
		// same store, so one fetch refreshes badge and list alike.
		return m, tea.Batch(
			notify.Wait(m.busCh),
			m.fetchNotifications(),
		)

	case notifications.LoadedMsg:
		// The list view receives fresh snapshots regardless of which
		// view is active, so it is current the moment it is shown.
		var cmd tea.Cmd
		m.notifList, cmd = m.notifList.Update(msg)
		return m, cmd

	case orders.SelectedOrderMsg:
		m.previousView = m.currentView
		m.currentView = ViewOrderDetail
		m.detailView.SetLoading(true)
		return m, m.loadOrder(msg.OrderID)

	case orderdetail.BackMsg:
		m.currentView = ViewOrders
		return m, m.ordersView.LoadRecent()

	case notifications.SelectedMsg:
		// The detail opens immediately; the mark-read mutation runs in
		// the background and announces itself over the bus on success.
		m.previousView = m.currentView
		m.currentView = ViewNotificationDetail
		m.notifDetail.Show(msg.Notification)
		if !msg.Notification.IsRead() {
			return m, m.markRead(msg.Notification.ID)
		}
		return m, nil

	case notifications.CloseMsg:
		m.currentView = ViewOrders
		return m, m.ordersView.LoadRecent()

	case notifications.DetailBackMsg:
		m.currentView = ViewNotifications
		m.bus.Publish()
		return m, nil

	case notifications.MarkAllRequestMsg:
		return m, m.markAllRead()

	case notifications.ToggleReadRequestMsg:
		if msg.Read {
			return m, m.markRead(msg.ID)
		}
		return m, m.markUnread(msg.ID)

	case markResultMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
		} else {
			m.statusMessage = ""
		}
		return m, nil

	case addresses.CreateRequestMsg:
		return m, m.createAddress(msg)

	case addresses.DeleteRequestMsg:
		return m, m.deleteAddress(msg.ID)

	case addressMutatedMsg:
		if msg.err != nil {
			m.statusMessage = msg.err.Error()
			return m, nil
		}
		m.statusMessage = ""
		return m, m.loadAddresses()

	case addresses.CloseMsg:
		m.currentView = ViewOrders
		return m, nil

	case fleet.CloseMsg:
		m.currentView = ViewOrders
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m.executeCommand(string(msg))

	case tea.KeyMsg:
		if model, cmd, handled := m.handleGlobalKeys(msg); handled {
			return model, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleGlobalKeys processes keys that work across views. It reports
// whether the key was consumed; unconsumed keys fall through to the
// active view. Views that capture free text (login, command palette,
// the search overlay, the address form) never see global keys taken
// away from them.
func (m Model) handleGlobalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		m.realtime.Disconnect()
		return m, tea.Quit, true
	}

	if m.textEntryActive() {
		return m, nil, false
	}

	switch {
	case msg.String() == "q":
		if m.currentView == ViewOrders {
			m.realtime.Disconnect()
			return m, tea.Quit, true
		}

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		if m.currentView == ViewCommand {
			m.currentView = m.previousView
			return m, nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewCommand
		return m, m.commandView.Focus(), true

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshCurrentView(), true

	case key.Matches(msg, m.keys.Notifications):
		if m.currentView != ViewNotifications {
			m.previousView = m.currentView
			m.currentView = ViewNotifications
			// Opening the list always triggers an explicit fetch, so
			// reads performed elsewhere are reflected.
			return m, m.fetchNotifications(), true
		}

	case key.Matches(msg, m.keys.Addresses):
		if m.currentView == ViewOrders {
			m.previousView = m.currentView
			m.currentView = ViewAddresses
			return m, m.loadAddresses(), true
		}

	case key.Matches(msg, m.keys.Fleet):
		if m.currentView == ViewOrders {
			m.previousView = m.currentView
			m.currentView = ViewFleet
			return m, m.loadFleet(), true
		}
	}

	return m, nil, false
}

// textEntryActive reports whether the active view owns free-form text
// input, in which case printable keys must reach it untouched.
func (m Model) textEntryActive() bool {
	switch m.currentView {
	case ViewLogin, ViewCommand:
		return true
	case ViewOrders:
		return m.ordersView.InSearchMode()
	case ViewAddresses:
		return m.addressView.FormOpen()
	default:
		return false
	}
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLogin:
		m.loginView, cmd = m.loginView.Update(msg)
	case ViewOrders:
		m.ordersView, cmd = m.ordersView.Update(msg)
	case ViewOrderDetail:
		m.detailView, cmd = m.detailView.Update(msg)
	case ViewNotifications:
		m.notifList, cmd = m.notifList.Update(msg)
	case ViewNotificationDetail:
		m.notifDetail, cmd = m.notifDetail.Update(msg)
	case ViewAddresses:
		m.addressView, cmd = m.addressView.Update(msg)
	case ViewFleet:
		m.fleetView, cmd = m.fleetView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// enterAuthenticated switches to the orders view after a session is
// established. The orders view is rebuilt so searches carry the
// customer scope of the user who just signed in.
func (m Model) enterAuthenticated() (tea.Model, tea.Cmd) {
	m.realtime.Connect(m.api.Token())

	width, height := 80, 24
	if m.ready {
		width = m.layout.ContentWidth()
		height = m.layout.ContentHeight()
	}
	m.ordersView = orders.New(
		m.cache, m.api, m.session.CustomerID(), m.keys, width, height,
	)

	m.currentView = ViewOrders
	return m, tea.Batch(
		m.ordersView.LoadRecent(),
		m.fetchNotifications(),
	)
}

// logout tears down the session and returns to the login form.
func (m Model) logout() (tea.Model, tea.Cmd) {
	m.realtime.Disconnect()
	_ = m.session.Logout()
	m.statusMessage = ""
	m.currentView = ViewLogin
	return m, m.loginView.Start()
}

// executeCommand handles a command string from the command palette.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	switch cmd {
	case "refresh", "sync":
		return m, m.refreshCurrentView()
	case "orders", "home":
		m.currentView = ViewOrders
		return m, m.ordersView.LoadRecent()
	case "notifications":
		m.currentView = ViewNotifications
		return m, m.fetchNotifications()
	case "addresses", "address book":
		m.currentView = ViewAddresses
		return m, m.loadAddresses()
	case "fleet", "status":
		m.currentView = ViewFleet
		return m, m.loadFleet()
	case "mark all read":
		return m, m.markAllRead()
	case "logout", "sign out":
		return m.logout()
	case "quit", "q":
		m.realtime.Disconnect()
		return m, tea.Quit
	default:
		return m, nil
	}
}

// refreshCurrentView reloads whatever the active view displays.
func (m Model) refreshCurrentView() tea.Cmd {
	switch m.currentView {
	case ViewOrders:
		return tea.Batch(m.ordersView.LoadRecent(), m.fetchNotifications())
	case ViewNotifications:
		return m.fetchNotifications()
	case ViewAddresses:
		return m.loadAddresses()
	case ViewFleet:
		return m.loadFleet()
	default:
		return nil
	}
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "VanTai Console"
	if unread := m.notify.UnreadCount(); unread > 0 {
		headerTitle = fmt.Sprintf("VanTai Console [%d unread]", unread)
	}
	header := m.layout.RenderHeader(headerTitle, m.sessionStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewLogin:
		return m.loginView.View()
	case ViewOrders:
		return m.ordersView.View()
	case ViewOrderDetail:
		return m.detailView.View()
	case ViewNotifications:
		return m.notifList.View()
	case ViewNotificationDetail:
		return m.notifDetail.View()
	case ViewAddresses:
		return m.addressView.View()
	case ViewFleet:
		return m.fleetView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// sessionStatus returns the right-aligned header text describing the
// signed-in user.
func (m Model) sessionStatus() string {
	if m.session.Loading() {
		return "restoring session"
	}
	user := m.session.User()
	if user == nil {
		return "signed out"
	}
	return fmt.Sprintf("%s (%s)", user.Name, user.Role)
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	// A failed mutation takes over the status bar until the next one
	// succeeds.
	if m.statusMessage != "" {
		return m.statusMessage
	}

	switch m.currentView {
	case ViewLogin:
		return "enter submit | tab next field | ctrl+c quit"
	case ViewOrderDetail:
		return "esc back | j/k scroll"
	case ViewNotifications:
		return "enter open | u toggle read | M mark all read | esc back"
	case ViewNotificationDetail:
		return "esc back | j/k scroll"
	case ViewAddresses:
		return "a add | d delete | esc back"
	case ViewFleet:
		return "esc back | j/k scroll"
	case ViewHelp:
		return "? close help"
	case ViewCommand:
		return "enter execute | esc back"
	default:
		if m.ordersView.InSearchMode() {
			return "enter open | esc cancel search"
		}
		return "q quit | ? help | / search | n notifications | b addresses | f fleet"
	}
}

// restoreSession returns a command that validates any persisted token.
func (m Model) restoreSession() tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		err := sess.Restore(context.Background())
		return sessionRestoredMsg{err: err}
	}
}

// doLogin returns a command that runs the login call.
func (m Model) doLogin(email, password string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		err := sess.Login(context.Background(), email, password)
		return loginResultMsg{err: err}
	}
}

// loadCachedNotifications seeds the list from the local cache so the
// console shows last known good data before the first fetch resolves.
func (m Model) loadCachedNotifications() tea.Cmd {
	st := m.notify
	return func() tea.Msg {
		items := st.LoadCached(context.Background())
		return notifications.LoadedMsg{Items: items}
	}
}

// fetchNotifications returns a command that refetches the notification
// list and delivers a fresh snapshot.
func (m Model) fetchNotifications() tea.Cmd {
	st := m.notify
	return func() tea.Msg {
		items := st.Fetch(context.Background())
		return notifications.LoadedMsg{Items: items}
	}
}

// markRead returns a command that marks one notification read.
func (m Model) markRead(id string) tea.Cmd {
	st := m.notify
	return func() tea.Msg {
		return markResultMsg{err: st.MarkRead(context.Background(), id)}
	}
}

// markUnread returns a command that marks one notification unread.
func (m Model) markUnread(id string) tea.Cmd {
	st := m.notify
	return func() tea.Msg {
		return markResultMsg{err: st.MarkUnread(context.Background(), id)}
	}
}

// markAllRead returns a command that issues the bulk mutation.
func (m Model) markAllRead() tea.Cmd {
	st := m.notify
	return func() tea.Msg {
		return markResultMsg{err: st.MarkAllRead(context.Background())}
	}
}

// loadOrder fetches one order and records it as recently viewed.
func (m Model) loadOrder(orderID string) tea.Cmd {
	apiClient := m.api
	cache := m.cache
	return func() tea.Msg {
		ctx := context.Background()
		order, err := apiClient.GetOrder(ctx, orderID)
		if err != nil {
			return orderdetail.LoadedMsg{Err: err}
		}
		if cache != nil {
			// Best effort; a cache write failure never blocks the view.
			_ = cache.RecordOrderViewed(ctx, *order)
		}
		return orderdetail.LoadedMsg{Order: order}
	}
}

// loadAddresses returns a command that fetches the address book.
func (m Model) loadAddresses() tea.Cmd {
	apiClient := m.api
	return func() tea.Msg {
		addrs, err := apiClient.ListAddresses(context.Background())
		return addresses.LoadedMsg{Addresses: addrs, Err: err}
	}
}

// createAddress returns a command that saves a new address book entry.
func (m Model) createAddress(msg addresses.CreateRequestMsg) tea.Cmd {
	apiClient := m.api
	return func() tea.Msg {
		_, err := apiClient.CreateAddress(context.Background(), msg.Address)
		return addressMutatedMsg{err: err}
	}
}

// deleteAddress returns a command that deletes an address book entry.
func (m Model) deleteAddress(id string) tea.Cmd {
	apiClient := m.api
	return func() tea.Msg {
		err := apiClient.DeleteAddress(context.Background(), id)
		return addressMutatedMsg{err: err}
	}
}

// loadFleet returns a command that fetches warehouse and vehicle
// statuses together.
func (m Model) loadFleet() tea.Cmd {
	apiClient := m.api
	return func() tea.Msg {
		ctx := context.Background()
		warehouses, whErr := apiClient.ListWarehouses(ctx)
		vehicles, vErr := apiClient.ListVehicles(ctx)
		err := whErr
		if err == nil {
			err = vErr
		}
		return fleet.LoadedMsg{
			Warehouses: warehouses,
			Vehicles:   vehicles,
			Err:        err,
		}
	}
}
