package notify

import (
	"context"
	"sync"

	"github.com/vantai/console/internal/model"
)

// API is the subset of the backend client the notification store needs.
type API interface {
	ListNotifications(ctx context.Context) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error
	MarkNotificationUnread(ctx context.Context, id string) error
	MarkAllNotificationsRead(ctx context.Context) error
}

// Cache persists the last known good notification list locally so the
// console has something to show before the first fetch resolves.
type Cache interface {
	ReplaceNotifications(ctx context.Context, items []model.Notification) error
	GetNotifications(ctx context.Context) ([]model.Notification, error)
}

// Store holds the client-side notification cache and its derived unread
// count. The list is replaced wholesale on every successful fetch, in
// server order, never re-sorted. Safe for concurrent use: redundant
// fetches triggered by a broadcast race freely and the newest-issued
// response wins.
type Store struct {
	api   API
	bus   *Bus
	cache Cache

	mu      sync.Mutex
	items   []model.Notification
	issued  uint64
	applied uint64
}

// NewStore creates a notification store. cache may be nil to disable
// local persistence.
func NewStore(api API, bus *Bus, cache Cache) *Store {
	return &Store{
		api:   api,
		bus:   bus,
		cache: cache,
	}
}

// LoadCached seeds the in-memory list from the local cache. It only
// applies when no fetch has resolved yet, so a live response is never
// clobbered by stale disk state.
func (s *Store) LoadCached(ctx context.Context) []model.Notification {
	if s.cache == nil {
		return s.Items()
	}

	cached, err := s.cache.GetNotifications(ctx)
	if err != nil {
		return s.Items()
	}

	s.mu.Lock()
	if s.applied == 0 {
		s.items = normalize(cached)
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	return snapshot
}

// Fetch requests the notification list and replaces the cache wholesale
// with the response. Failures are swallowed: the previous list is
// retained and returned, so the UI always shows last known good data.
// Responses are applied in issue order; a slow stale response never
// overwrites a newer one.
func (s *Store) Fetch(ctx context.Context) []model.Notification {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	items, err := s.api.ListNotifications(ctx)
	if err != nil {
		return s.Items()
	}

	items = normalize(items)

	s.mu.Lock()
	applied := seq > s.applied
	if applied {
		s.applied = seq
		s.items = items
	}
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	// The disk cache follows the same newest-wins rule as the in-memory
	// list: a discarded response is never persisted either.
	if applied && s.cache != nil {
		// Best effort; a cache write failure never surfaces to the UI.
		_ = s.cache.ReplaceNotifications(ctx, snapshot)
	}
	return snapshot
}

// Items returns a copy of the current notification list.
func (s *Store) Items() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// UnreadCount is the number of cached notifications with no read
// marker. It is always derived from the current list; there is no
// independent counter to drift.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.items {
		if !n.IsRead() {
			count++
		}
	}
	return count
}

// MarkRead marks one notification as read on the server. On success the
// changed signal is broadcast so every consumer refetches; the local
// list is not patched optimistically. On failure the error is returned
// to the initiating component only.
func (s *Store) MarkRead(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationRead(ctx, id); err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// MarkUnread marks one notification as unread on the server and
// broadcasts the changed signal on success.
func (s *Store) MarkUnread(ctx context.Context, id string) error {
	if err := s.api.MarkNotificationUnread(ctx, id); err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// MarkAllRead issues the single bulk mutation and broadcasts the
// changed signal on success.
func (s *Store) MarkAllRead(ctx context.Context) error {
	if err := s.api.MarkAllNotificationsRead(ctx); err != nil {
		return err
	}
	s.bus.Publish()
	return nil
}

// snapshotLocked copies the list; callers must hold the lock.
func (s *Store) snapshotLocked() []model.Notification {
	snapshot := make([]model.Notification, len(s.items))
	copy(snapshot, s.items)
	return snapshot
}

// normalize applies ingestion-time cleanup: a nil payload becomes an
// empty list and categories collapse to known values.
func normalize(items []model.Notification) []model.Notification {
	if items == nil {
		return []model.Notification{}
	}
	out := make([]model.Notification, len(items))
	for i, n := range items {
		n.Category = n.Category.Normalize()
		out[i] = n
	}
	return out
}
