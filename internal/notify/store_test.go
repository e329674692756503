package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantai/console/internal/model"
)

// listResponse scripts one ListNotifications call. A non-nil gate blocks
// the response until the gate is closed.
type listResponse struct {
	items []model.Notification
	err   error
	gate  chan struct{}
}

// fakeNotifyAPI is a scriptable notify.API.
type fakeNotifyAPI struct {
	mu        sync.Mutex
	responses []listResponse
	calls     int

	markReadIDs   []string
	markUnreadIDs []string
	markAllCalls  int
	markErr       error
}

func (f *fakeNotifyAPI) ListNotifications(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	var resp listResponse
	if idx < len(f.responses) {
		resp = f.responses[idx]
	}
	f.mu.Unlock()

	if resp.gate != nil {
		<-resp.gate
	}
	return resp.items, resp.err
}

func (f *fakeNotifyAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeNotifyAPI) MarkNotificationRead(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.markReadIDs = append(f.markReadIDs, id)
	return nil
}

func (f *fakeNotifyAPI) MarkNotificationUnread(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.markUnreadIDs = append(f.markUnreadIDs, id)
	return nil
}

func (f *fakeNotifyAPI) MarkAllNotificationsRead(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	f.markAllCalls++
	return nil
}

// fakeCache is an in-memory notify.Cache.
type fakeCache struct {
	mu    sync.Mutex
	items []model.Notification
}

func (f *fakeCache) ReplaceNotifications(ctx context.Context, items []model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append([]model.Notification(nil), items...)
	return nil
}

func (f *fakeCache) GetNotifications(ctx context.Context) ([]model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Notification(nil), f.items...), nil
}

func readAt(tm time.Time) *time.Time { return &tm }

func TestFetchReplacesWholesale(t *testing.T) {
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{
			{ID: "n1", Title: "first"},
			{ID: "n2", Title: "second"},
		}},
		{items: []model.Notification{
			{ID: "n3", Title: "third"},
		}},
	}}
	s := NewStore(backend, NewBus(), nil)

	first := s.Fetch(context.Background())
	require.Len(t, first, 2)

	second := s.Fetch(context.Background())
	require.Len(t, second, 1)
	assert.Equal(t, "n3", second[0].ID)
	assert.Len(t, s.Items(), 1)
}

func TestFetchFailureRetainsPreviousList(t *testing.T) {
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{{ID: "n1"}}},
		{err: errors.New("connection refused")},
	}}
	s := NewStore(backend, NewBus(), nil)

	s.Fetch(context.Background())
	items := s.Fetch(context.Background())

	require.Len(t, items, 1)
	assert.Equal(t, "n1", items[0].ID)
}

func TestFetchNormalizes(t *testing.T) {
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{
			{ID: "n1", Category: "shipment_v2"},
		}},
	}}
	s := NewStore(backend, NewBus(), nil)

	items := s.Fetch(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, model.CategoryOrder, items[0].Category)
}

func TestStaleFetchResponseIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{{ID: "old"}}, gate: gate},
		{items: []model.Notification{{ID: "new"}}},
	}}
	s := NewStore(backend, NewBus(), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Fetch(context.Background())
	}()

	// The first request must be in flight before the second is issued.
	require.Eventually(t, func() bool {
		return backend.callCount() == 1
	}, time.Second, time.Millisecond)

	items := s.Fetch(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)

	close(gate)
	wg.Wait()

	// The slow first response resolved after the second; it must not
	// overwrite the newer list.
	final := s.Items()
	require.Len(t, final, 1)
	assert.Equal(t, "new", final[0].ID)
}

func TestUnreadCountIsDerived(t *testing.T) {
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{
			{ID: "n1"},
			{ID: "n2", ReadAt: readAt(time.Now())},
			{ID: "n3", Status: "read"},
			{ID: "n4"},
			{ID: "n5"},
		}},
	}}
	s := NewStore(backend, NewBus(), nil)

	items := s.Fetch(context.Background())
	unread := 0
	for _, n := range items {
		if !n.IsRead() {
			unread++
		}
	}
	assert.Equal(t, unread, s.UnreadCount())
	assert.Equal(t, 3, s.UnreadCount())
}

func TestMarkReadPublishesOnSuccess(t *testing.T) {
	backend := &fakeNotifyAPI{}
	bus := NewBus()
	ch := bus.Subscribe()
	s := NewStore(backend, bus, nil)

	require.NoError(t, s.MarkRead(context.Background(), "n1"))
	assert.Equal(t, []string{"n1"}, backend.markReadIDs)

	select {
	case <-ch:
	default:
		t.Fatal("MarkRead did not broadcast the changed signal")
	}
}

func TestMarkReadTwiceIsIdempotent(t *testing.T) {
	backend := &fakeNotifyAPI{}
	bus := NewBus()
	ch := bus.Subscribe()
	s := NewStore(backend, bus, nil)

	require.NoError(t, s.MarkRead(context.Background(), "n1"))
	<-ch

	// Marking an already-read notification succeeds and broadcasts
	// again; the second signal just triggers another refetch.
	require.NoError(t, s.MarkRead(context.Background(), "n1"))
	assert.Equal(t, []string{"n1", "n1"}, backend.markReadIDs)

	select {
	case <-ch:
	default:
		t.Fatal("the second MarkRead did not broadcast the changed signal")
	}
}

func TestMarkReadFailureReturnsErrorWithoutPublish(t *testing.T) {
	backend := &fakeNotifyAPI{markErr: errors.New("server unavailable")}
	bus := NewBus()
	ch := bus.Subscribe()
	s := NewStore(backend, bus, nil)

	err := s.MarkRead(context.Background(), "n1")
	require.Error(t, err)

	select {
	case <-ch:
		t.Fatal("a failed mutation must not broadcast")
	default:
	}
}

func TestMarkAllReadPublishes(t *testing.T) {
	backend := &fakeNotifyAPI{}
	bus := NewBus()
	ch := bus.Subscribe()
	s := NewStore(backend, bus, nil)

	require.NoError(t, s.MarkAllRead(context.Background()))
	assert.Equal(t, 1, backend.markAllCalls)

	select {
	case <-ch:
	default:
		t.Fatal("MarkAllRead did not broadcast the changed signal")
	}
}

func TestLoadCachedSeedsBeforeFirstFetch(t *testing.T) {
	cache := &fakeCache{items: []model.Notification{{ID: "cached"}}}
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{{ID: "live"}}},
	}}
	s := NewStore(backend, NewBus(), cache)

	seeded := s.LoadCached(context.Background())
	require.Len(t, seeded, 1)
	assert.Equal(t, "cached", seeded[0].ID)

	live := s.Fetch(context.Background())
	require.Len(t, live, 1)
	assert.Equal(t, "live", live[0].ID)

	// Once a live response has been applied, stale disk state never
	// clobbers it.
	after := s.LoadCached(context.Background())
	require.Len(t, after, 1)
	assert.Equal(t, "live", after[0].ID)
}

func TestStaleFetchResponseIsNotPersisted(t *testing.T) {
	gate := make(chan struct{})
	cache := &fakeCache{}
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{{ID: "old"}}, gate: gate},
		{items: []model.Notification{{ID: "new"}}},
	}}
	s := NewStore(backend, NewBus(), cache)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.Fetch(context.Background())
	}()

	require.Eventually(t, func() bool {
		return backend.callCount() == 1
	}, time.Second, time.Millisecond)

	s.Fetch(context.Background())

	close(gate)
	wg.Wait()

	// The slow first response was discarded in memory; the disk cache
	// must not end up holding it either.
	persisted, err := cache.GetNotifications(context.Background())
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, "new", persisted[0].ID)
}

func TestFetchWritesThroughToCache(t *testing.T) {
	cache := &fakeCache{}
	backend := &fakeNotifyAPI{responses: []listResponse{
		{items: []model.Notification{{ID: "n1"}, {ID: "n2"}}},
	}}
	s := NewStore(backend, NewBus(), cache)

	s.Fetch(context.Background())

	persisted, err := cache.GetNotifications(context.Background())
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}
