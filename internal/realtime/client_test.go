package realtime_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vantai/console/internal/notify"
	"github.com/vantai/console/internal/realtime"
)

func TestConnectPublishesOnNewNotificationEvents(t *testing.T) {
	bus := notify.NewBus()
	ch := bus.Subscribe()

	var (
		mu      sync.Mutex
		gotAuth string
	)
	proceed := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotAuth = r.Header.Get("Authorization")
		mu.Unlock()

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(ws.StatusNormalClosure, "")

		ctx := r.Context()

		// An event the console does not care about must not broadcast.
		err = conn.Write(ctx, ws.MessageText, []byte(`{"event":"vehicle.moved"}`))
		if err != nil {
			return
		}

		<-proceed
		conn.Write(ctx, ws.MessageText, []byte(`{"event":"notification.new"}`))
		<-ctx.Done()
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	c := realtime.New(wsURL, bus)
	c.Connect("tok-realtime")
	t.Cleanup(c.Disconnect)

	// Give the irrelevant event time to arrive; it must not signal.
	time.Sleep(100 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("unrelated event broadcast a changed signal")
	default:
	}

	close(proceed)
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("notification.new event did not broadcast")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer tok-realtime", gotAuth)
}

func TestEmptyURLDisablesRealtime(t *testing.T) {
	bus := notify.NewBus()
	c := realtime.New("", bus)

	require.NotPanics(t, func() {
		c.Connect("tok")
		c.Disconnect()
	})
}
