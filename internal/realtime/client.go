package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	ws "github.com/coder/websocket"

	"github.com/vantai/console/internal/notify"
)

const (
	dialTimeout      = 10 * time.Second
	pingInterval     = 30 * time.Second
	reconnectBackoff = 5 * time.Second
	maxBackoff       = 60 * time.Second
)

// event is the wire shape of a server-pushed realtime message.
type event struct {
	Event string `json:"event"`
}

// Client maintains the optional realtime push connection. When the
// server announces a new notification, the client publishes the same
// "notifications changed" signal the mark mutations use, so polling and
// push consumers share one synchronization path.
//
// Lifecycle: Connect after a session is established, Disconnect on
// logout. The connection reconnects with backoff until disconnected.
type Client struct {
	url string
	bus *notify.Bus

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a realtime client for the given websocket URL. An empty
// URL yields a client whose Connect is a no-op; the console then relies
// on broadcast-and-refetch alone.
func New(url string, bus *notify.Bus) *Client {
	return &Client{url: url, bus: bus}
}

// Connect starts the connection loop authenticated with the given
// token. Calling Connect while connected restarts the loop with the
// new token.
func (c *Client) Connect(token string) {
	if c.url == "" {
		return
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(ctx, token)
}

// Disconnect stops the connection loop and closes the socket.
func (c *Client) Disconnect() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
}

// run dials, pumps messages, and reconnects with growing backoff until
// the context is cancelled.
func (c *Client) run(ctx context.Context, token string) {
	backoff := reconnectBackoff

	for {
		if err := c.pump(ctx, token); err == nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// pump maintains a single connection: it reads events and publishes the
// changed signal for each new-notification announcement. It returns nil
// only when the context is done.
func (c *Client) pump(ctx context.Context, token string) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := ws.Dial(dialCtx, c.url, &ws.DialOptions{
		HTTPHeader: http.Header{
			"Authorization": []string{"Bearer " + token},
		},
	})
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	pingCtx, stopPing := context.WithCancel(ctx)
	defer stopPing()
	go c.pingLoop(pingCtx, conn)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		if ev.Event == "notification.new" {
			c.bus.Publish()
		}
	}
}

// pingLoop sends periodic pings to detect stale connections.
func (c *Client) pingLoop(ctx context.Context, conn *ws.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
