package notify

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// ChangedMsg is the payload-less "notifications changed" signal. Every
// mounted consumer reacts by refetching; redundant concurrent fetches
// are fine because a fetch is an idempotent read and the store applies
// results in sequence order.
type ChangedMsg struct{}

// subscriberBuffer is 1 so a publish while a consumer is mid-fetch
// coalesces into a single pending signal instead of blocking.
const subscriberBuffer = 1

// Bus is the process-wide broadcast channel for notification changes.
//
// Contract: Publish is called after every successful mark mutation and
// on every server-pushed new-notification event. The signal carries no
// payload; subscribers refetch to observe the new state.
type Bus struct {
	mu   sync.Mutex
	subs []chan struct{}
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new consumer and returns its signal channel.
// Subscribers are never unregistered; the set of consumers is fixed at
// startup (header badge, notification list, realtime bridge).
func (b *Bus) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, subscriberBuffer)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Publish broadcasts the changed signal to every subscriber without
// blocking. A subscriber with a pending signal keeps exactly one.
func (b *Bus) Publish() {
	b.mu.Lock()
	subs := make([]chan struct{}, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending; one refetch covers both.
		}
	}
}

// Wait returns a tea.Cmd that blocks until the next signal on ch and
// then delivers a ChangedMsg. The consumer re-arms by calling Wait
// again after handling the message.
func Wait(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return ChangedMsg{}
	}
}
