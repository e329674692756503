package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func drained(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return false
	default:
		return true
	}
}

func TestBusPublishReachesEverySubscriber(t *testing.T) {
	b := NewBus()
	a := b.Subscribe()
	c := b.Subscribe()

	b.Publish()

	assert.False(t, drained(a), "first subscriber missed the signal")
	assert.False(t, drained(c), "second subscriber missed the signal")
}

func TestBusPublishNeverBlocks(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()

	// A subscriber that is not draining must not stall publishers; the
	// pending signals coalesce into one.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}

	<-ch
	assert.True(t, drained(ch), "coalesced signals should leave one pending at most")
}

func TestWaitDeliversChangedMsg(t *testing.T) {
	b := NewBus()
	ch := b.Subscribe()

	result := make(chan struct{})
	go func() {
		msg := Wait(ch)()
		assert.IsType(t, ChangedMsg{}, msg)
		close(result)
	}()

	b.Publish()

	select {
	case <-result:
	case <-time.After(time.Second):
		t.Fatal("Wait did not resolve after Publish")
	}
}
