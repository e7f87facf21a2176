package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateNotifierDeliversToSubscribers(t *testing.T) {
	n := NewStateNotifier()
	var got []Event
	cancel := n.Subscribe(func(ev Event) { got = append(got, ev) })
	defer cancel()

	n.Notify(Event{Type: EventLogin, UserID: 7})
	n.Notify(Event{Type: EventLogout, UserID: 7})

	assert.Len(t, got, 2)
	assert.Equal(t, EventLogin, got[0].Type)
	assert.Equal(t, EventLogout, got[1].Type)
}

func TestStateNotifierUnsubscribe(t *testing.T) {
	n := NewStateNotifier()
	calls := 0
	cancel := n.Subscribe(func(Event) { calls++ })

	n.Notify(Event{Type: EventLogin})
	cancel()
	cancel() // idempotent
	n.Notify(Event{Type: EventLogin})

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, n.Len())
}

func TestStateNotifierUnsubscribeDuringNotify(t *testing.T) {
	n := NewStateNotifier()
	var cancel func()
	calls := 0
	cancel = n.Subscribe(func(Event) {
		calls++
		cancel()
	})

	n.Notify(Event{Type: EventLogout})
	n.Notify(Event{Type: EventLogout})
	assert.Equal(t, 1, calls)
}

func TestStateNotifierConcurrentSubscribers(t *testing.T) {
	n := NewStateNotifier()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cancel := n.Subscribe(func(Event) {})
			n.Notify(Event{Type: EventLogin})
			cancel()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, n.Len())
}
