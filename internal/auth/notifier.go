package auth

import "sync"

// EventType classifies an auth-state transition.
type EventType string

const (
	EventLogin  EventType = "login"
	EventLogout EventType = "logout"
)

// Event describes one auth-state transition.
type Event struct {
	Type   EventType
	UserID int64
	Email  string
}

// StateNotifier is an explicit observer registry for auth-state
// transitions. Subscriber bookkeeping is serialized so notification
// never observes a torn subscriber list, and the returned cancel
// function gives callers a defined teardown path.
type StateNotifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewStateNotifier constructs an empty registry.
func NewStateNotifier() *StateNotifier {
	return &StateNotifier{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns its cancel function. Cancel is
// idempotent.
func (n *StateNotifier) Subscribe(fn func(Event)) func() {
	if fn == nil {
		return func() {}
	}
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, id)
			n.mu.Unlock()
		})
	}
}

// Notify delivers ev to every current subscriber. Callbacks run outside
// the lock so a subscriber may unsubscribe from within its callback.
func (n *StateNotifier) Notify(ev Event) {
	n.mu.Lock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Len reports the current subscriber count.
func (n *StateNotifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
