package ledger

import (
	"log/slog"
	"sync"
)

// Listener is notified after every dispatch with the states on either side of it.
type Listener func(prev, next State, action Action)

// Store owns the live ledger state. Create one at startup and share the pointer.
type Store struct {
	listeners []subscription
	state     State
	nextID    int
	mu        sync.Mutex
}

type subscription struct {
	fn Listener
	id int
}

// NewStore creates a store holding a private copy of initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial.Clone(),
	}
}

// State returns a snapshot that callers may read or modify freely.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies one action and returns a snapshot of the resulting state.
// Dispatches never overlap; listeners run after the new state is installed.
func (s *Store) Dispatch(action Action) State {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, action)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, sub := range s.listeners {
		listeners = append(listeners, sub.fn)
	}
	s.mu.Unlock()

	if action != nil {
		slog.Debug("dispatched action",
			"type", action.Type(),
			"records", len(next.Records),
			"accounts", len(next.Accounts),
			"categories", len(next.Categories),
			"budgets", len(next.Budgets))
	}

	for _, l := range listeners {
		l(prev.Clone(), next.Clone(), action)
	}

	return next.Clone()
}

// Subscribe registers a listener and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}
