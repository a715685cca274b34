// Package store is the process-wide application state container. All changes
// go through Dispatch, which applies the pure Reduce function under a lock and
// then notifies subscribers.
package store

import (
	"sync"

	"pizzatrack/internal/models"
)

// Listener is called after every dispatch with the new state. Listeners run
// on the dispatching goroutine and must not block or dispatch.
type Listener func(State, Action)

type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
	dispatch  sync.Mutex
}

func New(initial State) *Store {
	return &Store{state: initial, listeners: make(map[int]Listener)}
}

func (s *Store) Dispatch(a Action) {
	// serialises reduce + notify so listeners observe actions in order
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next, a)
	}
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// State returns a snapshot. Reduce never mutates slices in place, so the
// snapshot stays stable while later dispatches happen.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Settings() models.Settings {
	return s.State().Settings
}

func (s *Store) Order(id string) (models.Order, bool) {
	for _, o := range s.State().Orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func (s *Store) Deliverer(id string) (models.Deliverer, bool) {
	for _, d := range s.State().Deliverers {
		if d.ID == id {
			return d, true
		}
	}
	return models.Deliverer{}, false
}

func (s *Store) Product(id string) (models.Product, bool) {
	for _, p := range s.State().Products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
