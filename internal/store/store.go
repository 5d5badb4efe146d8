package store

import (
	"sort"
	"strings"
	"sync"
)

// Subscriber is invoked after every successful Set with the written path
// and the new leaf value.
type Subscriber func(path string, value interface{})

// Store is an injectable reactive state container. Values live in a
// nested map tree addressed by dot-separated paths. All mutation goes
// through Set, which notifies subscribers synchronously in registration
// order. Notifications run outside the lock, so a subscriber may itself
// call Set; two Sets issued in sequence from one goroutine are observed
// in that order.
type Store struct {
	mu     sync.RWMutex
	root   map[string]interface{}
	subs   map[int]Subscriber
	nextID int
}

// New creates a store, optionally seeded with an initial state tree.
func New(initial map[string]interface{}) *Store {
	if initial == nil {
		initial = make(map[string]interface{})
	}
	return &Store{
		root: initial,
		subs: make(map[int]Subscriber),
	}
}

// Get returns the value at the dot-separated path. The second return is
// false when any segment of the path is missing.
func (s *Store) Get(path string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	segments := strings.Split(path, ".")
	current := s.root
	for i, seg := range segments {
		value, ok := current[seg]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// GetString returns the string at path, or the empty string.
func (s *Store) GetString(path string) string {
	if v, ok := s.Get(path); ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

// GetFloat returns the float64 at path, or 0.
func (s *Store) GetFloat(path string) float64 {
	if v, ok := s.Get(path); ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// GetBool returns the bool at path, or false.
func (s *Store) GetBool(path string) bool {
	if v, ok := s.Get(path); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Set writes the leaf value at the dot-separated path, creating missing
// intermediate containers as maps. An intermediate segment that already
// exists as a non-map leaf is overwritten with a fresh map; a Set never
// fails silently. Subscribers are notified synchronously after the write.
func (s *Store) Set(path string, value interface{}) {
	s.mu.Lock()

	segments := strings.Split(path, ".")
	current := s.root
	for _, seg := range segments[:len(segments)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[seg] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value

	// Snapshot subscribers so callbacks can re-enter Set or unsubscribe.
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	callbacks := make([]Subscriber, 0, len(ids))
	for _, id := range ids {
		callbacks = append(callbacks, s.subs[id])
	}
	s.mu.Unlock()

	for _, cb := range callbacks {
		cb(path, value)
	}
}

// Subscribe registers a listener and returns its unsubscribe function.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}
