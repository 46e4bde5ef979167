package coordinator

import (
	"sync"

	"patchdeck/types"
)

// SelectionSet is a thread-safe set of item keys chosen by the operator.
// Mutations are pure set operations and never trigger network activity.
type SelectionSet struct {
	mu   sync.RWMutex
	keys map[types.ItemKey]struct{}
}

// NewSelectionSet creates an empty selection
func NewSelectionSet() *SelectionSet {
	return &SelectionSet{
		keys: make(map[types.ItemKey]struct{}),
	}
}

// Toggle adds the key if absent and removes it if present
func (s *SelectionSet) Toggle(key types.ItemKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		delete(s.keys, key)
	} else {
		s.keys[key] = struct{}{}
	}
}

// Add puts the key into the selection
func (s *SelectionSet) Add(key types.ItemKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = struct{}{}
}

// AddAll puts every given key into the selection
func (s *SelectionSet) AddAll(keys []types.ItemKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.keys[key] = struct{}{}
	}
}

// Remove drops the key from the selection if present
func (s *SelectionSet) Remove(key types.ItemKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
}

// Clear empties the selection
func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[types.ItemKey]struct{})
}

// IsSelected reports whether the key is currently selected
func (s *SelectionSet) IsSelected(key types.ItemKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.keys[key]
	return ok
}

// Keys returns a snapshot of the selected keys in no particular order
func (s *SelectionSet) Keys() []types.ItemKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ItemKey, 0, len(s.keys))
	for key := range s.keys {
		out = append(out, key)
	}
	return out
}

// Len returns the number of selected keys
func (s *SelectionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
