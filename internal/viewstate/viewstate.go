// Package viewstate remembers which task groups the user has expanded.
package viewstate

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
)

// Key returns the stable identifier for the group named name.
// It depends only on the name, so expansion survives reordering between refreshes.
func Key(name string) string {
	sum := sha256.Sum256([]byte(name))
	return "group-" + hex.EncodeToString(sum[:])[:12]
}

// Set is the session-lifetime set of expanded group keys.
// The zero value is an empty set ready to use.
type Set struct {
	mu       sync.RWMutex
	expanded map[string]struct{}
}

func New() *Set {
	return &Set{expanded: map[string]struct{}{}}
}

func (s *Set) Has(key string) bool {
	if s == nil {
		return false
	}
	s.mu.RLock()
	_, ok := s.expanded[key]
	s.mu.RUnlock()
	return ok
}

// Toggle flips the group's expansion and returns the new state (true = expanded).
func (s *Set) Toggle(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expanded == nil {
		s.expanded = map[string]struct{}{}
	}
	if _, ok := s.expanded[key]; ok {
		delete(s.expanded, key)
		return false
	}
	s.expanded[key] = struct{}{}
	return true
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expanded)
}

// Keys returns the expanded keys in sorted order.
func (s *Set) Keys() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	out := make([]string, 0, len(s.expanded))
	for k := range s.expanded {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}
