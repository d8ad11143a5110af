// Package inmemory is a map-backed kv.Store that lives as long as the
// process. It is the default backend for tests and the CLI's throwaway runs.
package inmemory

import (
	"context"
	"slices"
	"sync"

	"github.com/leofalp/sqlcopilot/providers/kv"
)

// Store guards a map with an RWMutex; reads dominate.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ kv.Store = (*Store)(nil)

func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Get returns a copy of the stored value so callers cannot mutate it.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return slices.Clone(value), nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = slices.Clone(value)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Len reports how many keys are stored.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}
