package store

import (
	"context"
	"sync"
)

// MemoryStore keeps blobs in process memory. It backs tests and the
// "memory" backend used for throwaway sessions.
type MemoryStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	putErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.blobs[name] = append([]byte(nil), data...)
	return nil
}

// FailPuts makes every following Put return err without storing anything.
// A nil err restores normal behaviour.
func (s *MemoryStore) FailPuts(err error) {
	s.mu.Lock()
	s.putErr = err
	s.mu.Unlock()
}

func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, name)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
