package cache

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used when Redis is not configured
type MemoryStore struct {
	mu     sync.Mutex
	values map[string][]byte
	tags   map[string]map[string]struct{}
	gens   map[string]int64
}

// NewMemoryStore creates an empty in-process cache
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		tags:   make(map[string]map[string]struct{}),
		gens:   make(map[string]int64),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key string, value []byte, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	for _, tag := range tags {
		members, ok := s.tags[tag]
		if !ok {
			members = make(map[string]struct{})
			s.tags[tag] = members
		}
		members[key] = struct{}{}
	}
	return nil
}

func (s *MemoryStore) Invalidate(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[tag]++
	for key := range s.tags[tag] {
		delete(s.values, key)
	}
	delete(s.tags, tag)
	return nil
}

func (s *MemoryStore) Generation(ctx context.Context, tag string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[tag], nil
}

func (s *MemoryStore) Health(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
