package dedup

import (
	"context"
	"sync"

	"github.com/matzehuels/trigen/pkg/bucket"
	"github.com/matzehuels/trigen/pkg/canon"
)

// MemoryFactory keeps every bucket's certificates in process memory.
type MemoryFactory struct {
	mu      sync.Mutex
	buckets map[bucket.Bucket]*MemoryStore
}

// NewMemoryFactory returns an empty in-memory factory.
func NewMemoryFactory() *MemoryFactory {
	return &MemoryFactory{buckets: make(map[bucket.Bucket]*MemoryStore)}
}

// Backend implements StoreFactory.
func (*MemoryFactory) Backend() string { return "memory" }

// Open implements StoreFactory.
func (f *MemoryFactory) Open(_ context.Context, b bucket.Bucket) (Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.buckets[b]
	if !ok {
		s = &MemoryStore{seen: make(map[canon.Certificate]struct{})}
		f.buckets[b] = s
	}
	return s, nil
}

// Close implements StoreFactory.
func (f *MemoryFactory) Close() error {
	f.mu.Lock()
	f.buckets = make(map[bucket.Bucket]*MemoryStore)
	f.mu.Unlock()
	return nil
}

// MemoryStore is a mutex-guarded certificate set.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[canon.Certificate]struct{}
}

// Admit implements Store.
func (s *MemoryStore) Admit(_ context.Context, cert canon.Certificate) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.seen[cert]; dup {
		return false, nil
	}
	s.seen[cert] = struct{}{}
	return true, nil
}

// Len implements Store.
func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen), nil
}

// Close implements Store. The admitted set stays with the factory.
func (s *MemoryStore) Close() error { return nil }
