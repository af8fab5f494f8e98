package upload

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"

	"github.com/matzehuels/surveyplot/pkg/observability"
)

const backendMemory = "memory"

// MemoryStore keeps the most recently used uploads in memory. When the
// store is full the least recently used upload is dropped.
type MemoryStore struct {
	mu  sync.Mutex
	lru *simplelru.LRU
}

// NewMemoryStore creates a store holding at most capacity uploads.
func NewMemoryStore(capacity int) (*MemoryStore, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	lru, err := simplelru.NewLRU(capacity /*no onEvict policy*/, nil)
	if err != nil {
		return nil, fmt.Errorf("create upload lru: %w", err)
	}
	return &MemoryStore{lru: lru}, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.lru.Get(id)
	if !ok {
		observability.Upload().OnUploadMiss(ctx, backendMemory)
		return nil, ErrNotFound
	}
	u, ok := v.(*Upload)
	if !ok {
		return nil, fmt.Errorf("upload %s: unexpected entry %T", id, v)
	}
	if u.IsExpired() {
		s.lru.Remove(id)
		observability.Upload().OnUploadMiss(ctx, backendMemory)
		return nil, ErrNotFound
	}
	observability.Upload().OnUploadHit(ctx, backendMemory)
	return u, nil
}

func (s *MemoryStore) Set(ctx context.Context, u *Upload) error {
	if err := ValidateID(u.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Add(u.ID, u)
	observability.Upload().OnUploadStore(ctx, backendMemory, len(u.Data))
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Remove(id)
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range s.lru.Keys() {
		v, ok := s.lru.Peek(k)
		if !ok {
			continue
		}
		if u, ok := v.(*Upload); !ok || u.IsExpired() {
			s.lru.Remove(k)
		}
	}
	return nil
}

// Len returns the number of stored uploads, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru.Len()
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
