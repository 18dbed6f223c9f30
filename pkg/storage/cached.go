package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStorage keeps recently read records in an LRU in front of a slower
// backend such as S3. Only reads fill the cache, and only when no write or
// delete started or was in flight while the backend was read; writes and
// deletes evict the entry before and after touching the backend.
type CachedStorage struct {
	backend Storage
	cache   *lru.Cache[string, []byte]

	mu       sync.Mutex
	writes   uint64
	inflight int
}

func NewCachedStorage(backend Storage, size int) (*CachedStorage, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create record cache: %w", err)
	}
	return &CachedStorage{backend: backend, cache: cache}, nil
}

func (s *CachedStorage) Read(ctx context.Context, path string) ([]byte, error) {
	if data, ok := s.cache.Get(path); ok {
		return slices.Clone(data), nil
	}
	s.mu.Lock()
	seen := s.writes
	s.mu.Unlock()

	data, err := s.backend.Read(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.writes == seen && s.inflight == 0 {
		s.cache.Add(path, slices.Clone(data))
	}
	s.mu.Unlock()
	return data, nil
}

// mutate runs fn against the backend with path evicted on both sides.
func (s *CachedStorage) mutate(path string, fn func() error) error {
	s.mu.Lock()
	s.writes++
	s.inflight++
	s.cache.Remove(path)
	s.mu.Unlock()

	err := fn()

	s.mu.Lock()
	s.writes++
	s.inflight--
	s.cache.Remove(path)
	s.mu.Unlock()
	return err
}

func (s *CachedStorage) Write(ctx context.Context, path string, data []byte) error {
	return s.mutate(path, func() error { return s.backend.Write(ctx, path, data) })
}

func (s *CachedStorage) Delete(ctx context.Context, path string) error {
	return s.mutate(path, func() error { return s.backend.Delete(ctx, path) })
}

func (s *CachedStorage) List(ctx context.Context, prefix string) ([]string, error) {
	return s.backend.List(ctx, prefix)
}

func (s *CachedStorage) Exists(ctx context.Context, path string) (bool, error) {
	if s.cache.Contains(path) {
		return true, nil
	}
	ok, err := s.backend.Exists(ctx, path)
	if err != nil && errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return ok, err
}

// Len reports the number of cached records.
func (s *CachedStorage) Len() int {
	return s.cache.Len()
}
