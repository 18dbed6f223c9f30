package storage

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// MemoryStorage implements Storage in process memory. It backs tests and
// throwaway local runs.
type MemoryStorage struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{files: make(map[string][]byte)}
}

func normalize(path string) string {
	return strings.TrimPrefix(path, "/")
}

func (s *MemoryStorage) Read(_ context.Context, path string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[normalize(path)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return slices.Clone(data), nil
}

func (s *MemoryStorage) Write(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[normalize(path)] = slices.Clone(data)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := normalize(path)
	if _, ok := s.files[p]; !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	delete(s.files, p)
	return nil
}

func (s *MemoryStorage) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dir := strings.TrimSuffix(normalize(prefix), "/") + "/"
	var paths []string
	for p := range s.files {
		rest, ok := strings.CutPrefix(p, dir)
		if !ok || strings.Contains(rest, "/") {
			continue
		}
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

func (s *MemoryStorage) Exists(_ context.Context, path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[normalize(path)]
	return ok, nil
}
