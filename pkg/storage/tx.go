package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

type change struct {
	data    []byte
	deleted bool
}

type preimage struct {
	path    string
	data    []byte
	existed bool
}

// Tx buffers the writes and deletes of one multi-record update. Reads
// through the Tx see its own pending changes; nothing reaches the backend
// until Commit, so an abandoned Tx leaves no trace. Callers serialize
// access to the touched keys.
type Tx struct {
	backend Storage

	mu      sync.Mutex
	order   []string
	pending map[string]change
}

func Begin(backend Storage) *Tx {
	return &Tx{backend: backend, pending: make(map[string]change)}
}


func (t *Tx) lookup(path string) (change, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	c, ok := t.pending[normalize(path)]
	return c, ok
}

func (t *Tx) stage(path string, c change) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := normalize(path)
	if _, ok := t.pending[k]; !ok {
		t.order = append(t.order, k)
	}
	t.pending[k] = c
}

func (t *Tx) Read(ctx context.Context, path string) ([]byte, error) {
	if c, ok := t.lookup(path); ok {
		if c.deleted {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return slices.Clone(c.data), nil
	}
	return t.backend.Read(ctx, path)
}

func (t *Tx) Exists(ctx context.Context, path string) (bool, error) {
	if c, ok := t.lookup(path); ok {
		return !c.deleted, nil
	}
	return t.backend.Exists(ctx, path)
}

// List merges the pending changes directly under prefix into the backend
// listing.
func (t *Tx) List(ctx context.Context, prefix string) ([]string, error) {
	paths, err := t.backend.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	dir := strings.TrimSuffix(normalize(prefix), "/") + "/"

	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if c, ok := t.pending[normalize(p)]; ok && c.deleted {
			continue
		}
		out = append(out, p)
	}
	for _, k := range t.order {
		rest, ok := strings.CutPrefix(k, dir)
		if !ok || strings.Contains(rest, "/") || t.pending[k].deleted {
			continue
		}
		if !slices.ContainsFunc(out, func(p string) bool { return normalize(p) == k }) {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (t *Tx) Write(_ context.Context, path string, data []byte) error {
	t.stage(path, change{data: slices.Clone(data)})
	return nil
}

// Delete fails with ErrNotFound if path exists neither in the backend nor
// among the pending writes.
func (t *Tx) Delete(ctx context.Context, path string) error {
	ok, err := t.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	t.stage(path, change{deleted: true})
	return nil
}

// Commit applies the pending changes in the order they were first made. If
// one fails, the changes already applied are restored from their preimages,
// newest first, and the joined errors are returned.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	order, pending := t.order, t.pending
	t.order, t.pending = nil, make(map[string]change)
	t.mu.Unlock()

	var applied []preimage
	for _, k := range order {
		pre, err := t.snapshot(ctx, k)
		if err == nil {
			c := pending[k]
			if c.deleted {
				err = t.backend.Delete(ctx, k)
				if errors.Is(err, ErrNotFound) {
					err = nil
				}
			} else {
				err = t.backend.Write(ctx, k, c.data)
			}
		}
		if err != nil {
			errs := []error{fmt.Errorf("failed to apply %s: %w", k, err)}
			errs = append(errs, t.restore(ctx, applied)...)
			return errors.Join(errs...)
		}
		applied = append(applied, pre)
	}
	return nil
}

func (t *Tx) snapshot(ctx context.Context, path string) (preimage, error) {
	data, err := t.backend.Read(ctx, path)
	if errors.Is(err, ErrNotFound) {
		return preimage{path: path}, nil
	}
	if err != nil {
		return preimage{}, fmt.Errorf("failed to snapshot %s: %w", path, err)
	}
	return preimage{path: path, data: data, existed: true}, nil
}

func (t *Tx) restore(ctx context.Context, applied []preimage) []error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		p := applied[i]
		var err error
		if p.existed {
			err = t.backend.Write(ctx, p.path, p.data)
		} else {
			err = t.backend.Delete(ctx, p.path)
			if errors.Is(err, ErrNotFound) {
				err = nil
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", p.path, err))
		}
	}
	return errs
}

// Rollback drops the pending changes.
func (t *Tx) Rollback() {
	t.mu.Lock()
	t.order = nil
	t.pending = make(map[string]change)
	t.mu.Unlock()
}

// Touched lists the paths written or deleted so far, in order.
func (t *Tx) Touched() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.order)
}
