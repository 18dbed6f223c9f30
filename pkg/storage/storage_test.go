package storage

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Read(ctx, "agents/missing.yaml")
	require.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Exists(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Write(ctx, "agents/b.yaml", []byte("b")))
	require.NoError(t, s.Write(ctx, "agents/a.yaml", []byte("a")))
	require.NoError(t, s.Write(ctx, "vouches/x.yaml", []byte("x")))

	data, err := s.Read(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	ok, err = s.Exists(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.True(t, ok)

	paths, err := s.List(ctx, "agents")
	require.NoError(t, err)
	assert.Equal(t, []string{"agents/a.yaml", "agents/b.yaml"}, paths)

	require.NoError(t, s.Write(ctx, "agents/a.yaml", []byte("a2")))
	data, err = s.Read(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("a2"), data)

	require.NoError(t, s.Delete(ctx, "agents/a.yaml"))
	require.ErrorIs(t, s.Delete(ctx, "agents/a.yaml"), ErrNotFound)
	_, err = s.Read(ctx, "agents/a.yaml")
	require.ErrorIs(t, err, ErrNotFound)

	paths, err = s.List(ctx, "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestLocalStorage(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestLocalStorage_PathsStayUnderBase(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(base)
	require.NoError(t, err)
	assert.Equal(t, s.resolve("agents/a.yaml"), s.resolve("../../agents/a.yaml"))
}

func TestCachedStorage(t *testing.T) {
	s, err := NewCachedStorage(NewMemoryStorage(), 8)
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestCachedStorage_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryStorage()
	s, err := NewCachedStorage(backend, 2)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "agents/a.yaml", []byte("a")))
	assert.Equal(t, 0, s.Len(), "writes do not fill the cache")

	// Mutating the returned slice must not leak into the cache.
	data, err := s.Read(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	data[0] = 'z'
	data, err = s.Read(ctx, "agents/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), data)

	require.NoError(t, s.Delete(ctx, "agents/a.yaml"))
	assert.Equal(t, 0, s.Len())
}

// gatedStorage pauses the first read after it has fetched from the backend.
type gatedStorage struct {
	Storage
	armed   atomic.Bool
	fetched chan struct{}
	release chan struct{}
}

func (g *gatedStorage) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := g.Storage.Read(ctx, path)
	if g.armed.CompareAndSwap(true, false) {
		close(g.fetched)
		<-g.release
	}
	return data, err
}

func TestCachedStorage_ReadRacingWriteDoesNotCacheStaleRecord(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.Write(ctx, "agent/a.yaml", []byte("old")))
	backend := &gatedStorage{Storage: mem, fetched: make(chan struct{}), release: make(chan struct{})}
	backend.armed.Store(true)
	s, err := NewCachedStorage(backend, 4)
	require.NoError(t, err)

	got := make(chan []byte, 1)
	go func() {
		data, err := s.Read(ctx, "agent/a.yaml")
		assert.NoError(t, err)
		got <- data
	}()

	<-backend.fetched
	require.NoError(t, s.Write(ctx, "agent/a.yaml", []byte("new")))
	close(backend.release)
	assert.Equal(t, "old", string(<-got))
	assert.Equal(t, 0, s.Len())

	data, err := s.Read(ctx, "agent/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
	assert.Equal(t, 1, s.Len())
}

type failingStorage struct {
	Storage
	failOn string
}

func (f *failingStorage) Write(ctx context.Context, path string, data []byte) error {
	if path == f.failOn {
		return errors.New("disk full")
	}
	return f.Storage.Write(ctx, path, data)
}

func TestTx_CommitRestoresOnFailedWrite(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.Write(ctx, "agent/a.yaml", []byte("before")))

	backend := &failingStorage{Storage: mem, failOn: "agent/c.yaml"}
	tx := Begin(backend)
	require.NoError(t, tx.Write(ctx, "agent/a.yaml", []byte("after")))
	require.NoError(t, tx.Write(ctx, "agent/b.yaml", []byte("new")))
	require.NoError(t, tx.Write(ctx, "agent/c.yaml", []byte("boom")))
	assert.Equal(t, []string{"agent/a.yaml", "agent/b.yaml", "agent/c.yaml"}, tx.Touched())

	err := tx.Commit(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	data, err := mem.Read(ctx, "agent/a.yaml")
	require.NoError(t, err)
	assert.Equal(t, "before", string(data))
	exists, err := mem.Exists(ctx, "agent/b.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTx_PendingChangesStayOutOfBackendUntilCommit(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	require.NoError(t, mem.Write(ctx, "agent/old.yaml", []byte("old")))
	require.NoError(t, mem.Write(ctx, "agent/keep.yaml", []byte("keep")))

	tx := Begin(mem)
	require.NoError(t, tx.Write(ctx, "agent/new.yaml", []byte("new")))
	require.NoError(t, tx.Write(ctx, "agent/keep.yaml", []byte("kept")))
	require.NoError(t, tx.Delete(ctx, "agent/old.yaml"))
	require.ErrorIs(t, tx.Delete(ctx, "agent/missing.yaml"), ErrNotFound)

	// The Tx sees its own changes.
	data, err := tx.Read(ctx, "agent/keep.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
	_, err = tx.Read(ctx, "agent/old.yaml")
	require.ErrorIs(t, err, ErrNotFound)
	ok, err := tx.Exists(ctx, "agent/new.yaml")
	require.NoError(t, err)
	assert.True(t, ok)
	paths, err := tx.List(ctx, "agent")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent/keep.yaml", "agent/new.yaml"}, paths)

	// The backend does not.
	data, err = mem.Read(ctx, "agent/keep.yaml")
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
	paths, err = mem.List(ctx, "agent")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent/keep.yaml", "agent/old.yaml"}, paths)

	require.NoError(t, tx.Commit(ctx))
	paths, err = mem.List(ctx, "agent")
	require.NoError(t, err)
	assert.Equal(t, []string{"agent/keep.yaml", "agent/new.yaml"}, paths)
	data, err = mem.Read(ctx, "agent/keep.yaml")
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))
}

func TestTx_RollbackDiscardsPendingChanges(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	tx := Begin(mem)
	require.NoError(t, tx.Write(ctx, "vouch/a/b.yaml", []byte("x")))
	tx.Rollback()
	assert.Empty(t, tx.Touched())
	require.NoError(t, tx.Commit(ctx))

	ok, err := mem.Exists(ctx, "vouch/a/b.yaml")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTx_CommitKeepsWrites(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()
	tx := Begin(mem)
	require.NoError(t, tx.Write(ctx, "vouch/a/b.yaml", []byte("x")))
	require.NoError(t, tx.Commit(ctx))

	data, err := mem.Read(ctx, "vouch/a/b.yaml")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
