package config

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/pkg/storage"
)

func TestLoadEnv(t *testing.T) {
	t.Setenv("TRUSTLEDGER_API_KEY", "secret")
	t.Setenv("TRUSTLEDGER_LOG_LEVEL", "warn")
	t.Setenv("TRUSTLEDGER_NATS_URL", "nats://localhost:4222")

	env, err := LoadEnv()
	require.NoError(t, err)
	assert.Equal(t, "local", env.Env)
	assert.Equal(t, "3200", env.HTTPPort)
	assert.Equal(t, ".trustledger/data", env.BaseDir)
	assert.Equal(t, 1024, env.CacheSize)
	assert.Equal(t, "genesis.yaml", env.GenesisFile)
	assert.Equal(t, "nats://localhost:4222", env.NATSURL)
	assert.Equal(t, slog.LevelWarn, env.SlogLevel())
}

func TestLoadEnv_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("TRUSTLEDGER_API_KEY", "")
		require.NoError(t, os.Unsetenv("TRUSTLEDGER_API_KEY"))
		_, err := LoadEnv()
		assert.Error(t, err)
	})
	t.Run("s3 without bucket", func(t *testing.T) {
		t.Setenv("TRUSTLEDGER_API_KEY", "secret")
		t.Setenv("TRUSTLEDGER_STORAGE_TYPE", "s3")
		_, err := LoadEnv()
		assert.Error(t, err)
	})
	t.Run("unknown storage", func(t *testing.T) {
		t.Setenv("TRUSTLEDGER_STORAGE_TYPE", "tape")
		_, err := LoadStorageEnv()
		assert.Error(t, err)
	})
}

func TestSlogLevel_Fallback(t *testing.T) {
	var nilEnv *BaseEnv
	assert.Equal(t, slog.LevelDebug, nilEnv.SlogLevel())
	assert.Equal(t, slog.LevelDebug, (&BaseEnv{LogLevel: "loud"}).SlogLevel())
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	s, err := OpenStorage(ctx, &StorageEnv{Type: "local", BaseDir: dir, CacheSize: 8})
	require.NoError(t, err)
	assert.IsType(t, &storage.CachedStorage{}, s)
	require.NoError(t, s.Write(ctx, "agent/alice.yaml", []byte("owner: alice\n")))

	s, err = OpenStorage(ctx, &StorageEnv{Type: "local", BaseDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &storage.LocalStorage{}, s)
	data, err := s.Read(ctx, "agent/alice.yaml")
	require.NoError(t, err)
	assert.Equal(t, "owner: alice\n", string(data))
}
