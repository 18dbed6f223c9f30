package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/badge"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(storage.NewMemoryStorage())

	_, err := repo.Get(ctx, "alice")
	assert.ErrorIs(t, err, ledgererr.ErrBadgeNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &badge.Badge{Agent: "alice"}), ledgererr.ErrBadgeNotFound)

	b := &badge.Badge{Agent: "alice", Level: badge.LevelBuilder, ScoreSnapshot: 700, MintedAt: 3}
	require.NoError(t, repo.Create(ctx, b))
	assert.ErrorIs(t, repo.Create(ctx, b), ledgererr.ErrBadgeAlreadyMinted)

	b.Level = badge.LevelGuardian
	b.UpgradedAt = 9
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, b, got)
}
