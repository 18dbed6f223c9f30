package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(storage.NewMemoryStorage())

	_, err := repo.Get(ctx, "alice")
	assert.ErrorIs(t, err, ledgererr.ErrAgentNotRegistered)

	p := &agent.Profile{Owner: "alice", Name: "Alice", IsActive: true, CreatedAt: 5}
	require.NoError(t, repo.Create(ctx, p))
	assert.ErrorIs(t, repo.Create(ctx, p), ledgererr.ErrAgentAlreadyRegistered)

	p.ReputationScore = 1234
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	assert.ErrorIs(t, repo.Update(ctx, &agent.Profile{Owner: "bob"}), ledgererr.ErrAgentNotRegistered)

	require.NoError(t, repo.Create(ctx, &agent.Profile{Owner: "bob"}))
	all, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, all, 1)
	assert.Equal(t, "bob", all[0].Owner.String())
}
