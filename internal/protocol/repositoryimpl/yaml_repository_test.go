package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(storage.NewMemoryStorage())

	_, err := repo.Get(ctx)
	assert.True(t, cerr.IsCode(err, cerr.FailedPrecondition))

	initial := &protocol.Config{Params: protocol.DefaultParams(), UpdatedAt: 1}
	require.NoError(t, repo.Initialize(ctx, initial))
	assert.True(t, cerr.IsCode(repo.Initialize(ctx, initial), cerr.AlreadyExists))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, initial, got)

	after := initial.Params
	after.DecayRatePerDay = 300
	next, err := repo.Amend(ctx, protocol.Amendment{ProposalID: "p1", BaseRevision: 0, Before: initial.Params, After: after, At: 9})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next.Revision)
	assert.Equal(t, "p1", next.LastProposalID)
	assert.Equal(t, uint64(300), next.DecayRatePerDay)

	_, err = repo.Amend(ctx, protocol.Amendment{ProposalID: "p2", BaseRevision: 0, After: after, At: 10})
	assert.True(t, cerr.IsCode(err, cerr.Aborted))

	after.MaxTrustMultiplier = 60_000
	_, err = repo.Amend(ctx, protocol.Amendment{ProposalID: "p3", BaseRevision: 1, After: after, At: 11})
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}
