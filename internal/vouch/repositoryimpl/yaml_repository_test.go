package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/vouch"
	"github.com/agentrep/trustledger/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(storage.NewMemoryStorage())

	_, err := repo.Get(ctx, "alice", "bob")
	assert.ErrorIs(t, err, ledgererr.ErrVouchNotFound)

	a := &vouch.Record{Voucher: "alice", VouchedFor: "bob", BaseAmount: 10, TrustWeight: 10_000, IsPositive: true}
	c := &vouch.Record{Voucher: "carol", VouchedFor: "bob", BaseAmount: 20, TrustWeight: 15_000}
	other := &vouch.Record{Voucher: "alice", VouchedFor: "dave", BaseAmount: 5}
	for _, r := range []*vouch.Record{c, a, other} {
		require.NoError(t, repo.Put(ctx, r))
	}

	got, err := repo.Get(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, a, got)

	incoming, err := repo.ListByTarget(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []*vouch.Record{a, c}, incoming)

	require.NoError(t, repo.Delete(ctx, "alice", "bob"))
	assert.ErrorIs(t, repo.Delete(ctx, "alice", "bob"), ledgererr.ErrVouchNotFound)

	incoming, err = repo.ListByTarget(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []*vouch.Record{c}, incoming)
}
