package repositoryimpl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/storage"
)

func TestYAMLRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLRepository(storage.NewMemoryStorage())

	p := &governance.Proposal{ID: "01J0000000000000000000000A", Proposer: "alice", Type: governance.UpdateDecayRate, NewValue: 5, VotesFor: 1_000}
	require.NoError(t, repo.Create(ctx, p))
	assert.True(t, cerr.IsCode(repo.Create(ctx, p), cerr.AlreadyExists))

	p.Executed = true
	require.NoError(t, repo.Update(ctx, p))
	got, err := repo.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ledgererr.ErrProposalNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &governance.Proposal{ID: "missing"}), ledgererr.ErrProposalNotFound)

	list, total, err := repo.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, []*governance.Proposal{p}, list)
}

func TestYAMLVoteRepository_OneVotePerVoter(t *testing.T) {
	ctx := context.Background()
	repo := NewYAMLVoteRepository(storage.NewMemoryStorage())

	v := &governance.Vote{ProposalID: "p1", Voter: "bob", VoteWeight: 300, IsFor: true, VotedAt: 5}
	require.NoError(t, repo.Create(ctx, v))

	dup := *v
	dup.IsFor = false
	assert.ErrorIs(t, repo.Create(ctx, &dup), ledgererr.ErrAlreadyVoted)

	require.NoError(t, repo.Create(ctx, &governance.Vote{ProposalID: "p2", Voter: "bob"}))

	got, err := repo.Get(ctx, "p1", "bob")
	require.NoError(t, err)
	assert.Equal(t, v, got)

	votes, err := repo.ListByProposal(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []*governance.Vote{v}, votes)
}
