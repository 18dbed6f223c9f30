package governance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
)

func voter(id identity.ID, score uint64) agent.Profile {
	return agent.Profile{Owner: id, ReputationScore: score, IsActive: true}
}

func TestCreate(t *testing.T) {
	p, v, err := Create("p1", voter("alice", 1_000), UpdateDecayRate, 200, "lower decay", 100)
	require.NoError(t, err)
	assert.Equal(t, Proposal{
		ID:           "p1",
		Proposer:     "alice",
		Type:         UpdateDecayRate,
		NewValue:     200,
		Description:  "lower decay",
		VotesFor:     1_000,
		VotingEndsAt: 100 + VotingPeriod,
		CreatedAt:    100,
	}, p)
	assert.Equal(t, Vote{ProposalID: "p1", Voter: "alice", VoteWeight: 1_000, IsFor: true, VotedAt: 100}, v)
}

func TestCreate_Rejections(t *testing.T) {
	_, _, err := Create("p1", voter("alice", 999), UpdateDecayRate, 1, "", 0)
	assert.ErrorIs(t, err, ledgererr.ErrInsufficientReputation)

	_, _, err = Create("p1", voter("alice", 1_000), UpdateDecayRate, 1, strings.Repeat("d", MaxDescriptionLen+1), 0)
	assert.ErrorIs(t, err, ledgererr.ErrDescriptionTooLong)

	_, _, err = Create("p1", voter("alice", 1_000), ProposalType("update_everything"), 1, "", 0)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}

func TestCastVote(t *testing.T) {
	p, _, err := Create("p1", voter("alice", 1_000), UpdateDecayRate, 200, "", 0)
	require.NoError(t, err)

	p, v, err := CastVote(p, voter("bob", 300), false, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), p.VotesAgainst)
	assert.Equal(t, Vote{ProposalID: "p1", Voter: "bob", VoteWeight: 300, IsFor: false, VotedAt: 10}, v)

	p, _, err = CastVote(p, voter("carol", 100), true, 11)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_100), p.VotesFor)

	_, _, err = CastVote(p, voter("dave", 99), true, 12)
	assert.ErrorIs(t, err, ledgererr.ErrInsufficientReputation)

	_, _, err = CastVote(p, voter("dave", 500), true, p.VotingEndsAt)
	assert.ErrorIs(t, err, ledgererr.ErrVotingPeriodEnded)

	executed := p
	executed.Executed = true
	_, _, err = CastVote(executed, voter("dave", 500), true, 12)
	assert.ErrorIs(t, err, ledgererr.ErrProposalAlreadyExecuted)
}

func closed(votesFor, votesAgainst uint64) Proposal {
	return Proposal{
		ID:           "p1",
		Type:         UpdateDecayRate,
		NewValue:     250,
		VotesFor:     votesFor,
		VotesAgainst: votesAgainst,
		VotingEndsAt: 1_000,
	}
}

func TestExecute_QuorumNotReachedDespiteMajority(t *testing.T) {
	cfg := protocol.Config{Params: protocol.DefaultParams()}
	p := closed(6_000, 3_000)
	out, _, err := Execute(p, cfg, 1_000)
	assert.ErrorIs(t, err, ledgererr.ErrQuorumNotReached)
	assert.Equal(t, p, out)
	assert.Equal(t, StatusRejected, StatusAt(p, 1_000))
}

func TestExecute_ExactlyOnce(t *testing.T) {
	cfg := protocol.Config{Params: protocol.DefaultParams(), Revision: 3}
	p := closed(5_001, 4_999)
	assert.Equal(t, StatusPassed, StatusAt(p, 1_000))

	p, amendment, err := Execute(p, cfg, 1_000)
	require.NoError(t, err)
	assert.True(t, p.Executed)
	assert.Equal(t, int64(1_000), p.ExecutedAt)
	assert.Equal(t, uint64(3), amendment.BaseRevision)
	assert.Equal(t, uint64(250), amendment.After.DecayRatePerDay)
	assert.Equal(t, cfg.Params, amendment.Before)
	assert.Equal(t, StatusExecuted, StatusAt(p, 2_000))

	_, _, err = Execute(p, cfg, 2_000)
	assert.ErrorIs(t, err, ledgererr.ErrProposalAlreadyExecuted)
}

func TestExecute_Rejections(t *testing.T) {
	cfg := protocol.Config{Params: protocol.DefaultParams()}

	_, _, err := Execute(closed(20_000, 0), cfg, 999)
	assert.ErrorIs(t, err, ledgererr.ErrVotingPeriodActive)

	_, _, err = Execute(closed(5_000, 5_000), cfg, 1_000)
	assert.ErrorIs(t, err, ledgererr.ErrProposalRejected)

	bad := closed(20_000, 0)
	bad.NewValue = 1_001
	out, _, err := Execute(bad, cfg, 1_000)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
	assert.False(t, out.Executed)
}

func TestApply(t *testing.T) {
	base := protocol.DefaultParams()
	tests := []struct {
		typ     ProposalType
		value   uint64
		wantErr bool
		check   func(t *testing.T, p protocol.Params)
	}{
		{UpdateMinReputationForVouching, 0, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, uint64(0), p.MinReputationForVouching) }},
		{UpdateDecayRate, 1_000, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, uint64(1_000), p.DecayRatePerDay) }},
		{UpdateDecayRate, 1_001, true, nil},
		{UpdateVouchLockupPeriod, 60, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, int64(60), p.VouchLockupPeriod) }},
		{UpdateVouchLockupPeriod, 1 << 63, true, nil},
		{UpdateSlashThreshold, 10_000, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, uint64(10_000), p.SlashThreshold) }},
		{UpdateSlashThreshold, 10_001, true, nil},
		{UpdateMaxTrustMultiplier, 10_000, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, uint64(10_000), p.MaxTrustMultiplier) }},
		{UpdateMaxTrustMultiplier, 50_000, false, func(t *testing.T, p protocol.Params) { assert.Equal(t, uint64(50_000), p.MaxTrustMultiplier) }},
		{UpdateMaxTrustMultiplier, 9_999, true, nil},
		{UpdateMaxTrustMultiplier, 50_001, true, nil},
	}
	for _, tt := range tests {
		out, err := Apply(base, tt.typ, tt.value)
		if tt.wantErr {
			assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter, "%s=%d", tt.typ, tt.value)
			continue
		}
		require.NoError(t, err, "%s=%d", tt.typ, tt.value)
		tt.check(t, out)
	}
}

func TestParseProposalType(t *testing.T) {
	for _, typ := range ProposalTypes {
		got, err := ParseProposalType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParseProposalType("nope")
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}

func TestPreview(t *testing.T) {
	diff, err := Preview(closed(0, 0), protocol.DefaultParams())
	require.NoError(t, err)
	assert.Contains(t, diff, "-decay_rate_per_day: 100")
	assert.Contains(t, diff, "+decay_rate_per_day: 250")

	bad := closed(0, 0)
	bad.NewValue = 5_000
	_, err = Preview(bad, protocol.DefaultParams())
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}
