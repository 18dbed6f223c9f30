// Package governance runs the proposal lifecycle that gates changes to the
// protocol parameters: create, vote, execute.
package governance

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/clock"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

const (
	MinProposerReputation uint64 = 1_000
	MinVoterReputation    uint64 = 100
	Quorum                uint64 = 10_000
	VotingPeriod                 = 3 * clock.Day
	MaxDescriptionLen            = 200
)

// Create opens a proposal and casts the proposer's own vote for it.
func Create(id string, proposer agent.Profile, typ ProposalType, newValue uint64, description string, now int64) (Proposal, Vote, error) {
	if proposer.ReputationScore < MinProposerReputation {
		return Proposal{}, Vote{}, ledgererr.ErrInsufficientReputation
	}
	if len(description) > MaxDescriptionLen {
		return Proposal{}, Vote{}, ledgererr.ErrDescriptionTooLong
	}
	if _, err := ParseProposalType(string(typ)); err != nil {
		return Proposal{}, Vote{}, err
	}
	endsAt, err := fixedpoint.CheckedAddInt64(now, VotingPeriod)
	if err != nil {
		return Proposal{}, Vote{}, ledgererr.ErrMathOverflow
	}
	p := Proposal{
		ID:           id,
		Proposer:     proposer.Owner,
		Type:         typ,
		NewValue:     newValue,
		Description:  description,
		VotesFor:     proposer.ReputationScore,
		VotingEndsAt: endsAt,
		CreatedAt:    now,
	}
	v := Vote{
		ProposalID: id,
		Voter:      proposer.Owner,
		VoteWeight: proposer.ReputationScore,
		IsFor:      true,
		VotedAt:    now,
	}
	return p, v, nil
}

// CastVote adds voter's current score to one side. Uniqueness of the
// (proposal, voter) pair is enforced where the vote is stored.
func CastVote(p Proposal, voter agent.Profile, isFor bool, now int64) (Proposal, Vote, error) {
	if now >= p.VotingEndsAt {
		return p, Vote{}, ledgererr.ErrVotingPeriodEnded
	}
	if p.Executed {
		return p, Vote{}, ledgererr.ErrProposalAlreadyExecuted
	}
	if voter.ReputationScore < MinVoterReputation {
		return p, Vote{}, ledgererr.ErrInsufficientReputation
	}
	v := Vote{
		ProposalID: p.ID,
		Voter:      voter.Owner,
		VoteWeight: voter.ReputationScore,
		IsFor:      isFor,
		VotedAt:    now,
	}
	if isFor {
		p.VotesFor = fixedpoint.Add(p.VotesFor, v.VoteWeight)
	} else {
		p.VotesAgainst = fixedpoint.Add(p.VotesAgainst, v.VoteWeight)
	}
	return p, v, nil
}

// Execute closes a passed proposal and returns the amendment to store. It
// fails, leaving p untouched, unless voting has closed, quorum is met, the
// for side strictly outweighs the against side and the new value is in
// bounds.
func Execute(p Proposal, current protocol.Config, now int64) (Proposal, protocol.Amendment, error) {
	if now < p.VotingEndsAt {
		return p, protocol.Amendment{}, ledgererr.ErrVotingPeriodActive
	}
	if p.Executed {
		return p, protocol.Amendment{}, ledgererr.ErrProposalAlreadyExecuted
	}
	if fixedpoint.Add(p.VotesFor, p.VotesAgainst) < Quorum {
		return p, protocol.Amendment{}, ledgererr.ErrQuorumNotReached
	}
	if p.VotesFor <= p.VotesAgainst {
		return p, protocol.Amendment{}, ledgererr.ErrProposalRejected
	}
	after, err := Apply(current.Params, p.Type, p.NewValue)
	if err != nil {
		return p, protocol.Amendment{}, err
	}
	p.Executed = true
	p.ExecutedAt = now
	return p, protocol.Amendment{
		ProposalID:   p.ID,
		BaseRevision: current.Revision,
		Before:       current.Params,
		After:        after,
		At:           now,
	}, nil
}

// Apply returns params with the parameter named by typ set to v. Each target
// carries its own bound.
func Apply(params protocol.Params, typ ProposalType, v uint64) (protocol.Params, error) {
	switch typ {
	case UpdateMinReputationForVouching:
		params.MinReputationForVouching = v
	case UpdateDecayRate:
		if v > protocol.MaxDecayRatePerDay {
			return params, fmt.Errorf("decay rate %d above %d: %w", v, protocol.MaxDecayRatePerDay, ledgererr.ErrInvalidParameter)
		}
		params.DecayRatePerDay = v
	case UpdateVouchLockupPeriod:
		if v > protocol.MaxVouchLockupSeconds {
			return params, fmt.Errorf("lockup period %d out of range: %w", v, ledgererr.ErrInvalidParameter)
		}
		params.VouchLockupPeriod = int64(v)
	case UpdateSlashThreshold:
		if v > protocol.MaxSlashThreshold {
			return params, fmt.Errorf("slash threshold %d above %d: %w", v, protocol.MaxSlashThreshold, ledgererr.ErrInvalidParameter)
		}
		params.SlashThreshold = v
	case UpdateMaxTrustMultiplier:
		if v < protocol.MinTrustMultiplier || v > protocol.MaxTrustMultiplier {
			return params, fmt.Errorf("trust multiplier %d outside [%d, %d]: %w", v, protocol.MinTrustMultiplier, protocol.MaxTrustMultiplier, ledgererr.ErrInvalidParameter)
		}
		params.MaxTrustMultiplier = v
	default:
		return params, fmt.Errorf("unknown proposal type %q: %w", typ, ledgererr.ErrInvalidParameter)
	}
	return params, nil
}

// StatusAt derives the lifecycle state of p at now.
func StatusAt(p Proposal, now int64) Status {
	switch {
	case p.Executed:
		return StatusExecuted
	case now < p.VotingEndsAt:
		return StatusOpen
	case fixedpoint.Add(p.VotesFor, p.VotesAgainst) >= Quorum && p.VotesFor > p.VotesAgainst:
		return StatusPassed
	default:
		return StatusRejected
	}
}
