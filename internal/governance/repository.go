package governance

import (
	"context"

	"github.com/agentrep/trustledger/internal/identity"
)

type Repository interface {
	Create(ctx context.Context, p *Proposal) error
	// Get fails with ledgererr.ErrProposalNotFound.
	Get(ctx context.Context, id string) (*Proposal, error)
	List(ctx context.Context, limit, offset int) ([]*Proposal, int, error)
	Update(ctx context.Context, p *Proposal) error
}

type VoteRepository interface {
	// Create fails with ledgererr.ErrAlreadyVoted if the voter has a vote on
	// the proposal.
	Create(ctx context.Context, v *Vote) error
	Get(ctx context.Context, proposalID string, voter identity.ID) (*Vote, error)
	ListByProposal(ctx context.Context, proposalID string) ([]*Vote, error)
}
