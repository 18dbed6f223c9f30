package ledger

import (
	"context"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/governance"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/protocol"
)

func proposalKey(id string) string {
	return identity.Key(identity.NamespaceProposal, id)
}

// CreateProposal opens a proposal and records the proposer's vote for it.
func (l *Ledger) CreateProposal(ctx context.Context, proposer identity.ID, typ governance.ProposalType, newValue uint64, description string) (*governance.Proposal, error) {
	if err := validIDs(proposer); err != nil {
		return nil, err
	}
	id := ulid.Make().String()
	var out governance.Proposal
	err := l.transact(ctx, "CreateProposal", []string{agentKey(proposer), proposalKey(id)}, func(u *unit) error {
		p, err := u.agents.Get(ctx, proposer)
		if err != nil {
			return err
		}
		prop, vote, err := governance.Create(id, *p, typ, newValue, description, u.now)
		if err != nil {
			return err
		}
		if err := u.proposals.Create(ctx, &prop); err != nil {
			return err
		}
		if err := u.votes.Create(ctx, &vote); err != nil {
			return err
		}
		out = prop
		u.emit(eventbus.TypeProposalCreated, id, map[string]string{
			"proposer":  proposer.String(),
			"type":      string(typ),
			"new_value": strconv.FormatUint(newValue, 10),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CastVote adds voter's current score to one side of an open proposal. A
// voter votes once per proposal.
func (l *Ledger) CastVote(ctx context.Context, proposalID string, voter identity.ID, isFor bool) (*governance.Proposal, error) {
	if err := validIDs(voter, identity.ID(proposalID)); err != nil {
		return nil, err
	}
	var out governance.Proposal
	err := l.transact(ctx, "CastVote", []string{agentKey(voter), proposalKey(proposalID)}, func(u *unit) error {
		prop, err := u.proposals.Get(ctx, proposalID)
		if err != nil {
			return err
		}
		v, err := u.agents.Get(ctx, voter)
		if err != nil {
			return err
		}
		next, vote, err := governance.CastVote(*prop, *v, isFor, u.now)
		if err != nil {
			return err
		}
		if err := u.votes.Create(ctx, &vote); err != nil {
			return err
		}
		if err := u.proposals.Update(ctx, &next); err != nil {
			return err
		}
		out = next
		u.emit(eventbus.TypeVoteCast, proposalID, map[string]string{
			"voter":  voter.String(),
			"for":    strconv.FormatBool(isFor),
			"weight": strconv.FormatUint(vote.VoteWeight, 10),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteProposal applies a passed proposal to the protocol configuration.
// The proposal and the configuration change together or not at all.
func (l *Ledger) ExecuteProposal(ctx context.Context, proposalID string) (*governance.Proposal, *protocol.Config, error) {
	if err := validIDs(identity.ID(proposalID)); err != nil {
		return nil, nil, err
	}
	var (
		outProp governance.Proposal
		outCfg  protocol.Config
	)
	err := l.transact(ctx, "ExecuteProposal", []string{protocolKey, proposalKey(proposalID)}, func(u *unit) error {
		prop, err := u.proposals.Get(ctx, proposalID)
		if err != nil {
			return err
		}
		cfg, err := u.protocol.Get(ctx)
		if err != nil {
			return err
		}
		next, amendment, err := governance.Execute(*prop, *cfg, u.now)
		if err != nil {
			return err
		}
		amended, err := u.protocol.Amend(ctx, amendment)
		if err != nil {
			return err
		}
		if err := u.proposals.Update(ctx, &next); err != nil {
			return err
		}
		outProp, outCfg = next, *amended
		u.emit(eventbus.TypeProposalExecuted, proposalID, map[string]string{
			"type":      string(next.Type),
			"new_value": strconv.FormatUint(next.NewValue, 10),
			"revision":  strconv.FormatUint(amended.Revision, 10),
		})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &outProp, &outCfg, nil
}

// ProposalView is a proposal with its status at read time.
type ProposalView struct {
	*governance.Proposal
	Status governance.Status `json:"status"`
}

func (l *Ledger) GetProposal(ctx context.Context, proposalID string) (*ProposalView, error) {
	if err := validIDs(identity.ID(proposalID)); err != nil {
		return nil, err
	}
	unlock := l.reading(proposalKey(proposalID))
	p, err := l.view().proposals.Get(ctx, proposalID)
	unlock()
	if err != nil {
		return nil, err
	}
	return &ProposalView{Proposal: p, Status: governance.StatusAt(*p, l.clock.Now())}, nil
}

func (l *Ledger) ListProposals(ctx context.Context, limit, offset int) ([]*ProposalView, int, error) {
	ps, total, err := l.view().proposals.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	now := l.clock.Now()
	out := make([]*ProposalView, len(ps))
	for i, p := range ps {
		out[i] = &ProposalView{Proposal: p, Status: governance.StatusAt(*p, now)}
	}
	return out, total, nil
}

func (l *Ledger) ListVotes(ctx context.Context, proposalID string) ([]*governance.Vote, error) {
	if err := validIDs(identity.ID(proposalID)); err != nil {
		return nil, err
	}
	return l.view().votes.ListByProposal(ctx, proposalID)
}

// PreviewProposal renders the parameter change a proposal would make
// against the current configuration.
func (l *Ledger) PreviewProposal(ctx context.Context, proposalID string) (string, error) {
	if err := validIDs(identity.ID(proposalID)); err != nil {
		return "", err
	}
	defer l.reading(protocolKey, proposalKey(proposalID))()
	r := l.view()
	p, err := r.proposals.Get(ctx, proposalID)
	if err != nil {
		return "", err
	}
	cfg, err := r.protocol.Get(ctx)
	if err != nil {
		return "", err
	}
	return governance.Preview(*p, cfg.Params)
}
