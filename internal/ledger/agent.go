package ledger

import (
	"context"
	"strconv"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
)

func (l *Ledger) RegisterAgent(ctx context.Context, owner identity.ID, name string) (*agent.Profile, error) {
	if err := validIDs(owner); err != nil {
		return nil, err
	}
	var out agent.Profile
	err := l.transact(ctx, "RegisterAgent", []string{agentKey(owner)}, func(u *unit) error {
		p, err := agent.New(owner, name, u.now)
		if err != nil {
			return err
		}
		if err := u.agents.Create(ctx, &p); err != nil {
			return err
		}
		out = p
		u.emit(eventbus.TypeAgentRegistered, owner.String(), map[string]string{"name": name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) CompleteTask(ctx context.Context, owner identity.ID, taskID string, amount uint64) (*agent.Profile, error) {
	if err := validIDs(owner); err != nil {
		return nil, err
	}
	var out agent.Profile
	err := l.transact(ctx, "CompleteTask", []string{agentKey(owner)}, func(u *unit) error {
		p, err := u.agents.Get(ctx, owner)
		if err != nil {
			return err
		}
		next, err := agent.CompleteTask(*p, taskID, amount, u.now)
		if err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &next); err != nil {
			return err
		}
		out = next
		u.emit(eventbus.TypeTaskCompleted, owner.String(), map[string]string{
			"task_id": taskID,
			"amount":  strconv.FormatUint(amount, 10),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) GetAgent(ctx context.Context, owner identity.ID) (*agent.Profile, error) {
	if err := validIDs(owner); err != nil {
		return nil, err
	}
	defer l.reading(agentKey(owner))()
	return l.view().agents.Get(ctx, owner)
}

func (l *Ledger) GetReputation(ctx context.Context, owner identity.ID) (uint64, error) {
	p, err := l.GetAgent(ctx, owner)
	if err != nil {
		return 0, err
	}
	return p.ReputationScore, nil
}

func (l *Ledger) ListAgents(ctx context.Context, limit, offset int) ([]*agent.Profile, int, error) {
	return l.view().agents.List(ctx, limit, offset)
}
