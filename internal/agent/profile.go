package agent

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

// New returns a freshly registered profile with a zero score.
func New(owner identity.ID, name string, now int64) (Profile, error) {
	if err := owner.Validate(); err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ledgererr.ErrInvalidParameter, err)
	}
	if len(name) > MaxNameLen {
		return Profile{}, ledgererr.ErrNameTooLong
	}
	return Profile{
		Owner:                 owner,
		Name:                  name,
		IsActive:              true,
		LastActivityTimestamp: now,
		CreatedAt:             now,
	}, nil
}

// CompleteTask credits a self-reported task.
func CompleteTask(p Profile, taskID string, amount uint64, now int64) (Profile, error) {
	if len(taskID) > MaxTaskIDLen {
		return p, ledgererr.ErrTaskIDTooLong
	}
	if amount == 0 || amount > MaxTaskReward {
		return p, ledgererr.ErrInvalidReputationAmount
	}
	if !p.IsActive {
		return p, ledgererr.ErrAgentInactive
	}
	p.ReputationScore = fixedpoint.Add(p.ReputationScore, amount)
	p.TotalTasksCompleted = fixedpoint.Add(p.TotalTasksCompleted, 1)
	p.LastActivityTimestamp = now
	return p, nil
}

// Credit adds amount to the score. It never reactivates a profile.
func (p *Profile) Credit(amount uint64) {
	p.ReputationScore = fixedpoint.Add(p.ReputationScore, amount)
}

// Debit subtracts amount, flooring at zero, and deactivates the profile once
// the score falls below MinActiveReputation. It reports whether this call
// deactivated the profile.
func (p *Profile) Debit(amount uint64) (deactivated bool) {
	p.ReputationScore = fixedpoint.Sub(p.ReputationScore, amount)
	if p.IsActive && p.ReputationScore < MinActiveReputation {
		p.IsActive = false
		return true
	}
	return false
}
