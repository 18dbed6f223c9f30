package governance

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type ProposalType string

const (
	UpdateMinReputationForVouching ProposalType = "update_min_reputation_for_vouching"
	UpdateDecayRate                ProposalType = "update_decay_rate"
	UpdateVouchLockupPeriod        ProposalType = "update_vouch_lockup_period"
	UpdateSlashThreshold           ProposalType = "update_slash_threshold"
	UpdateMaxTrustMultiplier       ProposalType = "update_max_trust_multiplier"
)

var ProposalTypes = []ProposalType{
	UpdateMinReputationForVouching,
	UpdateDecayRate,
	UpdateVouchLockupPeriod,
	UpdateSlashThreshold,
	UpdateMaxTrustMultiplier,
}

func ParseProposalType(s string) (ProposalType, error) {
	for _, t := range ProposalTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown proposal type %q: %w", s, ledgererr.ErrInvalidParameter)
}

type Status string

const (
	StatusOpen     Status = "open"
	StatusPassed   Status = "passed"
	StatusRejected Status = "rejected"
	StatusExecuted Status = "executed"
)

type Proposal struct {
	ID           string       `yaml:"id" json:"id"`
	Proposer     identity.ID  `yaml:"proposer" json:"proposer"`
	Type         ProposalType `yaml:"proposal_type" json:"proposal_type"`
	NewValue     uint64       `yaml:"new_value" json:"new_value"`
	Description  string       `yaml:"description" json:"description"`
	VotesFor     uint64       `yaml:"votes_for" json:"votes_for"`
	VotesAgainst uint64       `yaml:"votes_against" json:"votes_against"`
	VotingEndsAt int64        `yaml:"voting_ends_at" json:"voting_ends_at"`
	Executed     bool         `yaml:"executed" json:"executed"`
	CreatedAt    int64        `yaml:"created_at" json:"created_at"`
	ExecutedAt   int64        `yaml:"executed_at,omitempty" json:"executed_at,omitempty"`
}

// Vote is frozen once cast.
type Vote struct {
	ProposalID string      `yaml:"proposal_id" json:"proposal_id"`
	Voter      identity.ID `yaml:"voter" json:"voter"`
	VoteWeight uint64      `yaml:"vote_weight" json:"vote_weight"`
	IsFor      bool        `yaml:"is_for" json:"is_for"`
	VotedAt    int64       `yaml:"voted_at" json:"voted_at"`
}
