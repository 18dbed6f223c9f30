package agent

import "github.com/agentrep/trustledger/internal/identity"

const (
	MaxNameLen   = 50
	MaxTaskIDLen = 64
	// MaxTaskReward caps a single self-reported task completion.
	MaxTaskReward uint64 = 100
	// MinActiveReputation is the floor below which a profile is deactivated.
	MinActiveReputation uint64 = 100
)

type Profile struct {
	Owner                 identity.ID `yaml:"owner" json:"owner"`
	Name                  string      `yaml:"name" json:"name"`
	ReputationScore       uint64      `yaml:"reputation_score" json:"reputation_score"`
	TotalTasksCompleted   uint64      `yaml:"total_tasks_completed" json:"total_tasks_completed"`
	LastActivityTimestamp int64       `yaml:"last_activity_timestamp" json:"last_activity_timestamp"`
	LastDecayTimestamp    int64       `yaml:"last_decay_timestamp" json:"last_decay_timestamp"`
	IsActive              bool        `yaml:"is_active" json:"is_active"`
	PositiveVouches       uint64      `yaml:"positive_vouches" json:"positive_vouches"`
	NegativeVouches       uint64      `yaml:"negative_vouches" json:"negative_vouches"`
	StakedAmount          uint64      `yaml:"staked_amount" json:"staked_amount"`
	CreatedAt             int64       `yaml:"created_at" json:"created_at"`
}
