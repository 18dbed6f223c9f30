package vouch

import "github.com/agentrep/trustledger/internal/identity"

// Record is the single vouch a voucher holds toward a target. Amounts and
// the voucher snapshot are frozen at the time of the latest vouch;
// LockedStake sums every positive amount escrowed over the record's life.
type Record struct {
	Voucher                 identity.ID `yaml:"voucher" json:"voucher"`
	VouchedFor              identity.ID `yaml:"vouched_for" json:"vouched_for"`
	BaseAmount              uint64      `yaml:"base_amount" json:"base_amount"`
	WeightedAmount          uint64      `yaml:"weighted_amount" json:"weighted_amount"`
	VoucherReputationAtTime uint64      `yaml:"voucher_reputation_at_time" json:"voucher_reputation_at_time"`
	TrustWeight             uint64      `yaml:"trust_weight" json:"trust_weight"`
	IsPositive              bool        `yaml:"is_positive" json:"is_positive"`
	LockedStake             uint64      `yaml:"locked_stake" json:"locked_stake"`
	CreatedAt               int64       `yaml:"created_at" json:"created_at"`
	LastUpdated             int64       `yaml:"last_updated" json:"last_updated"`
}
