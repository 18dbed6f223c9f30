package protocol

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

// Bounds enforced on every Params value, at genesis and on amendment.
const (
	MaxDecayRatePerDay    uint64 = 1_000
	MinTrustMultiplier    uint64 = fixedpoint.BpsDenominator
	MaxTrustMultiplier    uint64 = 50_000
	MaxSlashThreshold     uint64 = fixedpoint.BpsDenominator
	MaxVouchLockupSeconds uint64 = 1<<63 - 1
)

// Params is the protocol-wide configuration. Engines receive it by value;
// only an Amendment produced by a passed proposal changes the stored copy.
type Params struct {
	MinReputationForVouching uint64 `yaml:"min_reputation_for_vouching" json:"min_reputation_for_vouching"`
	DecayRatePerDay          uint64 `yaml:"decay_rate_per_day" json:"decay_rate_per_day"`
	VouchLockupPeriod        int64  `yaml:"vouch_lockup_period" json:"vouch_lockup_period"`
	SlashThreshold           uint64 `yaml:"slash_threshold" json:"slash_threshold"`
	MaxTrustMultiplier       uint64 `yaml:"max_trust_multiplier" json:"max_trust_multiplier"`
}

func DefaultParams() Params {
	return Params{
		MinReputationForVouching: 100,
		DecayRatePerDay:          100,
		VouchLockupPeriod:        7 * 24 * 60 * 60,
		SlashThreshold:           2_000,
		MaxTrustMultiplier:       30_000,
	}
}

func (p Params) Validate() error {
	switch {
	case p.DecayRatePerDay > MaxDecayRatePerDay:
		return fmt.Errorf("decay_rate_per_day %d above %d: %w", p.DecayRatePerDay, MaxDecayRatePerDay, ledgererr.ErrInvalidParameter)
	case p.MaxTrustMultiplier < MinTrustMultiplier || p.MaxTrustMultiplier > MaxTrustMultiplier:
		return fmt.Errorf("max_trust_multiplier %d outside [%d, %d]: %w", p.MaxTrustMultiplier, MinTrustMultiplier, MaxTrustMultiplier, ledgererr.ErrInvalidParameter)
	case p.SlashThreshold > MaxSlashThreshold:
		return fmt.Errorf("slash_threshold %d above %d: %w", p.SlashThreshold, MaxSlashThreshold, ledgererr.ErrInvalidParameter)
	case p.VouchLockupPeriod < 0:
		return fmt.Errorf("vouch_lockup_period is negative: %w", ledgererr.ErrInvalidParameter)
	}
	return nil
}

// Config is the stored singleton.
type Config struct {
	Params         `yaml:",inline"`
	Revision       uint64 `yaml:"revision" json:"revision"`
	LastProposalID string `yaml:"last_proposal_id,omitempty" json:"last_proposal_id,omitempty"`
	UpdatedAt      int64  `yaml:"updated_at" json:"updated_at"`
}

// Amendment replaces Params with After. It is only valid against the
// revision it was computed from.
type Amendment struct {
	ProposalID   string
	BaseRevision uint64
	Before       Params
	After        Params
	At           int64
}

// Genesis seeds a fresh ledger: the initial Params, the oracle registry
// authority and the oracles it starts with.
type Genesis struct {
	Params          Params        `yaml:"params"`
	OracleAuthority identity.ID   `yaml:"oracle_authority"`
	Oracles         []identity.ID `yaml:"oracles"`
}
