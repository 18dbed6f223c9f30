// Package slash penalizes misconduct reported by a high-standing agent.
package slash

import (
	"encoding/hex"
	"fmt"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

const (
	// MinSlasherReputation is the standing required to report misconduct.
	MinSlasherReputation uint64 = 5_000
	// BountyBps is the share of the slashed amount owed to the reporter.
	BountyBps uint64 = 500
)

type EvidenceHash [32]byte

type Result struct {
	Target      agent.Profile `json:"target"`
	Amount      uint64        `json:"amount"`
	Bounty      uint64        `json:"bounty"`
	Deactivated bool          `json:"deactivated"`
}

// Apply slashes target by params.SlashThreshold basis points of its score.
// The evidence is referenced, never inspected.
func Apply(slasher, target agent.Profile, params protocol.Params) (Result, error) {
	if slasher.Owner == target.Owner {
		return Result{}, ledgererr.ErrSelfSlashNotAllowed
	}
	if slasher.ReputationScore < MinSlasherReputation {
		return Result{}, ledgererr.ErrInsufficientReputation
	}

	amount := fixedpoint.MulBps(target.ReputationScore, params.SlashThreshold)
	res := Result{
		Target: target,
		Amount: amount,
		Bounty: fixedpoint.MulBps(amount, BountyBps),
	}
	res.Deactivated = res.Target.Debit(amount)
	return res, nil
}

// ParseEvidenceHash decodes a hex-encoded 32-byte evidence hash.
func ParseEvidenceHash(s string) (EvidenceHash, error) {
	var h EvidenceHash
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(h) {
		return h, fmt.Errorf("evidence hash must be %d hex-encoded bytes: %w", len(h), ledgererr.ErrInvalidParameter)
	}
	copy(h[:], raw)
	return h, nil
}
