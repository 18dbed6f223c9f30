// Package vouch applies reputation-backed endorsements and challenges.
package vouch

import (
	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/internal/trust"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

type Outcome struct {
	Voucher agent.Profile
	Target  agent.Profile
	Record  Record
	// Stake is the amount the custodian must move into escrow. Zero for
	// negative vouches.
	Stake uint64
}

// Apply vouches amount from voucher toward target. existing is the current
// record for the pair, or nil.
func Apply(voucher, target agent.Profile, existing *Record, amount uint64, positive bool, params protocol.Params, now int64) (Outcome, error) {
	if voucher.Owner == target.Owner {
		return Outcome{}, ledgererr.ErrSelfVouchNotAllowed
	}
	if voucher.ReputationScore < params.MinReputationForVouching {
		return Outcome{}, ledgererr.ErrInsufficientReputation
	}
	if amount == 0 {
		return Outcome{}, ledgererr.ErrInvalidReputationAmount
	}

	weight := trust.Weight(voucher.ReputationScore, params.MinReputationForVouching, trust.VouchWeightCeiling)
	impact := trust.WeightedImpact(amount, weight)

	rec := Record{
		Voucher:                 voucher.Owner,
		VouchedFor:              target.Owner,
		BaseAmount:              amount,
		WeightedAmount:          impact,
		VoucherReputationAtTime: voucher.ReputationScore,
		TrustWeight:             weight,
		IsPositive:              positive,
		CreatedAt:               now,
		LastUpdated:             now,
	}
	if existing != nil {
		rec.CreatedAt = existing.CreatedAt
		rec.LockedStake = existing.LockedStake
	}

	out := Outcome{Voucher: voucher, Target: target, Record: rec}
	if positive {
		out.Target.Credit(impact)
		out.Target.PositiveVouches = fixedpoint.Add(out.Target.PositiveVouches, 1)
		out.Stake = amount
		out.Record.LockedStake = fixedpoint.Add(out.Record.LockedStake, amount)
	} else {
		out.Target.Debit(impact)
		out.Target.NegativeVouches = fixedpoint.Add(out.Target.NegativeVouches, 1)
	}
	out.Voucher.StakedAmount = fixedpoint.Add(out.Voucher.StakedAmount, amount)
	return out, nil
}

// Withdrawal is the result of releasing a vouch.
type Withdrawal struct {
	Record Record `json:"record"`
	// Release is the stake the custodian returns to the voucher.
	Release uint64 `json:"release"`
}

// Withdraw releases rec once the lockup since its last update has passed.
// All stake locked by the pair's positive vouches is returned, whatever the
// current polarity. The record is removed by the caller; staked_amount is
// left to custody.
func Withdraw(rec Record, params protocol.Params, now int64) (Withdrawal, error) {
	unlocksAt, err := fixedpoint.CheckedAddInt64(rec.LastUpdated, params.VouchLockupPeriod)
	if err != nil {
		return Withdrawal{}, ledgererr.ErrMathOverflow
	}
	if now < unlocksAt {
		return Withdrawal{}, ledgererr.ErrLockupNotExpired
	}
	return Withdrawal{Record: rec, Release: rec.LockedStake}, nil
}
