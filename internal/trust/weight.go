// Package trust turns a voucher's standing into a multiplier and folds a
// set of incoming vouches into a bounded score update.
package trust

import "github.com/agentrep/trustledger/pkg/fixedpoint"

// NeutralWeight is a 1.0x multiplier in basis points.
const NeutralWeight = fixedpoint.BpsDenominator

// VouchWeightCeiling caps the multiplier applied when vouching.
const VouchWeightCeiling uint64 = 30_000

// Weight scales the reputation a voucher holds above minThreshold linearly
// into a bonus, capped at maxMultiplier (bps). Vouchers at or below the
// threshold, and any call with a zero threshold, get NeutralWeight. The
// product saturates before the division.
func Weight(voucherReputation, minThreshold, maxMultiplier uint64) uint64 {
	if voucherReputation <= minThreshold || minThreshold == 0 {
		return NeutralWeight
	}
	excess := voucherReputation - minThreshold
	bonus := fixedpoint.Div(fixedpoint.Mul(excess, fixedpoint.Sub(maxMultiplier, NeutralWeight)), minThreshold)
	return fixedpoint.Min(fixedpoint.Add(NeutralWeight, bonus), maxMultiplier)
}

// WeightedImpact is baseAmount scaled by weight, floored.
func WeightedImpact(baseAmount, weight uint64) uint64 {
	return fixedpoint.MulBps(baseAmount, weight)
}
