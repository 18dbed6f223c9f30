package trust

import (
	"math"

	"github.com/holiman/uint256"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

const (
	// Alpha is the weight kept on the target's own score (0.15).
	Alpha uint64 = 1_500
	// MaxIncreaseDivisor caps a single propagation at score/10.
	MaxIncreaseDivisor uint64 = 10
)

// Incoming is one vouch flowing into the target.
type Incoming struct {
	Voucher    identity.ID `json:"voucher"`
	Reputation uint64      `json:"reputation"`
	Weight     uint64      `json:"weight"`
}

type Propagation struct {
	TrustFlow  uint64 `json:"trust_flow"`
	Propagated uint64 `json:"propagated"`
	Previous   uint64 `json:"previous"`
	Increase   uint64 `json:"increase"`
}

// Changed reports whether the score moved.
func (p Propagation) Changed() bool {
	return p.Increase > 0
}

// Propagate computes
//
//	flow       = sum(rep_i * weight_i / total_rep)
//	propagated = flow * (1 - alpha) + score * alpha
//
// and returns the increase to apply: zero unless propagated exceeds score,
// and never more than score / MaxIncreaseDivisor. Every product saturates
// before its division. Sums are carried in 256 bits and clamped once, which
// equals adding the non-negative terms one by one with saturation.
func Propagate(score uint64, incoming []Incoming) Propagation {
	sum := new(uint256.Int)
	for _, in := range incoming {
		sum.Add(sum, uint256.NewInt(in.Reputation))
	}
	total := saturate(sum)

	var flow uint64
	if total != 0 {
		sum.Clear()
		for _, in := range incoming {
			contribution := fixedpoint.Div(fixedpoint.Mul(in.Reputation, in.Weight), total)
			sum.Add(sum, uint256.NewInt(contribution))
		}
		flow = saturate(sum)
	}

	propagated := fixedpoint.Add(
		fixedpoint.MulBps(flow, fixedpoint.BpsDenominator-Alpha),
		fixedpoint.MulBps(score, Alpha),
	)

	out := Propagation{
		TrustFlow:  flow,
		Propagated: propagated,
		Previous:   score,
	}
	if out.Propagated > score {
		out.Increase = fixedpoint.Min(out.Propagated-score, score/MaxIncreaseDivisor)
	}
	return out
}

func saturate(v *uint256.Int) uint64 {
	if v.IsUint64() {
		return v.Uint64()
	}
	return math.MaxUint64
}
