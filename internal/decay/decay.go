// Package decay reduces the score of inactive agents.
package decay

import (
	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/clock"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/protocol"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

// Cooldown is the minimum interval between two decays of one profile.
const Cooldown = clock.Day

type Result struct {
	Profile     agent.Profile `json:"profile"`
	ElapsedDays uint64        `json:"elapsed_days"`
	Reduction   uint64        `json:"reduction"`
	Deactivated bool          `json:"deactivated"`
}

// Apply decays p by score * rate * elapsed_days / 10000, the product
// saturating before the division, where elapsed_days
// counts whole days since the later of the last activity and the last decay,
// so no idle day is charged twice. A second call inside Cooldown fails with
// ErrDecayCooldown. Decay does not count as activity.
func Apply(p agent.Profile, params protocol.Params, now int64) (Result, error) {
	if p.LastDecayTimestamp != 0 && now-p.LastDecayTimestamp < Cooldown {
		return Result{}, ledgererr.ErrDecayCooldown
	}

	since := max(p.LastActivityTimestamp, p.LastDecayTimestamp)
	var elapsed uint64
	if now > since {
		elapsed = uint64(now-since) / uint64(clock.Day)
	}
	reduction := fixedpoint.Div(fixedpoint.Mul(fixedpoint.Mul(p.ReputationScore, params.DecayRatePerDay), elapsed), fixedpoint.BpsDenominator)
	reduction = fixedpoint.Min(reduction, p.ReputationScore)

	res := Result{Profile: p, ElapsedDays: elapsed, Reduction: reduction}
	res.Deactivated = res.Profile.Debit(reduction)
	res.Profile.LastDecayTimestamp = now
	return res, nil
}
