package ledger

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"slices"
	"strconv"

	"github.com/agentrep/trustledger/internal/custody"
	"github.com/agentrep/trustledger/internal/decay"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/slash"
	"github.com/agentrep/trustledger/internal/trust"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

// PropagateTrust folds incoming trust into target's score. With no incoming
// vouches given, the stored positive vouches for target are used, each at
// its voucher's current score and the weight frozen when it was made.
// Weights are clamped to the protocol's max trust multiplier.
//
// The vouchers' profiles are held shared while they are read. The voucher
// set is listed before locking, so a vouch that lands in between makes the
// transition start over.
func (l *Ledger) PropagateTrust(ctx context.Context, target identity.ID, incoming []trust.Incoming) (*trust.Propagation, error) {
	if err := validIDs(target); err != nil {
		return nil, err
	}
	for attempt := 1; ; attempt++ {
		var reads []string
		if len(incoming) == 0 {
			vouchers, err := l.positiveVouchers(ctx, l.view(), target)
			if err != nil {
				return nil, err
			}
			for _, v := range vouchers {
				reads = append(reads, agentKey(v))
			}
		}
		out, err := l.propagate(ctx, target, incoming, reads)
		if errors.Is(err, errVoucherSetChanged) && attempt < maxPropagateAttempts {
			slog.DebugContext(ctx, "voucher set changed, retrying propagation", "target", target.String(), "attempt", attempt)
			continue
		}
		return out, err
	}
}

const maxPropagateAttempts = 3

var errVoucherSetChanged = cerr.NewError(cerr.Aborted, "vouches for the target changed during propagation", nil)

func (l *Ledger) propagate(ctx context.Context, target identity.ID, incoming []trust.Incoming, reads []string) (*trust.Propagation, error) {
	var out trust.Propagation
	err := l.transactReading(ctx, "PropagateTrust", []string{agentKey(target)}, reads, func(u *unit) error {
		params, err := u.params(ctx)
		if err != nil {
			return err
		}
		p, err := u.agents.Get(ctx, target)
		if err != nil {
			return err
		}
		in := incoming
		if len(in) == 0 {
			if in, err = l.storedIncoming(ctx, u, target, reads); err != nil {
				return err
			}
		}
		clamped := make([]trust.Incoming, len(in))
		for i, x := range in {
			x.Weight = fixedpoint.Min(x.Weight, params.MaxTrustMultiplier)
			clamped[i] = x
		}

		res := trust.Propagate(p.ReputationScore, clamped)
		out = res
		if !res.Changed() {
			return nil
		}
		p.Credit(res.Increase)
		p.LastActivityTimestamp = u.now
		if err := u.agents.Update(ctx, p); err != nil {
			return err
		}
		u.emit(eventbus.TypeTrustPropagated, target.String(), map[string]string{
			"increase": strconv.FormatUint(res.Increase, 10),
			"sources":  strconv.Itoa(len(clamped)),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) positiveVouchers(ctx context.Context, r repos, target identity.ID) ([]identity.ID, error) {
	recs, err := r.vouches.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	var ids []identity.ID
	for _, rec := range recs {
		if rec.IsPositive {
			ids = append(ids, rec.Voucher)
		}
	}
	return ids, nil
}

// storedIncoming reads the stored positive vouches for target. Every
// voucher must be among the held keys.
func (l *Ledger) storedIncoming(ctx context.Context, u *unit, target identity.ID, held []string) ([]trust.Incoming, error) {
	recs, err := u.vouches.ListByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	var in []trust.Incoming
	for _, r := range recs {
		if !r.IsPositive {
			continue
		}
		if !slices.Contains(held, agentKey(r.Voucher)) {
			return nil, errVoucherSetChanged
		}
		v, err := u.agents.Get(ctx, r.Voucher)
		if errors.Is(err, ledgererr.ErrAgentNotRegistered) {
			continue
		}
		if err != nil {
			return nil, err
		}
		in = append(in, trust.Incoming{Voucher: r.Voucher, Reputation: v.ReputationScore, Weight: r.TrustWeight})
	}
	return in, nil
}

func (l *Ledger) ApplyDecay(ctx context.Context, owner identity.ID) (*decay.Result, error) {
	if err := validIDs(owner); err != nil {
		return nil, err
	}
	var out decay.Result
	err := l.transact(ctx, "ApplyDecay", []string{agentKey(owner)}, func(u *unit) error {
		params, err := u.params(ctx)
		if err != nil {
			return err
		}
		p, err := u.agents.Get(ctx, owner)
		if err != nil {
			return err
		}
		res, err := decay.Apply(*p, params, u.now)
		if err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &res.Profile); err != nil {
			return err
		}
		out = res
		u.emit(eventbus.TypeDecayed, owner.String(), map[string]string{
			"days":        strconv.FormatUint(res.ElapsedDays, 10),
			"reduction":   strconv.FormatUint(res.Reduction, 10),
			"deactivated": strconv.FormatBool(res.Deactivated),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SlashAgent penalizes target on slasher's report and records the bounty
// owed to slasher.
func (l *Ledger) SlashAgent(ctx context.Context, slasher, target identity.ID, evidence slash.EvidenceHash) (*slash.Result, error) {
	if err := validIDs(slasher, target); err != nil {
		return nil, err
	}
	var out slash.Result
	err := l.transact(ctx, "SlashAgent", []string{agentKey(slasher), agentKey(target)}, func(u *unit) error {
		params, err := u.params(ctx)
		if err != nil {
			return err
		}
		if slasher == target {
			return ledgererr.ErrSelfSlashNotAllowed
		}
		s, err := u.agents.Get(ctx, slasher)
		if err != nil {
			return err
		}
		t, err := u.agents.Get(ctx, target)
		if err != nil {
			return err
		}
		res, err := slash.Apply(*s, *t, params)
		if err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &res.Target); err != nil {
			return err
		}
		out = res

		u.emit(eventbus.TypeSlashed, target.String(), map[string]string{
			"slasher":     slasher.String(),
			"amount":      strconv.FormatUint(res.Amount, 10),
			"evidence":    hex.EncodeToString(evidence[:]),
			"deactivated": strconv.FormatBool(res.Deactivated),
		})
		if res.Bounty > 0 {
			u.emit(eventbus.TypeBountyOwed, target.String(), map[string]string{
				custody.MetaTo:     slasher.String(),
				custody.MetaAmount: strconv.FormatUint(res.Bounty, 10),
				custody.MetaRef:    target.String(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
