package ledger

import (
	"context"
	"errors"
	"strconv"

	"github.com/agentrep/trustledger/internal/custody"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/vouch"
)

func vouchKey(voucher, target identity.ID) string {
	return identity.Key(identity.NamespaceVouch, target.String(), voucher.String())
}

// Vouch records a weighted vouch from voucher toward target, replacing any
// earlier vouch between the pair.
func (l *Ledger) Vouch(ctx context.Context, voucher, target identity.ID, amount uint64, positive bool) (*vouch.Record, error) {
	if err := validIDs(voucher, target); err != nil {
		return nil, err
	}
	var out vouch.Record
	keys := []string{agentKey(voucher), agentKey(target), vouchKey(voucher, target)}
	err := l.transact(ctx, "Vouch", keys, func(u *unit) error {
		params, err := u.params(ctx)
		if err != nil {
			return err
		}
		if voucher == target {
			return ledgererr.ErrSelfVouchNotAllowed
		}
		v, err := u.agents.Get(ctx, voucher)
		if err != nil {
			return err
		}
		t, err := u.agents.Get(ctx, target)
		if err != nil {
			return err
		}
		existing, err := u.vouches.Get(ctx, voucher, target)
		if errors.Is(err, ledgererr.ErrVouchNotFound) {
			existing, err = nil, nil
		}
		if err != nil {
			return err
		}

		res, err := vouch.Apply(*v, *t, existing, amount, positive, params, u.now)
		if err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &res.Voucher); err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &res.Target); err != nil {
			return err
		}
		if err := u.vouches.Put(ctx, &res.Record); err != nil {
			return err
		}
		out = res.Record

		u.emit(eventbus.TypeVouched, target.String(), map[string]string{
			"voucher":  voucher.String(),
			"positive": strconv.FormatBool(positive),
			"weighted": strconv.FormatUint(res.Record.WeightedAmount, 10),
		})
		if res.Stake > 0 {
			u.emit(eventbus.TypeStakeLocked, voucher.String(), map[string]string{
				custody.MetaFrom:   voucher.String(),
				custody.MetaAmount: strconv.FormatUint(res.Stake, 10),
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

func (l *Ledger) VouchFor(ctx context.Context, voucher, target identity.ID, amount uint64) (*vouch.Record, error) {
	return l.Vouch(ctx, voucher, target, amount, true)
}

func (l *Ledger) VouchAgainst(ctx context.Context, voucher, target identity.ID, amount uint64) (*vouch.Record, error) {
	return l.Vouch(ctx, voucher, target, amount, false)
}

// WithdrawVouch removes the pair's vouch once its lockup has passed. The
// target is locked too, so the set of vouches a propagation reads stays put.
func (l *Ledger) WithdrawVouch(ctx context.Context, voucher, target identity.ID) (*vouch.Withdrawal, error) {
	if err := validIDs(voucher, target); err != nil {
		return nil, err
	}
	var out vouch.Withdrawal
	err := l.transact(ctx, "WithdrawVouch", []string{agentKey(target), vouchKey(voucher, target)}, func(u *unit) error {
		params, err := u.params(ctx)
		if err != nil {
			return err
		}
		rec, err := u.vouches.Get(ctx, voucher, target)
		if err != nil {
			return err
		}
		w, err := vouch.Withdraw(*rec, params, u.now)
		if err != nil {
			return err
		}
		if err := u.vouches.Delete(ctx, voucher, target); err != nil {
			return err
		}
		out = w

		u.emit(eventbus.TypeVouchWithdrawn, target.String(), map[string]string{"voucher": voucher.String()})
		if w.Release > 0 {
			u.emit(eventbus.TypeStakeReleased, voucher.String(), map[string]string{
				custody.MetaTo:     voucher.String(),
				custody.MetaAmount: strconv.FormatUint(w.Release, 10),
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

func (l *Ledger) GetVouch(ctx context.Context, voucher, target identity.ID) (*vouch.Record, error) {
	if err := validIDs(voucher, target); err != nil {
		return nil, err
	}
	defer l.reading(vouchKey(voucher, target))()
	return l.view().vouches.Get(ctx, voucher, target)
}

func (l *Ledger) ListVouches(ctx context.Context, target identity.ID) ([]*vouch.Record, error) {
	if err := validIDs(target); err != nil {
		return nil, err
	}
	return l.view().vouches.ListByTarget(ctx, target)
}
