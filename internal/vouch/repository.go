package vouch

import (
	"context"

	"github.com/agentrep/trustledger/internal/identity"
)

type Repository interface {
	// Get fails with ledgererr.ErrVouchNotFound.
	Get(ctx context.Context, voucher, target identity.ID) (*Record, error)
	Put(ctx context.Context, r *Record) error
	Delete(ctx context.Context, voucher, target identity.ID) error
	// ListByTarget returns every vouch held toward target, ordered by voucher.
	ListByTarget(ctx context.Context, target identity.ID) ([]*Record, error)
}
