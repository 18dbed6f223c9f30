package badge

import (
	"context"

	"github.com/agentrep/trustledger/internal/identity"
)

type Repository interface {
	// Create fails with ledgererr.ErrBadgeAlreadyMinted.
	Create(ctx context.Context, b *Badge) error
	// Get fails with ledgererr.ErrBadgeNotFound.
	Get(ctx context.Context, agent identity.ID) (*Badge, error)
	Update(ctx context.Context, b *Badge) error
}
