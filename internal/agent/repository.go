package agent

import (
	"context"

	"github.com/agentrep/trustledger/internal/identity"
)

type Repository interface {
	// Create fails with ledgererr.ErrAgentAlreadyRegistered if the owner has
	// a profile.
	Create(ctx context.Context, p *Profile) error
	// Get fails with ledgererr.ErrAgentNotRegistered if there is no profile.
	Get(ctx context.Context, owner identity.ID) (*Profile, error)
	List(ctx context.Context, limit, offset int) ([]*Profile, int, error)
	Update(ctx context.Context, p *Profile) error
}
