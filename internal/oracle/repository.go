package oracle

import (
	"context"
	"errors"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type RegistryRepository interface {
	// Create fails if a registry exists.
	Create(ctx context.Context, r *Registry) error
	// Get fails with ledgererr.ErrRegistryUninitiated before Create.
	Get(ctx context.Context) (*Registry, error)
	Update(ctx context.Context, r *Registry) error
}

type AttestationRepository interface {
	Create(ctx context.Context, a *Attestation) error
	ListByAgent(ctx context.Context, agent identity.ID) ([]*Attestation, error)
}

// StoredAuthorizer authorizes against the stored registry. Nobody is
// authorized before the registry is initialized.
type StoredAuthorizer struct {
	Repo RegistryRepository
}

func (s StoredAuthorizer) IsAuthorized(ctx context.Context, id identity.ID) (bool, error) {
	r, err := s.Repo.Get(ctx)
	if errors.Is(err, ledgererr.ErrRegistryUninitiated) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return r.Members().Contains(id), nil
}
