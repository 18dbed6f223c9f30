package zkproof

import (
	"context"

	"github.com/agentrep/trustledger/internal/identity"
)

type Repository interface {
	Create(ctx context.Context, r *Record) error
	Get(ctx context.Context, prover identity.ID, id string) (*Record, error)
	ListByProver(ctx context.Context, prover identity.ID) ([]*Record, error)
}

type KeyRepository interface {
	// Initialize fails if a key is stored.
	Initialize(ctx context.Context, k *VerificationKey) error
	Get(ctx context.Context) (*VerificationKey, error)
}
