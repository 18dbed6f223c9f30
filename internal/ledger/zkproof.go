package ledger

import (
	"context"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/zkproof"
)

func (l *Ledger) InitializeVerificationKey(ctx context.Context, authority identity.ID, circuitHash zkproof.Hash, key []byte, keyLen int) (*zkproof.VerificationKey, error) {
	var out zkproof.VerificationKey
	err := l.transact(ctx, "InitializeVerificationKey", []string{vkKey}, func(u *unit) error {
		k, err := zkproof.NewVerificationKey(authority, circuitHash, key, keyLen, u.now)
		if err != nil {
			return err
		}
		if err := u.keys.Initialize(ctx, &k); err != nil {
			return err
		}
		out = k
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitProof verifies a claim about prover's profile and stores the
// verdict. A failed verification is stored too.
func (l *Ledger) SubmitProof(ctx context.Context, prover identity.ID, st zkproof.Statement, proof zkproof.Proof, inputs zkproof.Inputs) (*zkproof.Record, error) {
	if err := validIDs(prover); err != nil {
		return nil, err
	}
	id := ulid.Make().String()
	var out zkproof.Record
	err := l.transactReading(ctx, "SubmitProof", []string{agentKey(prover)}, []string{vkKey}, func(u *unit) error {
		key, err := u.keys.Get(ctx)
		if err != nil {
			return err
		}
		p, err := u.agents.Get(ctx, prover)
		if err != nil {
			return err
		}
		rec, err := zkproof.Submit(ctx, l.verifier, id, *key, *p, st, proof, inputs, u.now)
		if err != nil {
			return err
		}
		if err := u.proofs.Create(ctx, &rec); err != nil {
			return err
		}
		out = rec
		u.emit(eventbus.TypeProofSubmitted, prover.String(), map[string]string{
			"statement": st.String(),
			"verified":  strconv.FormatBool(rec.Verified),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) GetProof(ctx context.Context, prover identity.ID, id string) (*zkproof.Record, error) {
	if err := validIDs(prover, identity.ID(id)); err != nil {
		return nil, err
	}
	// Proofs are written under their prover's lock.
	defer l.reading(agentKey(prover))()
	return l.view().proofs.Get(ctx, prover, id)
}

func (l *Ledger) ListProofs(ctx context.Context, prover identity.ID) ([]*zkproof.Record, error) {
	if err := validIDs(prover); err != nil {
		return nil, err
	}
	return l.view().proofs.ListByProver(ctx, prover)
}
