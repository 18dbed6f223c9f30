// Package zkproof records verdicts on privacy-preserving claims about an
// agent's reputation. The cryptography lives behind Verifier.
package zkproof

import (
	"context"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type Request struct {
	Key       VerificationKey
	Statement Statement
	Proof     []byte
	Inputs    []uint64
	// Subject is the prover's stored profile. Real verifiers must not need
	// it; the reference verifier checks the statement against it directly.
	Subject agent.Profile
}

type Verifier interface {
	Verify(ctx context.Context, req Request) (bool, error)
}

// NewVerificationKey validates and builds the circuit key.
func NewVerificationKey(authority identity.ID, circuitHash Hash, key []byte, keyLen int, now int64) (VerificationKey, error) {
	if err := authority.Validate(); err != nil {
		return VerificationKey{}, ledgererr.ErrInvalidParameter
	}
	if keyLen < 0 || keyLen > MaxVerificationKeyLen || keyLen > len(key) {
		return VerificationKey{}, fmt.Errorf("verification key length %d exceeds capacity: %w", keyLen, ledgererr.ErrInvalidParameter)
	}
	return VerificationKey{
		Authority:   authority,
		CircuitHash: circuitHash,
		Key:         append([]byte(nil), key[:keyLen]...),
		CreatedAt:   now,
	}, nil
}

// Submit validates the proof buffers, asks v for a verdict and returns the
// record to store.
func Submit(ctx context.Context, v Verifier, id string, key VerificationKey, prover agent.Profile, st Statement, proof Proof, inputs Inputs, now int64) (Record, error) {
	if err := st.Validate(); err != nil {
		return Record{}, err
	}
	blob, err := proof.Bytes()
	if err != nil {
		return Record{}, err
	}
	in, err := inputs.Slice()
	if err != nil {
		return Record{}, err
	}
	ok, err := v.Verify(ctx, Request{Key: key, Statement: st, Proof: blob, Inputs: in, Subject: prover})
	if err != nil {
		return Record{}, fmt.Errorf("verifier: %w", err)
	}
	return Record{
		ID:         id,
		Prover:     prover.Owner,
		Statement:  st,
		ProofHash:  HashProof(blob),
		Verified:   ok,
		VerifiedAt: now,
	}, nil
}

func HashProof(proof []byte) Hash {
	return sha3.Sum256(proof)
}

// Commitment binds a score to a nonce: sha3-256(le64(score) || le64(nonce)).
func Commitment(score, nonce uint64) Hash {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], score)
	binary.LittleEndian.PutUint64(buf[8:], nonce)
	return sha3.Sum256(buf[:])
}

// ReferenceVerifier decides statements from the prover's profile and checks
// that the public inputs restate the statement's bounds. It stands in for a
// circuit verifier in local runs.
type ReferenceVerifier struct{}

func (ReferenceVerifier) Verify(_ context.Context, req Request) (bool, error) {
	score := req.Subject.ReputationScore
	in := req.Inputs
	st := req.Statement
	switch st.Kind {
	case KindReputationAbove:
		return len(in) >= 1 && in[0] == st.Min && score > st.Min, nil
	case KindReputationBelow:
		return len(in) >= 1 && in[0] == st.Max && score < st.Max, nil
	case KindReputationInRange:
		return len(in) >= 2 && in[0] == st.Min && in[1] == st.Max && score > st.Min && score < st.Max, nil
	case KindIsActive:
		return req.Subject.IsActive, nil
	case KindNoNegativeVouches:
		return req.Subject.NegativeVouches == 0, nil
	default:
		return false, fmt.Errorf("unknown statement %q: %w", st.Kind, ledgererr.ErrInvalidParameter)
	}
}
