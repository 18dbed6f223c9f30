package zkproof

import (
	"encoding/hex"
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type StatementKind string

const (
	KindReputationAbove   StatementKind = "reputation_above"
	KindReputationBelow   StatementKind = "reputation_below"
	KindReputationInRange StatementKind = "reputation_in_range"
	KindIsActive          StatementKind = "is_active"
	KindNoNegativeVouches StatementKind = "no_negative_vouches"
)

// Statement is a claim about the prover's profile. Threshold statements
// carry their bounds in Min and Max.
type Statement struct {
	Kind StatementKind `yaml:"kind" json:"kind"`
	Min  uint64        `yaml:"min,omitempty" json:"min,omitempty"`
	Max  uint64        `yaml:"max,omitempty" json:"max,omitempty"`
}

func ReputationAbove(x uint64) Statement {
	return Statement{Kind: KindReputationAbove, Min: x}
}

func ReputationBelow(x uint64) Statement {
	return Statement{Kind: KindReputationBelow, Max: x}
}

func ReputationInRange(lo, hi uint64) Statement {
	return Statement{Kind: KindReputationInRange, Min: lo, Max: hi}
}

func IsActive() Statement {
	return Statement{Kind: KindIsActive}
}

func NoNegativeVouches() Statement {
	return Statement{Kind: KindNoNegativeVouches}
}

func (s Statement) Validate() error {
	switch s.Kind {
	case KindReputationAbove, KindReputationBelow, KindIsActive, KindNoNegativeVouches:
		return nil
	case KindReputationInRange:
		if s.Min >= s.Max {
			return fmt.Errorf("empty range (%d, %d): %w", s.Min, s.Max, ledgererr.ErrInvalidParameter)
		}
		return nil
	default:
		return fmt.Errorf("unknown statement %q: %w", s.Kind, ledgererr.ErrInvalidParameter)
	}
}

func (s Statement) String() string {
	switch s.Kind {
	case KindReputationAbove:
		return fmt.Sprintf("reputation > %d", s.Min)
	case KindReputationBelow:
		return fmt.Sprintf("reputation < %d", s.Max)
	case KindReputationInRange:
		return fmt.Sprintf("%d < reputation < %d", s.Min, s.Max)
	case KindIsActive:
		return "is active"
	case KindNoNegativeVouches:
		return "no negative vouches"
	default:
		return string(s.Kind)
	}
}

type Hash [32]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *Hash) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil || len(raw) != len(h) {
		return fmt.Errorf("hash must be %d hex-encoded bytes", len(h))
	}
	copy(h[:], raw)
	return nil
}

// Record stores the verifier's verdict; the proof itself is kept only as
// its hash.
type Record struct {
	ID         string      `yaml:"id" json:"id"`
	Prover     identity.ID `yaml:"prover" json:"prover"`
	Statement  Statement   `yaml:"statement" json:"statement"`
	ProofHash  Hash        `yaml:"proof_hash" json:"proof_hash"`
	Verified   bool        `yaml:"verified" json:"verified"`
	VerifiedAt int64       `yaml:"verified_at" json:"verified_at"`
}

const MaxVerificationKeyLen = 1_000

// VerificationKey is the circuit key every proof is checked against.
type VerificationKey struct {
	Authority   identity.ID `yaml:"authority" json:"authority"`
	CircuitHash Hash        `yaml:"circuit_hash" json:"circuit_hash"`
	Key         []byte      `yaml:"key" json:"key"`
	CreatedAt   int64       `yaml:"created_at" json:"created_at"`
}
