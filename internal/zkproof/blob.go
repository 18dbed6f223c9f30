package zkproof

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/ledgererr"
)

const (
	MaxProofLen     = 500
	MaxPublicInputs = 10
)

// Proof is a proof buffer with an explicit declared length. Only Data[:Len]
// is meaningful.
type Proof struct {
	Data []byte
	Len  int
}

func (p Proof) Bytes() ([]byte, error) {
	if p.Len < 0 || p.Len > MaxProofLen || p.Len > len(p.Data) {
		return nil, fmt.Errorf("proof length %d exceeds capacity: %w", p.Len, ledgererr.ErrInvalidParameter)
	}
	return p.Data[:p.Len], nil
}

// Inputs is a public input buffer with an explicit declared count.
type Inputs struct {
	Values []uint64
	Count  int
}

func (in Inputs) Slice() ([]uint64, error) {
	if in.Count < 0 || in.Count > MaxPublicInputs || in.Count > len(in.Values) {
		return nil, fmt.Errorf("input count %d exceeds capacity: %w", in.Count, ledgererr.ErrInvalidParameter)
	}
	return in.Values[:in.Count], nil
}
