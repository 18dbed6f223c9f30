package zkproof

import (
	"context"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

func TestReferenceVerifier(t *testing.T) {
	p := agent.Profile{Owner: "alice", ReputationScore: 700, IsActive: true}
	tests := []struct {
		name   string
		st     Statement
		inputs []uint64
		prof   agent.Profile
		want   bool
	}{
		{"above holds", ReputationAbove(500), []uint64{500}, p, true},
		{"above is strict", ReputationAbove(700), []uint64{700}, p, false},
		{"above with mismatched input", ReputationAbove(500), []uint64{400}, p, false},
		{"above without inputs", ReputationAbove(500), nil, p, false},
		{"below holds", ReputationBelow(701), []uint64{701}, p, true},
		{"below is strict", ReputationBelow(700), []uint64{700}, p, false},
		{"range holds", ReputationInRange(600, 800), []uint64{600, 800}, p, true},
		{"range excludes bound", ReputationInRange(700, 800), []uint64{700, 800}, p, false},
		{"active", IsActive(), nil, p, true},
		{"inactive", IsActive(), nil, agent.Profile{Owner: "bob"}, false},
		{"no negatives", NoNegativeVouches(), nil, p, true},
		{"has negatives", NoNegativeVouches(), nil, agent.Profile{Owner: "bob", NegativeVouches: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := ReferenceVerifier{}.Verify(context.Background(), Request{Statement: tt.st, Inputs: tt.inputs, Subject: tt.prof})
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()
	p := agent.Profile{Owner: "alice", ReputationScore: 700, IsActive: true}
	proof := Proof{Data: []byte("proof-bytes-and-padding"), Len: 11}

	rec, err := Submit(ctx, ReferenceVerifier{}, "01J", VerificationKey{}, p, ReputationAbove(500), proof, Inputs{Values: []uint64{500}, Count: 1}, 42)
	require.NoError(t, err)
	assert.True(t, rec.Verified)
	assert.Equal(t, HashProof([]byte("proof-bytes")), rec.ProofHash)
	assert.Equal(t, int64(42), rec.VerifiedAt)
	assert.Equal(t, "alice", rec.Prover.String())

	rec, err = Submit(ctx, ReferenceVerifier{}, "01K", VerificationKey{}, p, ReputationAbove(900), proof, Inputs{Values: []uint64{900}, Count: 1}, 43)
	require.NoError(t, err)
	assert.False(t, rec.Verified)
}

func TestSubmit_RejectsOversizedBuffers(t *testing.T) {
	ctx := context.Background()
	p := agent.Profile{Owner: "alice", ReputationScore: 700}
	big := make([]byte, MaxProofLen+1)
	inputs := make([]uint64, MaxPublicInputs+1)

	tests := []struct {
		name   string
		proof  Proof
		inputs Inputs
	}{
		{"proof over capacity", Proof{Data: big, Len: MaxProofLen + 1}, Inputs{}},
		{"declared beyond data", Proof{Data: []byte{1, 2}, Len: 3}, Inputs{}},
		{"negative length", Proof{Data: []byte{1}, Len: -1}, Inputs{}},
		{"inputs over capacity", Proof{}, Inputs{Values: inputs, Count: MaxPublicInputs + 1}},
		{"inputs beyond values", Proof{}, Inputs{Values: []uint64{1}, Count: 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Submit(ctx, ReferenceVerifier{}, "id", VerificationKey{}, p, IsActive(), tt.proof, tt.inputs, 1)
			assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
		})
	}

	_, err := Submit(ctx, ReferenceVerifier{}, "id", VerificationKey{}, p, ReputationInRange(10, 10), Proof{}, Inputs{}, 1)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}

func TestCommitment(t *testing.T) {
	a := Commitment(700, 1)
	assert.Equal(t, a, Commitment(700, 1))
	assert.NotEqual(t, a, Commitment(700, 2))
	assert.NotEqual(t, a, Commitment(701, 1))

	// sha3-256 of sixteen zero bytes
	zero := Commitment(0, 0)
	assert.Equal(t, HashProof(make([]byte, 16)), zero)
	_, err := hex.DecodeString(zero.String())
	require.NoError(t, err)
}

func TestNewVerificationKey(t *testing.T) {
	key := make([]byte, MaxVerificationKeyLen+10)
	k, err := NewVerificationKey("root", Hash{1}, key, MaxVerificationKeyLen, 5)
	require.NoError(t, err)
	assert.Len(t, k.Key, MaxVerificationKeyLen)

	_, err = NewVerificationKey("root", Hash{1}, key, MaxVerificationKeyLen+1, 5)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
	_, err = NewVerificationKey("", Hash{1}, key, 1, 5)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}

func TestHashText(t *testing.T) {
	h := HashProof([]byte("x"))
	text, err := h.MarshalText()
	require.NoError(t, err)
	var back Hash
	require.NoError(t, back.UnmarshalText(text))
	assert.Equal(t, h, back)
	assert.Error(t, back.UnmarshalText([]byte("abc")))
}
