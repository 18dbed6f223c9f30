package oracle

import (
	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/pkg/fixedpoint"
)

// Submission is what an oracle asks to record.
type Submission struct {
	Oracle       identity.ID
	Category     Category
	MetadataHash MetadataHash
	Amount       uint64
}

// Attest credits p with an oracle-reported achievement. authorized is the
// registry's verdict for s.Oracle.
func Attest(id string, p agent.Profile, s Submission, authorized bool, now int64) (agent.Profile, Attestation, error) {
	if !authorized {
		return p, Attestation{}, ledgererr.ErrOracleNotAuthorized
	}
	limit, err := s.Category.Cap()
	if err != nil {
		return p, Attestation{}, err
	}
	if s.Amount == 0 || s.Amount > limit {
		return p, Attestation{}, ledgererr.ErrInvalidReputationAmount
	}
	p.Credit(s.Amount)
	p.TotalTasksCompleted = fixedpoint.Add(p.TotalTasksCompleted, 1)
	p.LastActivityTimestamp = now
	return p, Attestation{
		ID:           id,
		Oracle:       s.Oracle,
		Agent:        p.Owner,
		Category:     s.Category,
		MetadataHash: s.MetadataHash,
		Amount:       s.Amount,
		CreatedAt:    now,
	}, nil
}
