package oracle

import (
	"encoding/hex"
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type Category string

const (
	CategoryCommit                Category = "commit"
	CategoryPRMerged              Category = "pr_merged"
	CategoryOnChainTx             Category = "on_chain_tx"
	CategoryHackathonWin          Category = "hackathon_win"
	CategoryBugBounty             Category = "bug_bounty"
	CategoryCommunityContribution Category = "community_contribution"
)

var Categories = []Category{
	CategoryCommit,
	CategoryPRMerged,
	CategoryOnChainTx,
	CategoryHackathonWin,
	CategoryBugBounty,
	CategoryCommunityContribution,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown attestation category %q: %w", s, ledgererr.ErrInvalidParameter)
}

// Cap is the most reputation one attestation of c may grant.
func (c Category) Cap() (uint64, error) {
	switch c {
	case CategoryCommit:
		return 10, nil
	case CategoryPRMerged:
		return 50, nil
	case CategoryOnChainTx:
		return 100, nil
	case CategoryHackathonWin:
		return 500, nil
	case CategoryBugBounty:
		return 1_000, nil
	case CategoryCommunityContribution:
		return 25, nil
	default:
		return 0, fmt.Errorf("unknown attestation category %q: %w", c, ledgererr.ErrInvalidParameter)
	}
}

// MetadataHash references the off-chain evidence of an attestation.
type MetadataHash [32]byte

func ParseMetadataHash(s string) (MetadataHash, error) {
	var h MetadataHash
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(h) {
		return h, fmt.Errorf("metadata hash must be %d hex-encoded bytes: %w", len(h), ledgererr.ErrInvalidParameter)
	}
	copy(h[:], b)
	return h, nil
}

func (h MetadataHash) String() string {
	return hex.EncodeToString(h[:])
}

func (h MetadataHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *MetadataHash) UnmarshalText(b []byte) error {
	parsed, err := ParseMetadataHash(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

type Attestation struct {
	ID           string       `yaml:"id" json:"id"`
	Oracle       identity.ID  `yaml:"oracle" json:"oracle"`
	Agent        identity.ID  `yaml:"agent" json:"agent"`
	Category     Category     `yaml:"category" json:"category"`
	MetadataHash MetadataHash `yaml:"metadata_hash" json:"metadata_hash"`
	Amount       uint64       `yaml:"reputation_amount" json:"reputation_amount"`
	CreatedAt    int64        `yaml:"created_at" json:"created_at"`
}

// MaxOracles bounds the registry.
const MaxOracles = 10

// Registry is the stored set of oracles allowed to attest, administered by
// a single authority.
type Registry struct {
	Authority identity.ID   `yaml:"authority" json:"authority"`
	Oracles   []identity.ID `yaml:"oracles" json:"oracles"`
	CreatedAt int64         `yaml:"created_at" json:"created_at"`
	UpdatedAt int64         `yaml:"updated_at" json:"updated_at"`
}
