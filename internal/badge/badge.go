// Package badge issues soulbound reputation badges whose level tracks the
// holder's score band.
package badge

import (
	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

// Mint issues p's badge at its current level. Whether p already holds one
// is checked where the badge is stored.
func Mint(p agent.Profile, metadataURI string, now int64) (Badge, error) {
	if len(metadataURI) > MaxMetadataURILen {
		return Badge{}, ledgererr.ErrDescriptionTooLong
	}
	return Badge{
		Agent:         p.Owner,
		Level:         LevelFor(p.ReputationScore),
		ScoreSnapshot: p.ReputationScore,
		MetadataURI:   metadataURI,
		MintedAt:      now,
	}, nil
}

// Upgrade moves b to the level of p's current score. It fails with
// ErrInvalidParameter when the level would not change.
func Upgrade(b Badge, p agent.Profile, now int64) (Badge, Level, error) {
	next := LevelFor(p.ReputationScore)
	if next == b.Level {
		return b, b.Level, ledgererr.ErrInvalidParameter
	}
	prev := b.Level
	b.Level = next
	b.ScoreSnapshot = p.ReputationScore
	b.UpgradedAt = now
	return b, prev, nil
}
