package badge

import (
	"fmt"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

type Level string

const (
	LevelNovice      Level = "novice"
	LevelContributor Level = "contributor"
	LevelBuilder     Level = "builder"
	LevelGuardian    Level = "guardian"
	LevelLegend      Level = "legend"
)

// LevelFor maps a score to its level band.
func LevelFor(score uint64) Level {
	switch {
	case score <= 100:
		return LevelNovice
	case score <= 500:
		return LevelContributor
	case score <= 1_000:
		return LevelBuilder
	case score <= 5_000:
		return LevelGuardian
	default:
		return LevelLegend
	}
}

func (l Level) Benefits() []string {
	switch l {
	case LevelNovice:
		return []string{"Basic API access"}
	case LevelContributor:
		return []string{"Basic API access", "Community role: Contributor"}
	case LevelBuilder:
		return []string{"Extended API rate limits", "Community role: Builder", "Early feature access"}
	case LevelGuardian:
		return []string{"Premium API access", "Community role: Guardian", "Governance voting", "Revenue sharing"}
	case LevelLegend:
		return []string{"Unlimited API access", "Community role: Legend", "Full governance", "Revenue sharing", "Exclusive events"}
	default:
		return nil
	}
}

func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelNovice, LevelContributor, LevelBuilder, LevelGuardian, LevelLegend:
		return l, nil
	default:
		return "", fmt.Errorf("unknown level %q: %w", s, ledgererr.ErrInvalidParameter)
	}
}

const MaxMetadataURILen = 100

// Badge is the soulbound token held by one agent. ScoreSnapshot is taken at
// mint and refreshed on each upgrade.
type Badge struct {
	Agent         identity.ID `yaml:"agent" json:"agent"`
	Level         Level       `yaml:"level" json:"level"`
	ScoreSnapshot uint64      `yaml:"score_snapshot" json:"score_snapshot"`
	MetadataURI   string      `yaml:"metadata_uri" json:"metadata_uri"`
	MintedAt      int64       `yaml:"minted_at" json:"minted_at"`
	UpgradedAt    int64       `yaml:"upgraded_at,omitempty" json:"upgraded_at,omitempty"`
}
