package badge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/internal/agent"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		score uint64
		want  Level
	}{
		{0, LevelNovice},
		{100, LevelNovice},
		{101, LevelContributor},
		{500, LevelContributor},
		{501, LevelBuilder},
		{1_000, LevelBuilder},
		{1_001, LevelGuardian},
		{5_000, LevelGuardian},
		{5_001, LevelLegend},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.score), tt.score)
		assert.NotEmpty(t, tt.want.Benefits())
	}
}

func TestMintAndUpgrade(t *testing.T) {
	p := agent.Profile{Owner: "alice", ReputationScore: 400}
	b, err := Mint(p, "ipfs://badge", 10)
	require.NoError(t, err)
	assert.Equal(t, Badge{Agent: "alice", Level: LevelContributor, ScoreSnapshot: 400, MetadataURI: "ipfs://badge", MintedAt: 10}, b)

	p.ReputationScore = 450
	_, _, err = Upgrade(b, p, 20)
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)

	p.ReputationScore = 6_000
	up, prev, err := Upgrade(b, p, 30)
	require.NoError(t, err)
	assert.Equal(t, LevelContributor, prev)
	assert.Equal(t, LevelLegend, up.Level)
	assert.Equal(t, uint64(6_000), up.ScoreSnapshot)
	assert.Equal(t, int64(30), up.UpgradedAt)
	assert.Equal(t, int64(10), up.MintedAt)

	_, err = Mint(p, strings.Repeat("u", MaxMetadataURILen+1), 10)
	assert.ErrorIs(t, err, ledgererr.ErrDescriptionTooLong)
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("guardian")
	require.NoError(t, err)
	assert.Equal(t, LevelGuardian, l)
	_, err = ParseLevel("emperor")
	assert.ErrorIs(t, err, ledgererr.ErrInvalidParameter)
}
