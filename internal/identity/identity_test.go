package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	id, err := Parse("7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU")
	require.NoError(t, err)
	assert.Equal(t, "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", id.String())

	for _, bad := range []string{"", "a/b", "..", "with space", strings.Repeat("x", MaxLen+1)} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}

func TestKey(t *testing.T) {
	assert.Equal(t, "agent/alice", Key(NamespaceAgent, "alice"))
	assert.Equal(t, "vouch/alice/bob", Key(NamespaceVouch, "alice", "bob"))
	assert.Equal(t, "protocol", Key(NamespaceProtocol))
}
