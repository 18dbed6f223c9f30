// Package identity addresses ledger records by a byte-stable identity plus a
// namespace tag.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// ID identifies an agent, oracle, or authority. Any byte-stable string works
// (a public key in hex or base58 is typical).
type ID string

const MaxLen = 64

var ErrInvalid = errors.New("invalid identity")

func Parse(s string) (ID, error) {
	if err := ID(s).Validate(); err != nil {
		return "", err
	}
	return ID(s), nil
}

// Validate rejects identities that could not be used as a storage key.
func (id ID) Validate() error {
	s := string(id)
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalid)
	case len(s) > MaxLen:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalid, MaxLen)
	case strings.ContainsAny(s, "/\\ \t\r\n"), s == ".", s == "..":
		return fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Namespace tags.
const (
	NamespaceAgent       = "agent"
	NamespaceVouch       = "vouch"
	NamespaceProposal    = "proposal"
	NamespaceVote        = "vote"
	NamespaceBadge       = "badge"
	NamespaceAttestation = "attestation"
	NamespaceProof       = "zkproof"
	NamespaceProtocol    = "protocol"
	NamespaceOracle      = "oracle"
)

// Key joins a namespace and its key parts, e.g. Key("vouch", a, b) is
// "vouch/a/b". The result is also the lock key for the record.
func Key(namespace string, parts ...string) string {
	var b strings.Builder
	b.WriteString(namespace)
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(p)
	}
	return b.String()
}
