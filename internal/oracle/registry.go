package oracle

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set"

	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
)

// Authorizer answers whether an identity may submit attestations.
type Authorizer interface {
	IsAuthorized(ctx context.Context, id identity.ID) (bool, error)
}

// Set is an oracle membership set.
type Set struct {
	members mapset.Set
}

func NewSet(ids ...identity.ID) *Set {
	s := &Set{members: mapset.NewSet()}
	for _, id := range ids {
		s.members.Add(id)
	}
	return s
}

func (s *Set) Contains(id identity.ID) bool {
	return s.members.Contains(id)
}

func (s *Set) Len() int {
	return s.members.Cardinality()
}

// Slice returns the members in sorted order.
func (s *Set) Slice() []identity.ID {
	out := make([]identity.ID, 0, s.members.Cardinality())
	for _, m := range s.members.ToSlice() {
		out = append(out, m.(identity.ID))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NewRegistry starts an empty registry administered by authority.
func NewRegistry(authority identity.ID, now int64) (Registry, error) {
	if err := authority.Validate(); err != nil {
		return Registry{}, ledgererr.ErrInvalidParameter
	}
	return Registry{Authority: authority, CreatedAt: now, UpdatedAt: now}, nil
}

// AddOracle authorizes oracle. Only the registry authority may add, the
// registry holds at most MaxOracles and an oracle is added once.
func AddOracle(r Registry, caller, oracle identity.ID, now int64) (Registry, error) {
	if caller != r.Authority {
		return r, ledgererr.ErrOracleNotAuthorized
	}
	if err := oracle.Validate(); err != nil {
		return r, ledgererr.ErrInvalidParameter
	}
	set := NewSet(r.Oracles...)
	if set.Contains(oracle) {
		return r, ledgererr.ErrOracleAlreadyAdded
	}
	if set.Len() >= MaxOracles {
		return r, ledgererr.ErrRegistryFull
	}
	r.Oracles = append(append([]identity.ID(nil), r.Oracles...), oracle)
	r.UpdatedAt = now
	return r, nil
}

// Members returns the registry as a Set.
func (r Registry) Members() *Set {
	return NewSet(r.Oracles...)
}

// AnyOf authorizes an identity if any of the given authorizers does.
type AnyOf []Authorizer

func (a AnyOf) IsAuthorized(ctx context.Context, id identity.ID) (bool, error) {
	for _, auth := range a {
		ok, err := auth.IsAuthorized(ctx, id)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
