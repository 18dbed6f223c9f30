package ledger

import (
	"context"
	"strconv"

	"github.com/oklog/ulid/v2"

	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/oracle"
)

func (l *Ledger) authorizer(reg oracle.RegistryRepository) oracle.Authorizer {
	a := oracle.AnyOf{oracle.StoredAuthorizer{Repo: reg}}
	return append(a, l.extra...)
}

func (l *Ledger) InitializeRegistry(ctx context.Context, authority identity.ID) (*oracle.Registry, error) {
	var out oracle.Registry
	err := l.transact(ctx, "InitializeRegistry", []string{registryKey}, func(u *unit) error {
		reg, err := oracle.NewRegistry(authority, u.now)
		if err != nil {
			return err
		}
		if err := u.registry.Create(ctx, &reg); err != nil {
			return err
		}
		out = reg
		u.emit(eventbus.TypeRegistryInitialized, authority.String(), nil)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) AddOracle(ctx context.Context, caller, id identity.ID) (*oracle.Registry, error) {
	var out oracle.Registry
	err := l.transact(ctx, "AddOracle", []string{registryKey}, func(u *unit) error {
		reg, err := u.registry.Get(ctx)
		if err != nil {
			return err
		}
		next, err := oracle.AddOracle(*reg, caller, id, u.now)
		if err != nil {
			return err
		}
		if err := u.registry.Update(ctx, &next); err != nil {
			return err
		}
		out = next
		u.emit(eventbus.TypeOracleAdded, id.String(), map[string]string{"authority": caller.String()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) Registry(ctx context.Context) (*oracle.Registry, error) {
	defer l.reading(registryKey)()
	return l.view().registry.Get(ctx)
}

// IsAuthorized reports whether id may submit attestations, by the stored
// registry or any extra authorizer.
func (l *Ledger) IsAuthorized(ctx context.Context, id identity.ID) (bool, error) {
	defer l.reading(registryKey)()
	return l.authorizer(l.view().registry).IsAuthorized(ctx, id)
}

// SubmitAttestation credits agentID with an achievement reported by an
// authorized oracle. The registry is held shared for the whole transition
// so a membership change cannot land between the check and the credit.
func (l *Ledger) SubmitAttestation(ctx context.Context, agentID identity.ID, s oracle.Submission) (*oracle.Attestation, error) {
	if err := validIDs(agentID, s.Oracle); err != nil {
		return nil, err
	}
	id := ulid.Make().String()
	var out oracle.Attestation
	err := l.transactReading(ctx, "SubmitAttestation", []string{agentKey(agentID)}, []string{registryKey}, func(u *unit) error {
		authorized, err := l.authorizer(u.registry).IsAuthorized(ctx, s.Oracle)
		if err != nil {
			return err
		}
		p, err := u.agents.Get(ctx, agentID)
		if err != nil {
			return err
		}
		next, att, err := oracle.Attest(id, *p, s, authorized, u.now)
		if err != nil {
			return err
		}
		if err := u.agents.Update(ctx, &next); err != nil {
			return err
		}
		if err := u.attestations.Create(ctx, &att); err != nil {
			return err
		}
		out = att
		u.emit(eventbus.TypeAttested, agentID.String(), map[string]string{
			"oracle":   s.Oracle.String(),
			"category": string(s.Category),
			"amount":   strconv.FormatUint(s.Amount, 10),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Ledger) ListAttestations(ctx context.Context, agentID identity.ID) ([]*oracle.Attestation, error) {
	if err := validIDs(agentID); err != nil {
		return nil, err
	}
	return l.view().attestations.ListByAgent(ctx, agentID)
}
