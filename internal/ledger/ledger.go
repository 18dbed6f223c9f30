// Package ledger runs every reputation transition as one unit of work: it
// locks the touched record keys, loads the records, runs the engine, writes
// the results and publishes the resulting events.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/agentrep/trustledger/internal/agent"
	agentrepo "github.com/agentrep/trustledger/internal/agent/repositoryimpl"
	"github.com/agentrep/trustledger/internal/badge"
	badgerepo "github.com/agentrep/trustledger/internal/badge/repositoryimpl"
	"github.com/agentrep/trustledger/internal/clock"
	"github.com/agentrep/trustledger/internal/eventbus"
	"github.com/agentrep/trustledger/internal/governance"
	governancerepo "github.com/agentrep/trustledger/internal/governance/repositoryimpl"
	"github.com/agentrep/trustledger/internal/identity"
	"github.com/agentrep/trustledger/internal/ledgererr"
	"github.com/agentrep/trustledger/internal/oracle"
	oraclerepo "github.com/agentrep/trustledger/internal/oracle/repositoryimpl"
	"github.com/agentrep/trustledger/internal/protocol"
	protocolrepo "github.com/agentrep/trustledger/internal/protocol/repositoryimpl"
	"github.com/agentrep/trustledger/internal/vouch"
	vouchrepo "github.com/agentrep/trustledger/internal/vouch/repositoryimpl"
	"github.com/agentrep/trustledger/internal/zkproof"
	zkproofrepo "github.com/agentrep/trustledger/internal/zkproof/repositoryimpl"
	"github.com/agentrep/trustledger/pkg/cerr"
	"github.com/agentrep/trustledger/pkg/clog"
	"github.com/agentrep/trustledger/pkg/keylock"
	"github.com/agentrep/trustledger/pkg/storage"
)

type Ledger struct {
	storage  storage.Storage
	locks    *keylock.Locker
	clock    clock.Clock
	bus      *eventbus.Bus
	extra    []oracle.Authorizer
	verifier zkproof.Verifier
}

type Option func(*Ledger)

func WithClock(c clock.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

func WithEventBus(b *eventbus.Bus) Option {
	return func(l *Ledger) { l.bus = b }
}

// WithAuthorizer adds an oracle authorizer consulted alongside the stored
// registry.
func WithAuthorizer(a oracle.Authorizer) Option {
	return func(l *Ledger) { l.extra = append(l.extra, a) }
}

func WithVerifier(v zkproof.Verifier) Option {
	return func(l *Ledger) { l.verifier = v }
}

func New(s storage.Storage, opts ...Option) *Ledger {
	l := &Ledger{
		storage:  s,
		locks:    keylock.New(),
		clock:    clock.NewSystem(),
		bus:      eventbus.New(),
		verifier: zkproof.ReferenceVerifier{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) EventBus() *eventbus.Bus {
	return l.bus
}

// repos binds every repository to one storage view.
type repos struct {
	agents       agent.Repository
	vouches      vouch.Repository
	proposals    governance.Repository
	votes        governance.VoteRepository
	protocol     protocol.Repository
	registry     oracle.RegistryRepository
	attestations oracle.AttestationRepository
	badges       badge.Repository
	proofs       zkproof.Repository
	keys         zkproof.KeyRepository
}

func newRepos(s storage.Storage) repos {
	return repos{
		agents:       agentrepo.NewYAMLRepository(s),
		vouches:      vouchrepo.NewYAMLRepository(s),
		proposals:    governancerepo.NewYAMLRepository(s),
		votes:        governancerepo.NewYAMLVoteRepository(s),
		protocol:     protocolrepo.NewYAMLRepository(s),
		registry:     oraclerepo.NewYAMLRegistryRepository(s),
		attestations: oraclerepo.NewYAMLAttestationRepository(s),
		badges:       badgerepo.NewYAMLRepository(s),
		proofs:       zkproofrepo.NewYAMLRepository(s),
		keys:         zkproofrepo.NewYAMLKeyRepository(s),
	}
}

type pendingEvent struct {
	typ      eventbus.Type
	resource string
	meta     map[string]string
}

// unit is the state of one transition in progress.
type unit struct {
	repos
	now    int64
	events []pendingEvent
}

func (u *unit) emit(typ eventbus.Type, resource string, meta map[string]string) {
	u.events = append(u.events, pendingEvent{typ: typ, resource: resource, meta: meta})
}

// transact runs fn with keys locked exclusively and the protocol
// configuration locked shared. Writes made by fn stay buffered until fn
// succeeds; events are published only after they are committed.
func (l *Ledger) transact(ctx context.Context, op string, keys []string, fn func(u *unit) error) error {
	return l.transactReading(ctx, op, keys, nil, fn)
}

// transactReading is transact with extra keys held shared, for records fn
// reads but never writes.
func (l *Ledger) transactReading(ctx context.Context, op string, keys, reads []string, fn func(u *unit) error) error {
	unlock := l.locks.Acquire(keys, append([]string{protocolKey}, reads...))
	defer unlock()

	clog.AddOperation(ctx, op)
	tx := storage.Begin(l.storage)
	u := &unit{repos: newRepos(tx), now: l.clock.Now()}
	if err := fn(u); err != nil {
		tx.Rollback()
		clog.Log(ctx, rejectionLevel(err), "transition rejected", "op", op, "error", err)
		return err
	}
	touched := tx.Touched()
	if err := tx.Commit(ctx); err != nil {
		slog.ErrorContext(ctx, "transition rejected", "op", op, "records", touched, "error", err)
		return err
	}

	for _, e := range u.events {
		l.bus.PublishNew(e.typ, e.resource, u.now, e.meta)
	}
	slog.InfoContext(ctx, "transition committed", "op", op, "records", touched)
	return nil
}

// view reads the backend directly, outside any transition. Writes reach
// the backend only while a transition holds its keys exclusively, so a
// caller holding the matching shared keys sees whole transitions.
func (l *Ledger) view() repos {
	return newRepos(l.storage)
}

// reading holds keys shared until the returned function is called.
func (l *Ledger) reading(keys ...string) (unlock func()) {
	return l.locks.RLock(keys...)
}

func rejectionLevel(err error) clog.Level {
	var e *ledgererr.Error
	if errors.As(err, &e) {
		return clog.ConnectCodeToLevel(e.Code().ConnectCode())
	}
	var cErr *cerr.Error
	if errors.As(err, &cErr) {
		return clog.ConnectCodeToLevel(cErr.Code.ConnectCode())
	}
	return clog.LevelError
}

func validIDs(ids ...identity.ID) error {
	for _, id := range ids {
		if err := id.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ledgererr.ErrInvalidParameter, err)
		}
	}
	return nil
}

func agentKey(id identity.ID) string {
	return identity.Key(identity.NamespaceAgent, id.String())
}

var (
	protocolKey = identity.Key(identity.NamespaceProtocol, "config")
	registryKey = identity.Key(identity.NamespaceOracle, "registry")
	vkKey       = identity.Key(identity.NamespaceProof, "verification_key")
)

// params loads the protocol parameters through the unit, under the shared
// protocol lock every transition holds.
func (u *unit) params(ctx context.Context) (protocol.Params, error) {
	c, err := u.protocol.Get(ctx)
	if err != nil {
		return protocol.Params{}, err
	}
	return c.Params, nil
}

// Genesis stores the initial protocol parameters and, when an authority is
// named, the oracle registry with its starting members.
func (l *Ledger) Genesis(ctx context.Context, g *protocol.Genesis) error {
	if err := g.Params.Validate(); err != nil {
		return err
	}
	return l.transact(ctx, "Genesis", []string{protocolKey, registryKey}, func(u *unit) error {
		if err := u.protocol.Initialize(ctx, &protocol.Config{Params: g.Params, UpdatedAt: u.now}); err != nil {
			return err
		}
		if g.OracleAuthority == "" {
			return nil
		}
		reg, err := oracle.NewRegistry(g.OracleAuthority, u.now)
		if err != nil {
			return err
		}
		for _, o := range g.Oracles {
			if reg, err = oracle.AddOracle(reg, g.OracleAuthority, o, u.now); err != nil {
				return fmt.Errorf("genesis oracle %s: %w", o, err)
			}
		}
		if err := u.registry.Create(ctx, &reg); err != nil {
			return err
		}
		u.emit(eventbus.TypeRegistryInitialized, g.OracleAuthority.String(), map[string]string{"oracles": fmt.Sprint(len(reg.Oracles))})
		return nil
	})
}

// Config returns the stored protocol configuration.
func (l *Ledger) Config(ctx context.Context) (*protocol.Config, error) {
	defer l.reading(protocolKey)()
	return l.view().protocol.Get(ctx)
}
