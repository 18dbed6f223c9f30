// Package custody hands value movements the ledger decides on to whoever
// owns the balances. The ledger itself only records intents.
package custody

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/agentrep/trustledger/internal/eventbus"
)

// Intent is one requested movement. Amount is zero for badge mints.
type Intent struct {
	EventID string
	Type    eventbus.Type
	From    string
	To      string
	Amount  uint64
	Ref     string
	At      int64
}

type Custodian interface {
	Execute(ctx context.Context, in Intent) error
}

// Metadata keys carried by custody intent events.
const (
	MetaFrom   = "from"
	MetaTo     = "to"
	MetaAmount = "amount"
	MetaRef    = "ref"
)

func IntentFromEvent(ev *eventbus.Event) (Intent, error) {
	if !ev.Type.IsCustodyIntent() {
		return Intent{}, fmt.Errorf("event %s of type %s is not a custody intent", ev.ID, ev.Type)
	}
	in := Intent{
		EventID: ev.ID,
		Type:    ev.Type,
		From:    ev.Metadata[MetaFrom],
		To:      ev.Metadata[MetaTo],
		Ref:     ev.Metadata[MetaRef],
		At:      ev.CreatedAt,
	}
	if s, ok := ev.Metadata[MetaAmount]; ok {
		amount, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Intent{}, fmt.Errorf("event %s: bad amount %q: %w", ev.ID, s, err)
		}
		in.Amount = amount
	}
	return in, nil
}

// Journal records intents in memory.
type Journal struct {
	mu      sync.Mutex
	intents []Intent
}

func NewJournal() *Journal {
	return &Journal{}
}

func (j *Journal) Execute(_ context.Context, in Intent) error {
	j.mu.Lock()
	j.intents = append(j.intents, in)
	j.mu.Unlock()
	return nil
}

func (j *Journal) Intents() []Intent {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Intent(nil), j.intents...)
}

// Owed sums the amounts of intents of type t addressed to account.
func (j *Journal) Owed(t eventbus.Type, account string) uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	var total uint64
	for _, in := range j.intents {
		if in.Type == t && in.To == account {
			total += in.Amount
		}
	}
	return total
}
