package custody

import (
	"context"
	"log/slog"

	"github.com/agentrep/trustledger/internal/eventbus"
)

type Dispatcher struct {
	eventBus  *eventbus.Bus
	custodian Custodian
}

func NewDispatcher(eventBus *eventbus.Bus, custodian Custodian) *Dispatcher {
	return &Dispatcher{
		eventBus:  eventBus,
		custodian: custodian,
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	subID, ch := d.eventBus.Subscribe(256)
	defer d.eventBus.Unsubscribe(subID)

	slog.Info("custody dispatcher started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("custody dispatcher stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if event.Type.IsCustodyIntent() {
				d.handle(ctx, event)
			}
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, event *eventbus.Event) {
	in, err := IntentFromEvent(event)
	if err != nil {
		slog.Error("custody dispatcher: malformed intent", "id", event.ID, "error", err)
		return
	}
	if err := d.custodian.Execute(ctx, in); err != nil {
		slog.Error("custody dispatcher: custodian failed", "id", event.ID, "type", event.Type, "error", err)
		return
	}
	slog.Debug("custody intent executed", "id", event.ID, "type", event.Type, "to", in.To, "amount", in.Amount)
}
