package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Publisher is the subset of *nats.Conn the forwarder needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATSForwarder relays every bus event to NATS as JSON on
// "<subject>.<event type>".
type NATSForwarder struct {
	bus     *Bus
	pub     Publisher
	subject string
}

func NewNATSForwarder(bus *Bus, pub Publisher, subject string) *NATSForwarder {
	return &NATSForwarder{bus: bus, pub: pub, subject: subject}
}

// DialNATS connects with reconnects enabled. Callers Drain the connection on
// shutdown.
func DialNATS(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("trustledger"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				slog.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

func (f *NATSForwarder) Start(ctx context.Context) {
	subID, ch := f.bus.Subscribe(256)
	defer f.bus.Unsubscribe(subID)

	slog.Info("nats forwarder started", "subject", f.subject)
	for {
		select {
		case <-ctx.Done():
			slog.Info("nats forwarder stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			f.forward(event)
		}
	}
}

func (f *NATSForwarder) forward(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("nats forwarder: failed to marshal event", "id", event.ID, "error", err)
		return
	}
	subject := f.subject + "." + string(event.Type)
	if err := f.pub.Publish(subject, data); err != nil {
		slog.Error("nats forwarder: failed to publish", "subject", subject, "id", event.ID, "error", err)
	}
}
