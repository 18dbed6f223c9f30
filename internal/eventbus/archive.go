package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/agentrep/trustledger/pkg/storage"
)

const archiveNamespace = "event"

// Archive persists every published event under event/<yyyy-mm-dd>/<id>.json,
// keyed by the ledger time the event was stamped with.
type Archive struct {
	eventBus *Bus
	storage  storage.Storage
}

func NewArchive(eventBus *Bus, s storage.Storage) *Archive {
	return &Archive{eventBus: eventBus, storage: s}
}

func archiveDay(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

func archivePath(e *Event) string {
	return path.Join(archiveNamespace, archiveDay(time.Unix(e.CreatedAt, 0)), e.ID+".json")
}

func (a *Archive) Start(ctx context.Context) {
	subID, ch := a.eventBus.Subscribe(1024)
	defer a.eventBus.Unsubscribe(subID)

	slog.Info("event archive started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("event archive stopped")
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := a.Write(ctx, event); err != nil {
				slog.Error("failed to archive event", "id", event.ID, "type", event.Type, "error", err)
			}
		}
	}
}

func (a *Archive) Write(ctx context.Context, e *Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := a.storage.Write(ctx, archivePath(e), data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// ReadDay returns the events stamped on day in publication order.
func (a *Archive) ReadDay(ctx context.Context, day time.Time) ([]*Event, error) {
	paths, err := a.storage.List(ctx, path.Join(archiveNamespace, archiveDay(day)))
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]*Event, 0, len(paths))
	for _, p := range paths {
		data, err := a.storage.Read(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("failed to read event %s: %w", p, err)
		}
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			slog.Warn("skipping unreadable event", "path", p, "error", err)
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

// ReadDayByType is ReadDay filtered to one event type.
func (a *Archive) ReadDayByType(ctx context.Context, day time.Time, t Type) ([]*Event, error) {
	all, err := a.ReadDay(ctx, day)
	if err != nil {
		return nil, err
	}
	var out []*Event
	for _, e := range all {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}
