package eventbus

import (
	"sync"

	"github.com/oklog/ulid/v2"
)

type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]chan *Event
}

func New() *Bus {
	return &Bus{
		subscribers: make(map[string]chan *Event),
	}
}

func (b *Bus) Subscribe(bufSize int) (string, <-chan *Event) {
	id := ulid.Make().String()
	ch := make(chan *Event, bufSize)
	b.mu.Lock()
	b.subscribers[id] = ch
	b.mu.Unlock()
	return id, ch
}

func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	b.mu.Unlock()
}

func (b *Bus) Publish(event *Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			// buffer full, drop event for this subscriber
		}
	}
}

// PublishNew stamps an event with a fresh id and the ledger time now.
func (b *Bus) PublishNew(eventType Type, resourceID string, now int64, metadata map[string]string) *Event {
	event := &Event{
		ID:         ulid.Make().String(),
		Type:       eventType,
		ResourceID: resourceID,
		Metadata:   metadata,
		CreatedAt:  now,
	}
	b.Publish(event)
	return event
}

// Subscribers returns the number of live subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}
