package eventbus

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_PublishSubscribe(t *testing.T) {
	bus := New()
	id, ch := bus.Subscribe(4)

	ev := bus.PublishNew(TypeAgentRegistered, "alice", 10, map[string]string{"name": "Alice"})
	got := <-ch
	assert.Same(t, ev, got)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, int64(10), got.CreatedAt)

	bus.Unsubscribe(id)
	_, open := <-ch
	assert.False(t, open)
	bus.Unsubscribe(id)
}

func TestBus_DropsWhenBufferFull(t *testing.T) {
	bus := New()
	_, ch := bus.Subscribe(1)
	bus.PublishNew(TypeVouched, "a", 1, nil)
	bus.PublishNew(TypeVouched, "b", 2, nil)
	assert.Len(t, ch, 1)
	assert.Equal(t, "a", (<-ch).ResourceID)
}

func TestType_IsCustodyIntent(t *testing.T) {
	assert.True(t, TypeStakeLocked.IsCustodyIntent())
	assert.True(t, TypeBountyOwed.IsCustodyIntent())
	assert.False(t, TypeSlashed.IsCustodyIntent())
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs map[string][]byte
}

func (p *recordingPublisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs[subject] = data
	return nil
}

func (p *recordingPublisher) get(subject string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.msgs[subject]
	return data, ok
}

func TestNATSForwarder(t *testing.T) {
	bus := New()
	pub := &recordingPublisher{msgs: map[string][]byte{}}
	fwd := NewNATSForwarder(bus, pub, "ledger")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		fwd.Start(ctx)
		close(done)
	}()

	// Wait for the forwarder to subscribe before publishing.
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, 5*time.Millisecond)

	bus.PublishNew(TypeSlashed, "mallory", 7, map[string]string{"amount": "200"})

	var data []byte
	require.Eventually(t, func() bool {
		var ok bool
		data, ok = pub.get("ledger.agent.slashed")
		return ok
	}, time.Second, 5*time.Millisecond)

	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, "mallory", ev.ResourceID)
	assert.Equal(t, "200", ev.Metadata["amount"])

	cancel()
	<-done
}
