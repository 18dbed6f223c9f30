package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/pkg/storage"
)

func TestArchive_ReadDay(t *testing.T) {
	ctx := context.Background()
	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus := New()
	archive := NewArchive(bus, storage.NewMemoryStorage())

	first := bus.PublishNew(TypeAgentRegistered, "alice", day.Unix(), nil)
	second := bus.PublishNew(TypeVouched, "alice", day.Unix()+60, map[string]string{"voucher": "bob"})
	nextDay := bus.PublishNew(TypeDecayed, "alice", day.Add(24*time.Hour).Unix(), nil)
	for _, e := range []*Event{first, second, nextDay} {
		require.NoError(t, archive.Write(ctx, e))
	}

	events, err := archive.ReadDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, first.ID, events[0].ID)
	assert.Equal(t, "bob", events[1].Metadata["voucher"])

	vouches, err := archive.ReadDayByType(ctx, day, TypeVouched)
	require.NoError(t, err)
	require.Len(t, vouches, 1)
	assert.Equal(t, second.ID, vouches[0].ID)

	empty, err := archive.ReadDay(ctx, day.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestArchive_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := New()
	archive := NewArchive(bus, storage.NewMemoryStorage())

	done := make(chan struct{})
	go func() {
		archive.Start(ctx)
		close(done)
	}()
	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	bus.PublishNew(TypeSlashed, "mallory", now.Unix(), nil)
	require.Eventually(t, func() bool {
		events, err := archive.ReadDay(ctx, now)
		return err == nil && len(events) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.Equal(t, 0, bus.Subscribers())
}
