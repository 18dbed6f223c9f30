package panicerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafe(t *testing.T) {
	assert.NoError(t, Safe(func() error { return nil })())

	boom := errors.New("boom")
	assert.ErrorIs(t, Safe(func() error { return boom })(), boom)

	err := Safe(func() error { panic("kaboom") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestSafeContext(t *testing.T) {
	ctx := context.Background()
	err := SafeContext("dispatcher", func(context.Context) error { panic("nil map") })(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dispatcher: ")
	assert.Contains(t, err.Error(), "nil map")

	assert.NoError(t, Worker("forwarder", func(context.Context) {})(ctx))
}
