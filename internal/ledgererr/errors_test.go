package ledgererr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentrep/trustledger/pkg/cerr"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("vouch: %w", ErrSelfVouchNotAllowed)
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrSelfVouchNotAllowed))
	assert.Equal(t, Kind(0), KindOf(errors.New("boom")))
	assert.Equal(t, KindConflict, KindOf(ErrSelfSlashNotAllowed))
	assert.False(t, errors.Is(ErrSelfSlashNotAllowed, ErrSelfVouchNotAllowed))
}

func TestToCerr(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code cerr.Code
	}{
		{"validation", ErrNameTooLong, cerr.InvalidArgument},
		{"timing", ErrVotingPeriodActive, cerr.FailedPrecondition},
		{"duplicate", ErrAgentAlreadyRegistered, cerr.AlreadyExists},
		{"missing", ErrAgentNotRegistered, cerr.NotFound},
		{"arithmetic", ErrMathOverflow, cerr.OutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := ToCerr(fmt.Errorf("op: %w", tt.err))
			assert.True(t, cerr.IsCode(out, tt.code))
			assert.ErrorIs(t, out, tt.err)
		})
	}
}

func TestToCerr_ValidationCarriesViolation(t *testing.T) {
	out := ToCerr(ErrDescriptionTooLong)
	v := cerr.Violations(out)
	require.Len(t, v, 1)
	assert.Equal(t, "DescriptionTooLong", v[0].GetRuleId())
}

func TestToCerr_PassThrough(t *testing.T) {
	assert.Nil(t, ToCerr(nil))
	plain := errors.New("boom")
	assert.Same(t, plain, ToCerr(plain))
	cErr := cerr.NewError(cerr.Internal, "server error", nil)
	assert.Same(t, cErr, ToCerr(cErr))
}
