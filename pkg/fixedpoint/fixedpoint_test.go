package fixedpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaturatingOps(t *testing.T) {
	tests := []struct {
		name string
		got  uint64
		want uint64
	}{
		{"add", Add(2, 3), 5},
		{"add saturates", Add(math.MaxUint64, 1), math.MaxUint64},
		{"sub", Sub(5, 3), 2},
		{"sub floors at zero", Sub(3, 5), 0},
		{"sub equal", Sub(7, 7), 0},
		{"mul", Mul(6, 7), 42},
		{"mul saturates", Mul(math.MaxUint64/2, 3), math.MaxUint64},
		{"div", Div(10, 3), 3},
		{"div by zero", Div(10, 0), 0},
		{"min", Min(4, 9), 4},
		{"mul bps", MulBps(1000, 2000), 200},
		{"mul bps floors", MulBps(3, 5000), 1},
		{"mul bps saturates before dividing", MulBps(math.MaxUint64, 20_000), math.MaxUint64 / 10_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestCheckedOps(t *testing.T) {
	v, err := CheckedAdd(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)

	_, err = CheckedAdd(math.MaxUint64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	i, err := CheckedAddInt64(10, -4)
	require.NoError(t, err)
	assert.Equal(t, int64(6), i)

	_, err = CheckedAddInt64(math.MaxInt64, 1)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = CheckedAddInt64(math.MinInt64, -1)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = ToInt64(math.MaxUint64)
	require.ErrorIs(t, err, ErrOverflow)
}
