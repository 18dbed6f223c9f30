package trust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeight(t *testing.T) {
	tests := []struct {
		name              string
		rep, min, maxMult uint64
		want              uint64
	}{
		{"below threshold", 50, 100, 30_000, 10_000},
		{"at threshold", 100, 100, 30_000, 10_000},
		{"zero threshold", 5_000, 0, 30_000, 10_000},
		{"linear bonus", 150, 100, 30_000, 20_000},
		{"capped", 10_000, 100, 30_000, 30_000},
		{"neutral ceiling", 10_000, 100, 10_000, 10_000},
		// (2^63-1)*40000 saturates to MaxUint64 before dividing by 2^63.
		{"huge reputation saturates", math.MaxUint64, 1 << 63, 50_000, 10_001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Weight(tt.rep, tt.min, tt.maxMult))
		})
	}
}

func TestWeight_MonotoneAndBounded(t *testing.T) {
	for _, min := range []uint64{1, 7, 100, 1_000, 1 << 40} {
		for _, maxMult := range []uint64{10_000, 20_000, 30_000, 50_000} {
			prev := uint64(0)
			for _, rep := range []uint64{0, 1, min / 2, min, min + 1, 2 * min, 3 * min, 100 * min, math.MaxUint64 / 2, math.MaxUint64} {
				w := Weight(rep, min, maxMult)
				assert.GreaterOrEqual(t, w, prev, "rep=%d min=%d max=%d", rep, min, maxMult)
				assert.LessOrEqual(t, w, maxMult)
				if rep <= min {
					assert.Equal(t, NeutralWeight, w)
				}
				prev = w
			}
		}
	}
}

func TestWeightedImpact(t *testing.T) {
	assert.Equal(t, uint64(150), WeightedImpact(100, 15_000))
	assert.Equal(t, uint64(0), WeightedImpact(1, 9_999))
	assert.Equal(t, uint64(math.MaxUint64/10_000), WeightedImpact(math.MaxUint64, 30_000))
}

func TestPropagate(t *testing.T) {
	// flow = 1000*20000/2000 + 1000*10000/2000 = 15000
	// propagated = 15000*0.85 + 1000*0.15 = 12900, capped to +100
	p := Propagate(1_000, []Incoming{
		{Voucher: "a", Reputation: 1_000, Weight: 20_000},
		{Voucher: "b", Reputation: 1_000, Weight: 10_000},
	})
	assert.Equal(t, uint64(15_000), p.TrustFlow)
	assert.Equal(t, uint64(12_900), p.Propagated)
	assert.Equal(t, uint64(100), p.Increase)
	assert.True(t, p.Changed())
}

func TestPropagate_NoIncrease(t *testing.T) {
	p := Propagate(10_000, []Incoming{{Voucher: "a", Reputation: 5, Weight: 10_000}})
	assert.Equal(t, uint64(0), p.Increase)
	assert.False(t, p.Changed())

	p = Propagate(10_000, nil)
	assert.Equal(t, uint64(0), p.TrustFlow)
	assert.Equal(t, uint64(0), p.Increase)

	p = Propagate(10_000, []Incoming{{Voucher: "a", Reputation: 0, Weight: 50_000}})
	assert.Equal(t, uint64(0), p.TrustFlow)
	assert.False(t, p.Changed())
}

func TestPropagate_BoundedForAdversarialInput(t *testing.T) {
	inputs := [][]Incoming{
		{{Voucher: "whale", Reputation: math.MaxUint64, Weight: 50_000}},
		{
			{Voucher: "whale", Reputation: math.MaxUint64, Weight: 50_000},
			{Voucher: "whale2", Reputation: math.MaxUint64, Weight: 50_000},
		},
		{{Voucher: "sybil", Reputation: 1, Weight: math.MaxUint64}},
	}
	for _, score := range []uint64{0, 9, 10, 1_000, math.MaxUint64 - 1, math.MaxUint64} {
		for _, in := range inputs {
			p := Propagate(score, in)
			assert.LessOrEqual(t, p.Increase, score/10, "score=%d", score)
			assert.GreaterOrEqual(t, score+p.Increase, score, "score=%d", score)
		}
	}
}

func TestPropagate_RepeatedCallsGrowGeometrically(t *testing.T) {
	in := []Incoming{{Voucher: "a", Reputation: 1_000_000, Weight: 50_000}}
	score := uint64(1_000)
	for i := 0; i < 5; i++ {
		p := Propagate(score, in)
		assert.Equal(t, score/10, p.Increase)
		score += p.Increase
	}
	assert.Equal(t, uint64(1_610), score)
}

func TestPropagate_SaturatesProductsBeforeDividing(t *testing.T) {
	// MaxUint64*50000 saturates to MaxUint64, then divides by the saturated
	// total of two whales (MaxUint64): one unit per voucher.
	p := Propagate(1_000, []Incoming{
		{Voucher: "whale", Reputation: math.MaxUint64, Weight: 50_000},
		{Voucher: "whale2", Reputation: math.MaxUint64, Weight: 50_000},
	})
	assert.Equal(t, uint64(2), p.TrustFlow)
	assert.Equal(t, uint64(151), p.Propagated)
	assert.False(t, p.Changed())

	// score*1500 clamps to MaxUint64 before the division by 10000.
	p = Propagate(math.MaxUint64, []Incoming{{Voucher: "a", Reputation: 1, Weight: 10_000}})
	assert.Equal(t, uint64(10_000), p.TrustFlow)
	assert.Equal(t, uint64(math.MaxUint64)/10_000+8_500, p.Propagated)
	assert.False(t, p.Changed())
}
