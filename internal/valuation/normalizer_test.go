package valuation

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"deal-checker/pkg/logger"
)

func ptr[T any](v T) *T {
	return &v
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want float64
	}{
		{name: "missing", in: nil, want: 50},
		{name: "nan", in: ptr(math.NaN()), want: 50},
		{name: "inf", in: ptr(math.Inf(1)), want: 50},
		{name: "ten scale", in: ptr(8.5), want: 85},
		{name: "ten scale upper bound", in: ptr(10.0), want: 100},
		{name: "ten scale low", in: ptr(1.5), want: 15},
		{name: "ten scale one is the floor", in: ptr(1.0), want: 0},
		{name: "fraction stays low", in: ptr(0.72), want: 0},
		{name: "thousand scale", in: ptr(850.0), want: 85},
		{name: "overflow", in: ptr(5000.0), want: 90},
		{name: "in range", in: ptr(64.0), want: 64},
		{name: "above range", in: ptr(150.0), want: 100},
		{name: "negative", in: ptr(-12.0), want: 0},
		{name: "zero", in: ptr(0.0), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeScore(tt.in))
		})
	}
}

func TestNormalizeScore_BoundedAndIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	inputs := []float64{-1e9, -1, 0, 0.1, 0.1000001, 1, 1.0000001, 9.99, 10, 10.01, 299.9, 300, 1000, 1000.01, 1e12}
	for i := 0; i < 2000; i++ {
		inputs = append(inputs, rng.Float64()*2400-200)
	}

	for _, in := range inputs {
		once := NormalizeScore(ptr(in))
		assert.GreaterOrEqual(t, once, 0.0, "input %v", in)
		assert.LessOrEqual(t, once, 100.0, "input %v", in)
		assert.Equal(t, once, NormalizeScore(ptr(once)), "input %v", in)
	}
}

func TestNormalizeROI(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want float64
	}{
		{name: "missing", in: nil, want: 0},
		{name: "nan", in: ptr(math.NaN()), want: 0},
		{name: "in range", in: ptr(-12.5), want: -12.5},
		{name: "basis points", in: ptr(1500.0), want: 15},
		{name: "negative basis points", in: ptr(-2500.0), want: -25},
		{name: "clipped high", in: ptr(150.0), want: 60},
		{name: "clipped low", in: ptr(-95.0), want: -80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeROI(tt.in))
		})
	}

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		v := NormalizeROI(ptr(rng.NormFloat64() * 1e4))
		assert.GreaterOrEqual(t, v, -80.0)
		assert.LessOrEqual(t, v, 60.0)
	}
}

func TestNormalizer_MatchesPureFunctions(t *testing.T) {
	n := NewNormalizer(logger.NewNop())
	ctx := context.Background()

	assert.Equal(t, 85.0, n.Score(ctx, "deal_score", ptr(8.5)))
	assert.Equal(t, 50.0, n.Score(ctx, "deal_score", nil))
	assert.Equal(t, 12.0, n.ROI(ctx, "roi", ptr(1200.0)))
}
