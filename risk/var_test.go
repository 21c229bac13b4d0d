package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

func TestQuantile(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		confidence float64
		nu         float64
		want       float64
	}{
		{"95% nu=5", 0.95, 5, 2.015048},
		{"99% nu=5", 0.99, 5, 3.364930},
		{"95% nu=10", 0.95, 10, 1.812461},
		{"95% near normal", 0.95, 1e6, 1.644855},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Quantile(tt.confidence, tt.nu)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-4)
		})
	}
}

func TestQuantileRejectsBadInput(t *testing.T) {
	t.Parallel()

	for _, c := range []float64{0, 1, -0.5, math.NaN()} {
		_, err := Quantile(c, 5)
		require.Error(t, err)
		assert.Equal(t, apperr.NonFiniteResult, apperr.KindOf(err))
	}
	for _, nu := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Quantile(0.95, nu)
		require.Error(t, err)
		assert.Equal(t, apperr.NonFiniteResult, apperr.KindOf(err))
	}
}

func TestComputeVaRScaling(t *testing.T) {
	t.Parallel()

	vol := 0.003
	daily, horizon, err := ComputeVaR(vol, 5, 61, 0.95)
	require.NoError(t, err)
	assert.InDelta(t, 2.015048*vol, daily, 1e-6)
	assert.InDelta(t, daily*math.Sqrt(61), horizon, 1e-12)

	one, oneH, err := ComputeVaR(vol, 5, 1, 0.95)
	require.NoError(t, err)
	assert.Equal(t, one, oneH)
}

func TestComputeVaRMonotoneInHorizon(t *testing.T) {
	t.Parallel()

	prev := 0.0
	for h := 1; h <= 400; h++ {
		_, got, err := ComputeVaR(0.003, 6, h, 0.95)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, prev, "horizon %d", h)
		prev = got
	}
}

func TestComputeVaRMonotoneInConfidence(t *testing.T) {
	t.Parallel()

	for _, nu := range []float64{2.5, 5, 30} {
		prev := 0.0
		for c := 0.51; c < 0.999; c += 0.01 {
			daily, _, err := ComputeVaR(0.003, nu, 10, c)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, daily, prev, "nu %v confidence %v", nu, c)
			prev = daily
		}
	}
}

func TestComputeVaRNonFinite(t *testing.T) {
	t.Parallel()

	_, _, err := ComputeVaR(math.Inf(1), 5, 10, 0.95)
	require.Error(t, err)
	assert.Equal(t, apperr.NonFiniteResult, apperr.KindOf(err))

	_, _, err = ComputeVaR(0.003, math.NaN(), 10, 0.95)
	require.Error(t, err)
	assert.Equal(t, apperr.NonFiniteResult, apperr.KindOf(err))

	_, _, err = ComputeVaR(0.003, 5, 0, 0.95)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidHorizon, apperr.KindOf(err))
}
