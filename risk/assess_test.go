package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

func TestComputeReferenceScenario(t *testing.T) {
	t.Parallel()

	req := ReferenceRequest()
	horizon, err := Validate(req.AmountUSD, req.InvoiceDate, req.SettlementDate)
	require.NoError(t, err)
	require.Equal(t, 61, horizon)

	// model volatility well above the band, so the clamp pins it to VolMax
	est := VolatilityEstimate{Model: 1.0, Nu: 5}
	res, err := Compute(req, horizon, 10.00, est, DefaultPolicy())
	require.NoError(t, err)

	assert.True(t, res.Volatility.Clamped)
	assert.InDelta(t, 0.2978, float64(res.Volatility.Used), 1e-4)
	assert.InDelta(t, 0.60, float64(res.DailyVaR), 1e-3)
	assert.InDelta(t, 4.686, float64(res.HorizonVaR), 1e-3)
	assert.InDelta(t, 100000, res.BookedAmount, 1e-9)
	assert.InDelta(t, 4686, res.PotentialLoss, 1)
	assert.InDelta(t, 95314, res.EstimatedSettlementAmount, 1)
	assert.InDelta(t, res.BookedAmount-res.PotentialLoss, res.EstimatedSettlementAmount, 1e-9)

	require.NotNil(t, res.Stress)
	assert.Equal(t, 0.99, res.Stress.Confidence)
	assert.Greater(t, float64(res.Stress.HorizonVaR), float64(res.HorizonVaR))
	assert.Greater(t, res.Stress.Loss, res.PotentialLoss)
	assert.InDelta(t, res.Stress.HorizonVaR.Decimal()*100000, res.Stress.Loss, 1e-6)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "clamped")
}

func TestComputeWithoutStress(t *testing.T) {
	t.Parallel()

	req := ReferenceRequest()
	req.Stress = false
	res, err := Compute(req, 61, 10, VolatilityEstimate{Model: 0.25, Nu: 6}, DefaultPolicy())
	require.NoError(t, err)
	assert.Nil(t, res.Stress)
	assert.False(t, res.Volatility.Clamped)
	assert.InDelta(t, 0.25, float64(res.Volatility.Used), 1e-12)
	assert.Empty(t, res.Warnings)
}

func TestComputeClampDisabled(t *testing.T) {
	t.Parallel()

	policy := DefaultPolicy()
	policy.ClampEnabled = false

	res, err := Compute(ReferenceRequest(), 61, 10, VolatilityEstimate{Model: 1.0, Nu: 5}, policy)
	require.NoError(t, err)
	assert.False(t, res.Volatility.Clamped)
	assert.InDelta(t, 2.015048, float64(res.DailyVaR), 1e-4)

	_, err = Compute(ReferenceRequest(), 61, 10, VolatilityEstimate{Model: market.Percent(math.NaN()), Nu: 5}, policy)
	require.Error(t, err)
	assert.Equal(t, apperr.NonFiniteResult, apperr.KindOf(err))
}

func TestComputeFlagsSuspectNu(t *testing.T) {
	t.Parallel()

	res, err := Compute(ReferenceRequest(), 61, 10, VolatilityEstimate{Model: 0.25, Nu: 2.06}, DefaultPolicy())
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "nu=2.0600")
}

func TestComputeRejectsBadRate(t *testing.T) {
	t.Parallel()

	for _, rate := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := Compute(ReferenceRequest(), 61, rate, VolatilityEstimate{Model: 0.25, Nu: 5}, DefaultPolicy())
		require.Error(t, err)
		assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
	}
}

func TestAssessEndToEnd(t *testing.T) {
	t.Parallel()

	snap := syntheticSnapshot(1300, 2024, 10.05)
	res, err := Assess(ReferenceRequest(), snap, DefaultPolicy())
	require.NoError(t, err)

	band := DefaultBand()
	used := res.Volatility.Used.Decimal()
	assert.GreaterOrEqual(t, used, band.VolMin())
	assert.LessOrEqual(t, used, band.VolMax())
	assert.Equal(t, market.USDMAD.Name, res.Instrument)
	assert.Equal(t, 10.05, res.CurrentRate)
	assert.Equal(t, 61, res.HorizonDays)
	assert.InDelta(t, 100500, res.BookedAmount, 1e-9)
	assert.Greater(t, res.PotentialLoss, 0.0)
	assert.Greater(t, res.Volatility.Nu, 2.0)
	require.NotNil(t, res.Stress)
}

func TestAssessIsIdempotent(t *testing.T) {
	t.Parallel()

	snap := syntheticSnapshot(800, 99, 10.0)
	a, err := Assess(ReferenceRequest(), snap, DefaultPolicy())
	require.NoError(t, err)
	b, err := Assess(ReferenceRequest(), snap, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAssessValidatesBeforeFitting(t *testing.T) {
	t.Parallel()

	req := ReferenceRequest()
	req.AmountUSD = -5
	_, err := Assess(req, market.Snapshot{}, DefaultPolicy())
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidAmount, apperr.KindOf(err))
}

func TestAssessShortHistory(t *testing.T) {
	t.Parallel()

	snap := syntheticSnapshot(100, 1, 10.0)
	_, err := Assess(ReferenceRequest(), snap, DefaultPolicy())
	require.Error(t, err)
	assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
}

func TestAssessSkipsMissingRows(t *testing.T) {
	t.Parallel()

	snap := syntheticSnapshot(600, 5, 10.0)
	snap.Series.Points[100].Price = math.NaN()
	snap.Series.Points[200].Price = math.NaN()

	res, err := Assess(ReferenceRequest(), snap, DefaultPolicy())
	require.NoError(t, err)
	assert.Greater(t, res.PotentialLoss, 0.0)
}
