package volatility

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

var trueParams = Params{
	Mu:    0.005,
	Omega: -0.12,
	Alpha: 0.15,
	Gamma: -0.05,
	Beta:  0.95,
	Nu:    6,
}

// simulate draws n percentage returns from an EGARCH(1,1) with standardized
// Student-t shocks (integer nu).
func simulate(p Params, n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	dof := int(p.Nu)
	scale := math.Sqrt(float64(dof-2) / float64(dof))

	out := make([]float64, n)
	ln := p.Omega / (1 - p.Beta)
	for t := 0; t < n; t++ {
		var chi2 float64
		for k := 0; k < dof; k++ {
			g := rng.NormFloat64()
			chi2 += g * g
		}
		e := rng.NormFloat64() / math.Sqrt(chi2/float64(dof)) * scale
		out[t] = p.Mu + math.Exp(ln/2)*e
		ln = p.Omega + p.Alpha*(math.Abs(e)-sqrt2OverPi) + p.Gamma*e + p.Beta*ln
	}
	return out
}

func TestFitRecoversReasonableModel(t *testing.T) {
	returns := simulate(trueParams, 1500, 42)

	m, err := Fit(returns, DefaultOptions())
	require.NoError(t, err)

	p := m.Params
	assert.True(t, p.finite())
	assert.Equal(t, len(returns), m.Observations)
	assert.Len(t, m.Volatility(), len(returns))
	assert.Greater(t, p.Nu, nuMin)
	assert.LessOrEqual(t, p.Nu, nuMax)
	assert.Less(t, math.Abs(p.Beta), 1.0)
	assert.Greater(t, float64(m.LatestVolatility()), 0.0)
	assert.Greater(t, float64(m.Forecast()), 0.0)
	assert.Greater(t, m.Evaluations, 0)

	// the optimum must be at least as likely as the generating parameters
	assert.GreaterOrEqual(t, m.LogLikelihood, LogLikelihood(returns, trueParams)-1.0)
}

func TestFitIsDeterministic(t *testing.T) {
	returns := simulate(trueParams, 600, 7)

	a, err := Fit(returns, DefaultOptions())
	require.NoError(t, err)
	b, err := Fit(returns, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, a.Params, b.Params)
	assert.Equal(t, a.LogLikelihood, b.LogLikelihood)
	assert.Equal(t, a.LatestVolatility(), b.LatestVolatility())
}

func TestFitRejectsShortSeries(t *testing.T) {
	_, err := Fit(simulate(trueParams, MinReturns-1, 1), DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
}

func TestFitRejectsDegenerateInput(t *testing.T) {
	flat := make([]float64, 300)
	_, err := Fit(flat, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperr.ModelFitFailure, apperr.KindOf(err))

	withNaN := simulate(trueParams, 300, 3)
	withNaN[10] = math.NaN()
	_, err = Fit(withNaN, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperr.ModelFitFailure, apperr.KindOf(err))
}

func TestFitUnknownMethod(t *testing.T) {
	_, err := Fit(simulate(trueParams, 300, 5), Options{Method: "annealing"})
	require.Error(t, err)
	assert.Equal(t, apperr.ModelFitFailure, apperr.KindOf(err))
}

func TestFitEvaluationBudgetExhausted(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxEvaluations = 10
	_, err := Fit(simulate(trueParams, 300, 11), opts)
	require.Error(t, err)
	assert.Equal(t, apperr.ModelFitFailure, apperr.KindOf(err))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	got := decode(encode(trueParams))
	assert.InDelta(t, trueParams.Beta, got.Beta, 1e-12)
	assert.InDelta(t, trueParams.Nu, got.Nu, 1e-9)
	assert.Equal(t, trueParams.Omega, got.Omega)
}

func TestNuSuspect(t *testing.T) {
	m := &Model{Params: Params{Nu: 2.08}}
	assert.True(t, m.NuSuspect())
	m.Params.Nu = 4
	assert.False(t, m.NuSuspect())
}

func TestBackcastWeightsEarlyObservations(t *testing.T) {
	r := make([]float64, 200)
	for i := range r {
		r[i] = 1
	}
	// constant squared residual of 1 around mu=0
	assert.InDelta(t, 0.0, backcast(r, 0), 1e-12)
}

func TestFitBFGSOnlyFailsAsModelFitFailure(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = BFGS
	m, err := Fit(simulate(trueParams, 400, 13), opts)
	if err != nil {
		assert.Equal(t, apperr.ModelFitFailure, apperr.KindOf(err))
		return
	}
	assert.True(t, m.Params.finite())
	assert.Equal(t, BFGS, m.Method)
}
