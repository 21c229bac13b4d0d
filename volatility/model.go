package volatility

import (
	"math"

	"github.com/rustyeddy/fxrisk/market"
)

// MinReturns is the smallest return series Fit accepts.
const MinReturns = 249

// NuFloor is the tail parameter below which a fit is flagged as suspect.
const NuFloor = 2.1

// Params are the fitted coefficients. Mu and the volatility recursion work
// in percentage units.
type Params struct {
	Mu    float64 `json:"mu"`
	Omega float64 `json:"omega"`
	Alpha float64 `json:"alpha"`
	Gamma float64 `json:"gamma"`
	Beta  float64 `json:"beta"`
	Nu    float64 `json:"nu"`
}

func (p Params) slice() []float64 {
	return []float64{p.Mu, p.Omega, p.Alpha, p.Gamma, p.Beta, p.Nu}
}

func (p Params) finite() bool {
	for _, v := range p.slice() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Model is a fitted EGARCH(1,1)-t. It is immutable once returned by Fit.
type Model struct {
	Params        Params
	LogLikelihood float64
	Observations  int

	Method      Method
	Status      string
	Iterations  int
	Evaluations int

	// volatility is the conditional standard deviation in percent, one
	// value per return.
	volatility []float64
	lnSigma2   []float64
	residuals  []float64
}

// Volatility returns a copy of the conditional volatility sequence.
func (m *Model) Volatility() []market.Percent {
	out := make([]market.Percent, len(m.volatility))
	for i, v := range m.volatility {
		out[i] = market.Percent(v)
	}
	return out
}

// LatestVolatility is the conditional volatility of the last observation in
// the sample.
func (m *Model) LatestVolatility() market.Percent {
	if len(m.volatility) == 0 {
		return market.Percent(math.NaN())
	}
	return market.Percent(m.volatility[len(m.volatility)-1])
}

// Forecast is the one-step-ahead volatility for the day after the sample.
func (m *Model) Forecast() market.Percent {
	n := len(m.lnSigma2)
	if n == 0 {
		return market.Percent(math.NaN())
	}
	p := m.Params
	e := m.residuals[n-1] / math.Exp(m.lnSigma2[n-1]/2)
	ln := p.Omega + p.Alpha*(math.Abs(e)-sqrt2OverPi) + p.Gamma*e + p.Beta*m.lnSigma2[n-1]
	return market.Percent(math.Exp(capLnSigma2(ln) / 2))
}

// NuSuspect reports a tail parameter too close to 2 for the variance to be
// trusted.
func (m *Model) NuSuspect() bool {
	return m.Params.Nu < NuFloor
}
