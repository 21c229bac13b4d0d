package risk

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

// Quantile returns |T⁻¹_ν(1−confidence)| for a standard Student-t with nu
// degrees of freedom.
func Quantile(confidence, nu float64) (float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, apperr.Newf(apperr.NonFiniteResult, "confidence %v outside (0, 1)", confidence)
	}
	if !(nu > 0) || math.IsInf(nu, 0) {
		return 0, apperr.Newf(apperr.NonFiniteResult, "degrees of freedom %v not usable", nu)
	}
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
	q := math.Abs(t.Quantile(1 - confidence))
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return 0, apperr.Newf(apperr.NonFiniteResult, "quantile at confidence %v, nu %v is %v", confidence, nu, q)
	}
	return q, nil
}

// ComputeVaR returns daily and horizon VaR as decimals for a decimal
// volatility. Horizon scaling is square-root-of-time, which assumes i.i.d.
// daily increments.
func ComputeVaR(vol, nu float64, horizonDays int, confidence float64) (daily, horizon float64, err error) {
	if horizonDays < 1 {
		return 0, 0, apperr.Newf(apperr.InvalidHorizon, "horizon must be at least 1 day, got %d", horizonDays)
	}
	q, err := Quantile(confidence, nu)
	if err != nil {
		return 0, 0, err
	}
	daily = q * vol
	horizon = daily * math.Sqrt(float64(horizonDays))
	if !finite(daily, horizon) {
		return 0, 0, apperr.Newf(apperr.NonFiniteResult,
			"VaR not finite (vol=%v nu=%v horizon=%d)", vol, nu, horizonDays)
	}
	return daily, horizon, nil
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
