package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
	"github.com/rustyeddy/fxrisk/volatility"
)

// Assess runs the whole pipeline on a frozen market snapshot: validate,
// transform, fit, clamp, VaR. It does no I/O, so identical inputs give
// identical results.
func Assess(req Request, snap market.Snapshot, policy Policy) (Result, error) {
	horizon, err := Validate(req.AmountUSD, req.InvoiceDate, req.SettlementDate)
	if err != nil {
		return Result{}, err
	}

	returns := LogReturnsPct(snap.Series.Prices())
	est, err := Estimate(returns, policy.Fit)
	if err != nil {
		return Result{}, err
	}

	res, err := Compute(req, horizon, snap.Quote.Price, est, policy)
	if err != nil {
		return Result{}, err
	}
	res.Instrument = snap.Series.Instrument
	if res.Instrument == "" {
		res.Instrument = snap.Quote.Instrument
	}
	return res, nil
}

// Estimate fits the volatility model and keeps what the VaR step reads.
func Estimate(returns []float64, opts volatility.Options) (VolatilityEstimate, error) {
	m, err := volatility.Fit(returns, opts)
	if err != nil {
		return VolatilityEstimate{}, err
	}
	return VolatilityEstimate{
		Model:         m.LatestVolatility(),
		Nu:            m.Params.Nu,
		Params:        m.Params,
		LogLikelihood: m.LogLikelihood,
		Evaluations:   m.Evaluations,
	}, nil
}

// Compute turns a volatility estimate into VaR figures and currency amounts
// for a validated request.
func Compute(req Request, horizon int, rate float64, est VolatilityEstimate, policy Policy) (Result, error) {
	if !(rate > 0) || math.IsInf(rate, 0) {
		return Result{}, apperr.Newf(apperr.DataUnavailable, "no usable current rate (%v)", rate)
	}

	var warnings []string
	if est.Nu < volatility.NuFloor {
		warnings = append(warnings, fmt.Sprintf(
			"tail parameter nu=%.4f is below %.1f; the t quantile is unreliable", est.Nu, volatility.NuFloor))
	}

	vol := est.Model.Decimal()
	if policy.ClampEnabled {
		clamped := policy.Band.Clamp(vol)
		if clamped != vol {
			est.Clamped = true
			warnings = append(warnings, fmt.Sprintf(
				"model volatility %s clamped to %s", est.Model, market.PercentFromDecimal(clamped)))
		}
		vol = clamped
	} else if !(vol > 0) || math.IsInf(vol, 0) {
		return Result{}, apperr.Newf(apperr.NonFiniteResult, "model volatility %v not usable", vol)
	}
	est.Used = market.PercentFromDecimal(vol)

	daily, horizonVaR, err := ComputeVaR(vol, est.Nu, horizon, policy.Confidence)
	if err != nil {
		return Result{}, err
	}

	booked := req.AmountUSD * rate
	loss := horizonVaR * req.AmountUSD * rate
	res := Result{
		CurrentRate:               rate,
		AmountUSD:                 req.AmountUSD,
		HorizonDays:               horizon,
		Confidence:                policy.Confidence,
		BookedAmount:              booked,
		EstimatedSettlementAmount: booked - loss,
		DailyVaR:                  market.PercentFromDecimal(daily),
		HorizonVaR:                market.PercentFromDecimal(horizonVaR),
		PotentialLoss:             loss,
		Volatility:                est,
		Warnings:                  warnings,
	}

	if req.Stress {
		_, stressVaR, err := ComputeVaR(vol, est.Nu, horizon, policy.StressConfidence)
		if err != nil {
			return Result{}, err
		}
		res.Stress = &Stress{
			Confidence: policy.StressConfidence,
			HorizonVaR: market.PercentFromDecimal(stressVaR),
			Loss:       stressVaR * req.AmountUSD * rate,
		}
	}

	if !finite(res.BookedAmount, res.EstimatedSettlementAmount, res.PotentialLoss) {
		return Result{}, apperr.New(apperr.NonFiniteResult, "currency amounts not finite")
	}
	if res.Stress != nil && !finite(res.Stress.Loss) {
		return Result{}, apperr.New(apperr.NonFiniteResult, "stressed loss not finite")
	}
	return res, nil
}
