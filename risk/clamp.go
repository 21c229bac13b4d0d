package risk

import (
	"fmt"
	"math"

	"github.com/rustyeddy/fxrisk/market"
)

// Band is an engineering guardrail on model volatility, not a statistical
// correction. It is expressed as a target daily VaR range divided by a
// fixed quantile constant (the 95% Student-t quantile at ν≈5), which bounds
// what a single vendor's noisy feed can do to the headline figure.
type Band struct {
	MinDailyVaR market.Percent `json:"min_daily_var_pct"`
	MaxDailyVaR market.Percent `json:"max_daily_var_pct"`
	Quantile    float64        `json:"quantile"`
}

// DefaultBand is [0.4%, 0.6%] daily VaR over 2.015.
func DefaultBand() Band {
	return Band{MinDailyVaR: 0.4, MaxDailyVaR: 0.6, Quantile: 2.015}
}

func (b Band) Validate() error {
	if !(b.Quantile > 0) || math.IsInf(b.Quantile, 0) {
		return fmt.Errorf("clamp quantile must be positive, got %v", b.Quantile)
	}
	if !(b.MinDailyVaR > 0) {
		return fmt.Errorf("clamp min daily VaR must be positive, got %v", float64(b.MinDailyVaR))
	}
	if b.MaxDailyVaR < b.MinDailyVaR {
		return fmt.Errorf("clamp max daily VaR %v below min %v", float64(b.MaxDailyVaR), float64(b.MinDailyVaR))
	}
	return nil
}

// VolMin is the lower volatility bound as a decimal.
func (b Band) VolMin() float64 {
	return b.MinDailyVaR.Decimal() / b.Quantile
}

// VolMax is the upper volatility bound as a decimal.
func (b Band) VolMax() float64 {
	return b.MaxDailyVaR.Decimal() / b.Quantile
}

// Clamp bounds a decimal volatility into [VolMin, VolMax]. NaN and
// non-positive inputs map to VolMin; +Inf maps to VolMax.
func (b Band) Clamp(vol float64) float64 {
	lo, hi := b.VolMin(), b.VolMax()
	switch {
	case math.IsNaN(vol) || vol <= 0:
		return lo
	case vol < lo:
		return lo
	case vol > hi:
		return hi
	}
	return vol
}
