package market

import "fmt"

// Percent is a value in percentage units: Percent(1.5) is 1.5%, or 0.015 as
// a decimal. Model volatility and VaR figures move between packages as
// Percent so the x100 and /100 conversions happen only here.
type Percent float64

// PercentFromDecimal converts a decimal fraction (0.015) to Percent (1.5).
func PercentFromDecimal(d float64) Percent {
	return Percent(d * 100)
}

// Decimal converts to a decimal fraction.
func (p Percent) Decimal() float64 {
	return float64(p) / 100
}

func (p Percent) String() string {
	return fmt.Sprintf("%.4f%%", float64(p))
}
