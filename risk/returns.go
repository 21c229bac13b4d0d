package risk

import (
	"math"
)

// LogReturnsPct converts prices into log returns in percent:
// r[i] = ln(p[i+1]/p[i]) * 100. Missing prices (NaN, Inf, non-positive)
// are removed before differencing, so the result has usable-1 elements.
func LogReturnsPct(prices []float64) []float64 {
	usable := make([]float64, 0, len(prices))
	for _, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= 0 {
			continue
		}
		usable = append(usable, p)
	}
	if len(usable) < 2 {
		return []float64{}
	}

	out := make([]float64, len(usable)-1)
	for i := 1; i < len(usable); i++ {
		out[i-1] = math.Log(usable[i]/usable[i-1]) * 100
	}
	return out
}
