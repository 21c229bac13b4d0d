package volatility

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	sqrt2OverPi = math.Sqrt(2 / math.Pi)
	lnSigma2Max = math.Log(math.MaxFloat64) - 0.1
)

const (
	backcastSpan  = 75
	backcastDecay = 0.94
)

func capLnSigma2(v float64) float64 {
	if v > lnSigma2Max {
		return lnSigma2Max
	}
	if v < -lnSigma2Max {
		return -lnSigma2Max
	}
	return v
}

// backcast returns ln of an exponentially weighted mean of the first
// squared residuals around mu.
func backcast(returns []float64, mu float64) float64 {
	n := min(backcastSpan, len(returns))
	var sum, wsum float64
	w := 1.0
	for i := 0; i < n; i++ {
		e := returns[i] - mu
		sum += w * e * e
		wsum += w
		w *= backcastDecay
	}
	return math.Log(sum / wsum)
}

type likelihood struct {
	returns   []float64
	lnStart   float64
	lnSigma2  []float64
	residuals []float64
}

func newLikelihood(returns []float64, lnStart float64) *likelihood {
	return &likelihood{
		returns:   returns,
		lnStart:   lnStart,
		lnSigma2:  make([]float64, len(returns)),
		residuals: make([]float64, len(returns)),
	}
}

// eval runs the recursion for p and returns the log-likelihood. lnSigma2
// and residuals hold the path of the last call.
func (l *likelihood) eval(p Params) float64 {
	nu := p.Nu
	c := lgamma((nu+1)/2) - lgamma(nu/2) - 0.5*math.Log(math.Pi*(nu-2))

	var sum float64
	for t, r := range l.returns {
		ln := l.lnStart
		if t > 0 {
			e := l.residuals[t-1] / math.Exp(l.lnSigma2[t-1]/2)
			ln = p.Omega + p.Alpha*(math.Abs(e)-sqrt2OverPi) + p.Gamma*e + p.Beta*l.lnSigma2[t-1]
		}
		ln = capLnSigma2(ln)
		l.lnSigma2[t] = ln

		eps := r - p.Mu
		l.residuals[t] = eps
		sum += c - 0.5*ln - (nu+1)/2*math.Log1p(eps*eps/(math.Exp(ln)*(nu-2)))
	}
	return sum
}

func lgamma(x float64) float64 {
	v, _ := math.Lgamma(x)
	return v
}

// LogLikelihood evaluates the EGARCH(1,1)-t log-likelihood of returns at p,
// starting the recursion from the same backcast Fit uses.
func LogLikelihood(returns []float64, p Params) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	l := newLikelihood(returns, backcast(returns, stat.Mean(returns, nil)))
	return l.eval(p)
}
