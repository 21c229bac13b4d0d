package volatility

import (
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

// Method selects the optimizer.
type Method string

const (
	NelderMead Method = "nelder-mead"
	BFGS       Method = "bfgs"
)

// Options control the likelihood optimizer.
type Options struct {
	Method         Method
	MaxEvaluations int
	// Tolerance is the absolute log-likelihood change below which the
	// optimizer is considered converged.
	Tolerance float64
}

func DefaultOptions() Options {
	return Options{
		Method:         NelderMead,
		MaxEvaluations: 50000,
		Tolerance:      1e-9,
	}
}

const (
	betaBound = 0.9999
	nuMin     = 2.05
	nuMax     = 500.0

	// returned in place of a non-finite negative log-likelihood
	penalty = 1e12
)

// Fit estimates an EGARCH(1,1)-t model on returns expressed in percent.
func Fit(returns []float64, opts Options) (*Model, error) {
	if len(returns) < MinReturns {
		return nil, apperr.Newf(apperr.DataUnavailable,
			"need at least %d returns to fit, have %d", MinReturns, len(returns))
	}
	if floats.HasNaN(returns) {
		return nil, apperr.New(apperr.ModelFitFailure, "return series contains NaN")
	}
	for _, r := range returns {
		if math.IsInf(r, 0) {
			return nil, apperr.New(apperr.ModelFitFailure, "return series contains Inf")
		}
	}
	if opts.Method == "" {
		opts.Method = NelderMead
	}

	mu, variance := stat.MeanVariance(returns, nil)
	if !(variance > 0) || math.IsInf(variance, 0) {
		return nil, apperr.New(apperr.ModelFitFailure, "return series has no variance")
	}

	ll := newLikelihood(returns, backcast(returns, mu))
	objective := func(x []float64) float64 {
		v := -ll.eval(decode(x))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return penalty
		}
		return v
	}

	problem := optimize.Problem{Func: objective}
	var method optimize.Method
	switch opts.Method {
	case NelderMead:
		method = &optimize.NelderMead{}
	case BFGS:
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, objective, x, &fd.Settings{Formula: fd.Central})
		}
		method = &optimize.BFGS{}
	default:
		return nil, apperr.Newf(apperr.ModelFitFailure, "unknown optimizer %q", opts.Method)
	}

	settings := &optimize.Settings{
		FuncEvaluations: opts.MaxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute:   opts.Tolerance,
			Iterations: 100,
		},
	}

	start := startingParams(mu, variance)
	res, err := optimize.Minimize(problem, encode(start), settings, method)
	if err != nil {
		return nil, apperr.Wrap(apperr.ModelFitFailure, err, "optimizer")
	}
	if !converged(res.Status) {
		return nil, apperr.Newf(apperr.ModelFitFailure,
			"optimizer stopped without converging: %s after %d evaluations",
			res.Status, res.FuncEvaluations)
	}

	p := decode(res.X)
	if !p.finite() {
		return nil, apperr.Newf(apperr.ModelFitFailure, "non-finite parameters %+v", p)
	}

	loglik := ll.eval(p)
	if math.IsNaN(loglik) || math.IsInf(loglik, 0) {
		return nil, apperr.New(apperr.ModelFitFailure, "non-finite log-likelihood at optimum")
	}

	m := &Model{
		Params:        p,
		LogLikelihood: loglik,
		Observations:  len(returns),
		Method:        opts.Method,
		Status:        res.Status.String(),
		Iterations:    res.MajorIterations,
		Evaluations:   res.FuncEvaluations,
		volatility:    make([]float64, len(returns)),
		lnSigma2:      append([]float64(nil), ll.lnSigma2...),
		residuals:     append([]float64(nil), ll.residuals...),
	}
	for i, ln := range m.lnSigma2 {
		m.volatility[i] = math.Exp(ln / 2)
	}
	if v := m.LatestVolatility(); !(v > 0) || math.IsInf(float64(v), 0) {
		return nil, apperr.Newf(apperr.ModelFitFailure, "degenerate conditional volatility %v", float64(v))
	}
	return m, nil
}

func converged(s optimize.Status) bool {
	switch s {
	case optimize.Success,
		optimize.FunctionThreshold,
		optimize.FunctionConvergence,
		optimize.GradientThreshold,
		optimize.StepConvergence,
		optimize.MethodConverge:
		return true
	}
	return false
}

// startingParams derives the optimizer start from sample moments so the
// fit does not depend on any random draw.
func startingParams(mu, variance float64) Params {
	const beta = 0.95
	return Params{
		Mu:    mu,
		Omega: (1 - beta) * math.Log(variance),
		Alpha: 0.1,
		Gamma: 0,
		Beta:  beta,
		Nu:    8,
	}
}

// encode maps model parameters to the optimizer's unconstrained space.
func encode(p Params) []float64 {
	return []float64{
		p.Mu,
		p.Omega,
		p.Alpha,
		p.Gamma,
		math.Atanh(p.Beta / betaBound),
		logit((p.Nu - nuMin) / (nuMax - nuMin)),
	}
}

func decode(x []float64) Params {
	return Params{
		Mu:    x[0],
		Omega: x[1],
		Alpha: x[2],
		Gamma: x[3],
		Beta:  betaBound * math.Tanh(x[4]),
		Nu:    nuMin + (nuMax-nuMin)*logistic(x[5]),
	}
}

func logistic(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}
