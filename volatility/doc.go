// Package volatility fits an EGARCH(1,1) conditional-volatility model with
// standardized Student-t innovations to a series of percentage returns.
//
// The model, for returns r_t in percent:
//
//	ε_t = r_t − μ
//	e_t = ε_t / σ_t
//	ln σ²_t = ω + α(|e_{t−1}| − √(2/π)) + γ e_{t−1} + β ln σ²_{t−1}
//
// γ carries the sign asymmetry. ln σ²_0 is an exponentially weighted
// backcast of the first squared residuals. Parameters are estimated by
// maximum likelihood with gonum/optimize over an unconstrained
// reparameterisation, so a fit is a deterministic function of its input.
package volatility
