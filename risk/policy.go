package risk

import (
	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/volatility"
)

const (
	BaselineConfidence = 0.95
	StressConfidence   = 0.99
)

// Policy holds the tunable parts of an assessment.
type Policy struct {
	Confidence       float64 // 0.95
	StressConfidence float64 // 0.99

	// Band bounds the model volatility. ClampEnabled=false passes the model
	// value through unchanged.
	Band         Band
	ClampEnabled bool

	Fit volatility.Options
}

// DefaultPolicy returns the reference configuration: 95% baseline, 99%
// stress, daily VaR band [0.4%, 0.6%] over the 2.015 quantile constant.
func DefaultPolicy() Policy {
	return Policy{
		Confidence:       BaselineConfidence,
		StressConfidence: StressConfidence,
		Band:             DefaultBand(),
		ClampEnabled:     true,
		Fit:              volatility.DefaultOptions(),
	}
}

// Request is one receivable to assess.
type Request struct {
	AmountUSD      float64 `json:"amount_usd"`
	InvoiceDate    string  `json:"invoice_date"`
	SettlementDate string  `json:"settlement_date"`
	Stress         bool    `json:"stress"`
}

// ReferenceRequest is the default scenario offered to users.
func ReferenceRequest() Request {
	return Request{
		AmountUSD:      10000,
		InvoiceDate:    "2025-04-23",
		SettlementDate: "2025-06-23",
		Stress:         true,
	}
}

// VolatilityEstimate records what the model produced and what the clamp
// made of it.
type VolatilityEstimate struct {
	Model   market.Percent    `json:"model_pct"`
	Used    market.Percent    `json:"used_pct"`
	Clamped bool              `json:"clamped"`
	Nu      float64           `json:"nu"`
	Params  volatility.Params `json:"params"`

	LogLikelihood float64 `json:"log_likelihood"`
	Evaluations   int     `json:"evaluations"`
}

// Stress is the second pass at the stricter confidence level.
type Stress struct {
	Confidence float64        `json:"confidence"`
	HorizonVaR market.Percent `json:"horizon_var_pct"`
	Loss       float64        `json:"loss"`
}

// Result is an immutable assessment outcome. Currency amounts are in the
// quote currency (MAD).
type Result struct {
	Instrument  string  `json:"instrument"`
	CurrentRate float64 `json:"current_rate"`
	AmountUSD   float64 `json:"amount_usd"`
	HorizonDays int     `json:"horizon_days"`
	Confidence  float64 `json:"confidence"`

	BookedAmount              float64        `json:"booked_amount"`
	EstimatedSettlementAmount float64        `json:"estimated_settlement_amount"`
	DailyVaR                  market.Percent `json:"daily_var_pct"`
	HorizonVaR                market.Percent `json:"horizon_var_pct"`
	PotentialLoss             float64        `json:"potential_loss"`

	Stress *Stress `json:"stress,omitempty"`

	Volatility VolatilityEstimate `json:"volatility"`
	Warnings   []string           `json:"warnings,omitempty"`
}
