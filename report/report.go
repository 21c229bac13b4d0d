// Package report renders a risk.Result for people (Text) and programs
// (JSON). It does no arithmetic beyond rounding for display.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
	"github.com/rustyeddy/fxrisk/risk"
)

var printer = message.NewPrinter(language.English)

// Options controls optional report sections.
type Options struct {
	// Verbose appends model diagnostics and warnings.
	Verbose bool
}

// Text renders the fixed-order summary: rate and percentages with four
// decimals, currency amounts rounded to whole units with thousands
// separators.
func Text(r risk.Result) string {
	return Render(r, Options{})
}

// Render is Text with options.
func Render(r risk.Result, opts Options) string {
	meta := instrument(r.Instrument)
	ccy := meta.QuoteCurrency

	var b strings.Builder
	fmt.Fprintf(&b, "%s current rate: %.4f\n", meta.Pair(), r.CurrentRate)
	fmt.Fprintf(&b, "Booked amount at invoice date: %s %s\n", Amount(r.BookedAmount), ccy)
	fmt.Fprintf(&b, "Estimated settlement amount (adverse scenario): %s %s\n", Amount(r.EstimatedSettlementAmount), ccy)
	fmt.Fprintf(&b, "Daily VaR (%s): %s\n", confidence(r.Confidence), r.DailyVaR)
	fmt.Fprintf(&b, "%d-day horizon VaR (%s): %s\n", r.HorizonDays, confidence(r.Confidence), r.HorizonVaR)
	fmt.Fprintf(&b, "Maximum potential loss: %s %s\n", Amount(r.PotentialLoss), ccy)

	if s := r.Stress; s != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Stressed VaR (%s): %s\n", confidence(s.Confidence), s.HorizonVaR)
		fmt.Fprintf(&b, "Stressed loss: %s %s\n", Amount(s.Loss), ccy)
	}

	if opts.Verbose {
		b.WriteString("\n")
		b.WriteString(Diagnostics(r))
	}
	return b.String()
}

// Diagnostics lists the fitted model and the clamp outcome.
func Diagnostics(r risk.Result) string {
	v := r.Volatility
	p := v.Params

	var b strings.Builder
	b.WriteString("Model diagnostics\n")
	fmt.Fprintf(&b, "  model volatility: %s\n", v.Model)
	fmt.Fprintf(&b, "  volatility used:  %s", v.Used)
	if v.Clamped {
		b.WriteString(" (clamped)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "  nu: %.4f\n", v.Nu)
	fmt.Fprintf(&b, "  mu=%.6f omega=%.6f alpha=%.6f gamma=%.6f beta=%.6f\n",
		p.Mu, p.Omega, p.Alpha, p.Gamma, p.Beta)
	fmt.Fprintf(&b, "  log-likelihood: %.4f (%d evaluations)\n", v.LogLikelihood, v.Evaluations)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}
	return b.String()
}

// Amount rounds half away from zero to whole units and groups thousands:
// 95313.6 becomes "95,314".
func Amount(v float64) string {
	d := decimal.NewFromFloat(v).Round(0)
	return printer.Sprintf("%d", d.IntPart())
}

// JSON returns the structured record, indented.
func JSON(r risk.Result) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ErrorText is the user-facing line for a failed assessment.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	msg := apperr.Message(err)
	switch apperr.KindOf(err) {
	case apperr.InvalidAmount:
		return "Invalid amount: " + msg
	case apperr.InvalidDate:
		return "Invalid date: " + msg
	case apperr.InvalidHorizon:
		return "Invalid horizon: " + msg
	case apperr.DataUnavailable:
		return "Market data unavailable: " + msg
	case apperr.ModelFitFailure:
		return "Volatility model could not be fitted: " + msg
	case apperr.NonFiniteResult:
		return "Calculation produced a non-finite value: " + msg
	}
	return "Error: " + msg
}

func confidence(c float64) string {
	return decimal.NewFromFloat(c).Shift(2).String() + "%"
}

func instrument(name string) market.InstrumentMeta {
	if m, ok := market.Instruments[name]; ok {
		return m
	}
	return market.USDMAD
}
