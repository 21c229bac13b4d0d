package risk

import (
	"math"
	"time"

	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

const dateLayout = "2006-01-02"

// Validate checks a request's amount and dates and returns the settlement
// horizon in calendar days.
func Validate(amountUSD float64, invoiceDate, settlementDate string) (int, error) {
	if !(amountUSD > 0) || math.IsInf(amountUSD, 0) {
		return 0, apperr.Newf(apperr.InvalidAmount, "amount must be a positive number, got %v", amountUSD)
	}

	invoice, err := ParseDate(invoiceDate)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidDate, err, "invoice date must be YYYY-MM-DD")
	}
	settlement, err := ParseDate(settlementDate)
	if err != nil {
		return 0, apperr.Wrap(apperr.InvalidDate, err, "settlement date must be YYYY-MM-DD")
	}

	if settlement.Before(invoice) {
		return 0, apperr.Newf(apperr.InvalidHorizon,
			"settlement date %s is before invoice date %s", settlementDate, invoiceDate)
	}
	horizon := int(settlement.Sub(invoice) / (24 * time.Hour))
	if horizon < 1 {
		return 0, apperr.Newf(apperr.InvalidHorizon, "horizon must be at least 1 day, got %d", horizon)
	}
	return horizon, nil
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}
