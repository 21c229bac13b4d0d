// Package feed loads market data for the risk pipeline. A Source talks to
// one vendor; Fetch turns a Source into a market.Snapshot with timeouts and
// sample-size checks applied uniformly.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

// Source is a market-data vendor for a single instrument.
type Source interface {
	// Name identifies the vendor in logs and journal records.
	Name() string
	// LatestQuote returns the most recent intraday price.
	LatestQuote(ctx context.Context) (market.Quote, error)
	// History returns daily closes over [start, end). Rows the vendor
	// reports without a value come back with a NaN price.
	History(ctx context.Context, start, end time.Time) (market.Series, error)
}

// DefaultTimeout bounds each vendor call when none is configured.
const DefaultTimeout = 15 * time.Second

// Fetch issues the quote and history calls, each under its own timeout,
// and validates what came back. Failures are DataUnavailable; nothing is
// retried.
func Fetch(ctx context.Context, src Source, w market.Window, timeout time.Duration) (market.Snapshot, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	minObs := w.MinObservations
	if minObs <= 0 {
		minObs = market.MinObservations
	}

	quote, err := latestQuote(ctx, src, timeout)
	if err != nil {
		return market.Snapshot{}, err
	}

	series, err := history(ctx, src, w, timeout)
	if err != nil {
		return market.Snapshot{}, err
	}
	series = series.Normalize()
	if series.Len() == 0 {
		return market.Snapshot{}, apperr.Newf(apperr.DataUnavailable,
			"%s returned no history between %s and %s", src.Name(),
			w.Start.Format(time.DateOnly), w.End.Format(time.DateOnly))
	}
	if n := series.Usable(); n < minObs {
		return market.Snapshot{}, apperr.Newf(apperr.DataUnavailable,
			"insufficient history from %s: %d usable observations, need %d", src.Name(), n, minObs)
	}

	return market.Snapshot{
		Source:    src.Name(),
		Quote:     quote,
		Series:    series,
		FetchedAt: time.Now().UTC(),
	}, nil
}

func latestQuote(ctx context.Context, src Source, timeout time.Duration) (market.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q, err := src.LatestQuote(ctx)
	if err != nil {
		return market.Quote{}, unavailable(err, fmt.Sprintf("latest quote from %s", src.Name()))
	}
	if !(q.Price > 0) {
		return market.Quote{}, apperr.Newf(apperr.DataUnavailable, "%s returned no usable quote", src.Name())
	}
	return q, nil
}

func history(ctx context.Context, src Source, w market.Window, timeout time.Duration) (market.Series, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	s, err := src.History(ctx, w.Start, w.End)
	if err != nil {
		return market.Series{}, unavailable(err, fmt.Sprintf("history from %s", src.Name()))
	}
	return s, nil
}

// unavailable classifies a vendor error, keeping an existing kind and
// naming timeouts explicitly.
func unavailable(err error, what string) error {
	if apperr.KindOf(err) != apperr.Unknown {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.DataUnavailable, err, what+": timed out")
	}
	return apperr.Wrap(apperr.DataUnavailable, err, what)
}
