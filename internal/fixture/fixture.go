// Package fixture builds deterministic market data for tests.
package fixture

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rustyeddy/fxrisk/market"
)

// Snapshot builds n business-day USD/MAD closes from a seeded random walk
// with GARCH-style volatility bursts, plus a quote at rate.
func Snapshot(n int, seed int64, rate float64) market.Snapshot {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	pts := make([]market.RatePoint, 0, n)
	price := 9.6
	sigma := 0.003
	day := start
	for len(pts) < n {
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			shock := rng.NormFloat64()
			sigma = math.Sqrt(0.000002 + 0.08*sigma*sigma*shock*shock + 0.9*sigma*sigma)
			price *= math.Exp(sigma * shock)
			pts = append(pts, market.RatePoint{Time: day, Price: price})
		}
		day = day.AddDate(0, 0, 1)
	}

	return market.Snapshot{
		Source: "synthetic",
		Quote: market.Quote{
			Instrument: market.USDMAD.Name,
			Time:       day,
			Price:      rate,
		},
		Series: market.Series{
			Instrument: market.USDMAD.Name,
			Field:      market.Close,
			Points:     pts,
		},
		FetchedAt: day,
	}
}

// Source serves a fixed snapshot and counts calls. A non-nil Err is
// returned from both methods.
type Source struct {
	Snap market.Snapshot
	Err  error

	mu    sync.Mutex
	calls int
}

func (s *Source) Name() string { return "fixture" }

func (s *Source) LatestQuote(ctx context.Context) (market.Quote, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return market.Quote{}, s.Err
	}
	return s.Snap.Quote, ctx.Err()
}

func (s *Source) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.Err != nil {
		return market.Series{}, s.Err
	}
	return s.Snap.Series, ctx.Err()
}

// Calls is the number of vendor calls made so far.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
