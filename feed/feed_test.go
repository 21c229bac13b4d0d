package feed

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

type stubSource struct {
	quote    market.Quote
	quoteErr error
	series   market.Series
	histErr  error
	block    bool
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) LatestQuote(ctx context.Context) (market.Quote, error) {
	return s.quote, s.quoteErr
}

func (s *stubSource) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	if s.block {
		<-ctx.Done()
		return market.Series{}, ctx.Err()
	}
	return s.series, s.histErr
}

func dailySeries(n int) market.Series {
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	pts := make([]market.RatePoint, n)
	for i := range pts {
		pts[n-1-i] = market.RatePoint{Time: start.AddDate(0, 0, i), Price: 9.5 + float64(i)*0.001}
	}
	return market.Series{Instrument: "USD_MAD", Field: market.Close, Points: pts}
}

func goodQuote() market.Quote {
	return market.Quote{Instrument: "USD_MAD", Time: time.Now(), Price: 10.0}
}

func TestFetchNormalizesHistory(t *testing.T) {
	src := &stubSource{quote: goodQuote(), series: dailySeries(300)}

	snap, err := Fetch(context.Background(), src, market.DefaultWindow(), time.Second)
	require.NoError(t, err)

	assert.Equal(t, "stub", snap.Source)
	assert.Equal(t, 10.0, snap.Quote.Price)
	require.Equal(t, 300, snap.Series.Len())
	assert.True(t, snap.Series.Points[0].Time.Before(snap.Series.Points[1].Time))
	assert.False(t, snap.FetchedAt.IsZero())
}

func TestFetchFailures(t *testing.T) {
	short := dailySeries(300)
	for i := 0; i < 60; i++ {
		short.Points[i].Price = math.NaN()
	}

	tests := []struct {
		name string
		src  *stubSource
		want string
	}{
		{"quote error", &stubSource{quoteErr: errors.New("boom")}, "latest quote from stub"},
		{"zero quote", &stubSource{quote: market.Quote{}}, "no usable quote"},
		{"history error", &stubSource{quote: goodQuote(), histErr: errors.New("boom")}, "history from stub"},
		{"empty history", &stubSource{quote: goodQuote()}, "returned no history"},
		{"too few rows", &stubSource{quote: goodQuote(), series: dailySeries(100)}, "insufficient history"},
		{"too many missing", &stubSource{quote: goodQuote(), series: short}, "240 usable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Fetch(context.Background(), tt.src, market.DefaultWindow(), time.Second)
			require.Error(t, err)
			assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchKeepsExistingKind(t *testing.T) {
	src := &stubSource{quoteErr: apperr.New(apperr.Internal, "broken")}
	_, err := Fetch(context.Background(), src, market.DefaultWindow(), time.Second)
	assert.Equal(t, apperr.Internal, apperr.KindOf(err))
}

func TestFetchTimeout(t *testing.T) {
	src := &stubSource{quote: goodQuote(), block: true}

	start := time.Now()
	_, err := Fetch(context.Background(), src, market.DefaultWindow(), 20*time.Millisecond)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out")
}

func TestFetchCustomMinimum(t *testing.T) {
	src := &stubSource{quote: goodQuote(), series: dailySeries(100)}
	w := market.DefaultWindow()
	w.MinObservations = 50

	snap, err := Fetch(context.Background(), src, w, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 100, snap.Series.Usable())
}
