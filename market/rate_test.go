package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestSeriesNormalize(t *testing.T) {
	s := Series{
		Instrument: "USD_MAD",
		Field:      Close,
		Points: []RatePoint{
			{Time: day(3), Price: 10.3},
			{Time: day(1), Price: 10.1},
			{Time: day(2), Price: 10.2},
			{Time: day(2), Price: 10.25},
		},
	}

	got := s.Normalize()
	require.Len(t, got.Points, 3)
	assert.Equal(t, day(1), got.Points[0].Time)
	assert.Equal(t, 10.25, got.Points[1].Price)
	assert.Equal(t, day(3), got.Points[2].Time)

	// original untouched
	assert.Equal(t, day(3), s.Points[0].Time)
}

func TestSeriesUsableAndPrices(t *testing.T) {
	s := Series{Points: []RatePoint{
		{Time: day(1), Price: 10},
		{Time: day(2), Price: math.NaN()},
		{Time: day(3), Price: 0},
		{Time: day(4), Price: 10.2},
	}}

	assert.Equal(t, 4, s.Len())
	assert.Equal(t, 2, s.Usable())

	prices := s.Prices()
	assert.Equal(t, 10.0, prices[0])
	assert.True(t, math.IsNaN(prices[1]))
	assert.True(t, math.IsNaN(prices[2]))

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, 10.2, last.Price)

	_, ok = Series{}.Last()
	assert.False(t, ok)
}

func TestPercentConversion(t *testing.T) {
	p := PercentFromDecimal(0.006)
	assert.InDelta(t, 0.6, float64(p), 1e-12)
	assert.InDelta(t, 0.006, p.Decimal(), 1e-15)
	assert.Equal(t, "0.6000%", p.String())
}

func TestWindow(t *testing.T) {
	w := DefaultWindow()
	assert.Equal(t, 250, w.MinObservations)
	assert.True(t, w.Contains(DefaultHistoryStart))
	assert.False(t, w.Contains(DefaultHistoryEnd))
	assert.True(t, w.Contains(DefaultHistoryEnd.Add(-time.Nanosecond)))

	tw := TrailingWindow(time.Date(2026, 10, 19, 15, 4, 0, 0, time.UTC), 5)
	assert.Equal(t, time.Date(2021, 10, 19, 0, 0, 0, 0, time.UTC), tw.Start)
	assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), tw.End)
}

func TestUSDMAD(t *testing.T) {
	meta, ok := Instruments["USD_MAD"]
	require.True(t, ok)
	assert.Equal(t, "USD/MAD", meta.Pair())
	assert.Equal(t, "USDMAD=X", meta.YahooSymbol)
}
