package market

import (
	"math"
	"sort"
	"time"
)

// PriceField names the vendor column a Series was built from.
type PriceField string

const (
	AdjClose PriceField = "adjclose"
	Close    PriceField = "close"
)

// RatePoint is a single price observation, quote currency per unit of base.
// Price is NaN when the vendor reported the row without a value.
type RatePoint struct {
	Time  time.Time
	Price float64
}

// Missing reports whether the point carries no usable price.
func (p RatePoint) Missing() bool {
	return math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0
}

// Series is a daily close series for one instrument.
type Series struct {
	Instrument string
	Field      PriceField
	Points     []RatePoint
}

// Len returns the number of rows, missing ones included.
func (s Series) Len() int { return len(s.Points) }

// Usable returns the number of rows with a price.
func (s Series) Usable() int {
	n := 0
	for _, p := range s.Points {
		if !p.Missing() {
			n++
		}
	}
	return n
}

// Prices returns the raw price column, NaN for missing rows.
func (s Series) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		if p.Missing() {
			out[i] = math.NaN()
			continue
		}
		out[i] = p.Price
	}
	return out
}

// Last returns the most recent point.
func (s Series) Last() (RatePoint, bool) {
	if len(s.Points) == 0 {
		return RatePoint{}, false
	}
	return s.Points[len(s.Points)-1], true
}

// Normalize sorts points by time and drops duplicate timestamps, keeping the
// last occurrence.
func (s Series) Normalize() Series {
	pts := make([]RatePoint, len(s.Points))
	copy(pts, s.Points)
	sort.SliceStable(pts, func(i, j int) bool { return pts[i].Time.Before(pts[j].Time) })

	out := pts[:0]
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	s.Points = out
	return s
}

// Quote is the latest intraday price for an instrument.
type Quote struct {
	Instrument string
	Time       time.Time
	Price      float64
}

// Snapshot is everything the risk pipeline reads from the market: one quote
// and one historical series. Two assessments over the same snapshot produce
// the same result.
type Snapshot struct {
	Source    string
	Quote     Quote
	Series    Series
	FetchedAt time.Time
}
