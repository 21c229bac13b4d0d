// Package replay records market data to CSV and serves it back as a
// feed.Source, so an assessment can be rerun on a frozen snapshot without
// network access.
//
// The canonical file layout is
//
//	time,kind,instrument,price
//
// where kind is "quote" for the latest quote or the series price field
// ("adjclose" or "close") for history rows, time is RFC3339Nano and an empty
// price marks a missing row.
package replay

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
)

const kindQuote = "quote"

var header = []string{"time", "kind", "instrument", "price"}

// Source serves a recorded snapshot.
type Source struct {
	quote    market.Quote
	hasQuote bool
	series   market.Series
}

// Open reads a snapshot file.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperr.Wrap(apperr.DataUnavailable, err, "open snapshot")
	}
	defer f.Close()
	return Read(f)
}

// Read parses a snapshot from r. A single header row is allowed; empty
// rows are skipped.
func Read(r io.Reader) (*Source, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	s := &Source{}
	sawFirst := false
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.DataUnavailable, err, "read snapshot")
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "time") {
				continue
			}
		}
		if err := s.addRow(row); err != nil {
			return nil, apperr.Wrap(apperr.DataUnavailable, err, fmt.Sprintf("snapshot line %d", line))
		}
	}
	return s, nil
}

func (s *Source) addRow(row []string) error {
	if len(row) < 4 {
		return fmt.Errorf("want 4 columns, got %d", len(row))
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(row[0]))
	if err != nil {
		return fmt.Errorf("bad time %q: %w", row[0], err)
	}
	kind := strings.TrimSpace(row[1])
	inst := strings.TrimSpace(row[2])

	price := math.NaN()
	if raw := strings.TrimSpace(row[3]); raw != "" {
		price, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("bad price %q: %w", row[3], err)
		}
	}

	switch market.PriceField(kind) {
	case market.AdjClose, market.Close:
		if s.series.Field != "" && s.series.Field != market.PriceField(kind) {
			return fmt.Errorf("mixed price fields %s and %s", s.series.Field, kind)
		}
		s.series.Field = market.PriceField(kind)
		s.series.Instrument = inst
		s.series.Points = append(s.series.Points, market.RatePoint{Time: t.UTC(), Price: price})
		return nil
	}
	if kind == kindQuote {
		s.quote = market.Quote{Instrument: inst, Time: t.UTC(), Price: price}
		s.hasQuote = true
		return nil
	}
	return fmt.Errorf("unknown row kind %q", kind)
}

func (s *Source) Name() string { return "replay" }

func (s *Source) LatestQuote(ctx context.Context) (market.Quote, error) {
	if err := ctx.Err(); err != nil {
		return market.Quote{}, err
	}
	if !s.hasQuote || !(s.quote.Price > 0) {
		return market.Quote{}, apperr.New(apperr.DataUnavailable, "snapshot has no quote")
	}
	return s.quote, nil
}

// History returns the recorded rows inside [start, end).
func (s *Source) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return market.Series{}, err
	}
	w := market.Window{Start: start, End: end}
	out := market.Series{Instrument: s.series.Instrument, Field: s.series.Field}
	for _, p := range s.series.Points {
		if w.Contains(p.Time) {
			out.Points = append(out.Points, p)
		}
	}
	return out, nil
}

// Write stores a snapshot in the canonical layout. Prices are written with
// full precision so a replayed snapshot is bit-identical to the original.
func Write(w io.Writer, snap market.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}

	q := snap.Quote
	if err := cw.Write([]string{q.Time.UTC().Format(time.RFC3339Nano), kindQuote, q.Instrument, formatPrice(q.Price)}); err != nil {
		return err
	}

	field := snap.Series.Field
	if field == "" {
		field = market.Close
	}
	for _, p := range snap.Series.Points {
		row := []string{
			p.Time.UTC().Format(time.RFC3339Nano),
			string(field),
			snap.Series.Instrument,
			formatPrice(p.Price),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile stores a snapshot at path.
func WriteFile(path string, snap market.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, snap); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatPrice(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ""
	}
	return strconv.FormatFloat(p, 'g', -1, 64)
}
