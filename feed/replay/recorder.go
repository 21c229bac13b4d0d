package replay

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/rustyeddy/fxrisk/feed"
	"github.com/rustyeddy/fxrisk/market"
)

// Recorder passes calls through to a live source and keeps the last
// successful responses so they can be written out as a snapshot.
type Recorder struct {
	next feed.Source

	mu     sync.Mutex
	quote  market.Quote
	series market.Series
}

func NewRecorder(next feed.Source) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Name() string { return r.next.Name() }

func (r *Recorder) LatestQuote(ctx context.Context) (market.Quote, error) {
	q, err := r.next.LatestQuote(ctx)
	if err != nil {
		return q, err
	}
	r.mu.Lock()
	r.quote = q
	r.mu.Unlock()
	return q, nil
}

func (r *Recorder) History(ctx context.Context, start, end time.Time) (market.Series, error) {
	s, err := r.next.History(ctx, start, end)
	if err != nil {
		return s, err
	}
	r.mu.Lock()
	r.series = s
	r.mu.Unlock()
	return s, nil
}

// Snapshot returns what has been recorded so far.
func (r *Recorder) Snapshot() market.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return market.Snapshot{
		Source: r.next.Name(),
		Quote:  r.quote,
		Series: r.series,
	}
}

// Save writes the recorded snapshot in the canonical CSV layout.
func (r *Recorder) Save(w io.Writer) error {
	return Write(w, r.Snapshot())
}
