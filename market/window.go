package market

import "time"

// The historical window is fixed to match an external reference
// calculation. It does not move with the request dates.
var (
	DefaultHistoryStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultHistoryEnd   = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
)

// MinObservations is the smallest usable history accepted before fitting.
const MinObservations = 250

// Window is the half-open date range [Start, End) of daily history to load.
type Window struct {
	Start           time.Time
	End             time.Time
	MinObservations int
}

// DefaultWindow returns the fixed reference window.
func DefaultWindow() Window {
	return Window{
		Start:           DefaultHistoryStart,
		End:             DefaultHistoryEnd,
		MinObservations: MinObservations,
	}
}

// TrailingWindow returns the last n calendar years up to now, truncated to
// the day.
func TrailingWindow(now time.Time, years int) Window {
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return Window{
		Start:           end.AddDate(-years, 0, 0),
		End:             end,
		MinObservations: MinObservations,
	}
}

// Contains reports whether t falls inside [Start, End). Zero bounds are open.
func (w Window) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && !t.Before(w.End) {
		return false
	}
	return true
}
