// Package journal keeps an append-only record of completed assessments so
// a figure shown to a user can be traced back to its inputs and model.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/fxrisk/risk"
)

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("assessment not found")

// Assessment is one journaled run.
type Assessment struct {
	ID        string
	CreatedAt time.Time

	// Source is the feed name ("yahoo", "oanda", "replay").
	Source      string
	Instrument  string
	WindowStart time.Time
	WindowEnd   time.Time

	Request risk.Request
	Result  risk.Result
}

// Journal stores assessments.
type Journal interface {
	Record(ctx context.Context, a Assessment) error
	Close() error
}

// Store is a Journal that can be read back.
type Store interface {
	Journal
	Get(ctx context.Context, id string) (Assessment, error)
	// List returns the newest assessments first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Assessment, error)
}

// Journal types accepted by Open.
const (
	TypeSQLite = "sqlite"
	TypeCSV    = "csv"
	TypeNone   = "none"
)

// Open returns the store for kind. path is the database file for sqlite
// and the log file for csv; it is ignored for none.
func Open(kind, path string) (Store, error) {
	switch kind {
	case TypeSQLite:
		return NewSQLite(path)
	case TypeCSV:
		return NewCSV(path)
	case TypeNone, "":
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown journal type %q", kind)
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(context.Context, Assessment) error { return nil }
func (Discard) Close() error                             { return nil }

func (Discard) Get(_ context.Context, id string) (Assessment, error) {
	return Assessment{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (Discard) List(context.Context, int) ([]Assessment, error) { return nil, nil }
