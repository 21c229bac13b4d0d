package service

import (
	"fmt"
	"time"

	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/feed"
	"github.com/rustyeddy/fxrisk/feed/oanda"
	"github.com/rustyeddy/fxrisk/feed/replay"
	"github.com/rustyeddy/fxrisk/feed/yahoo"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/pkg/logger"
	"github.com/rustyeddy/fxrisk/pkg/metrics"
)

// NewSource builds the feed named by cfg.Feed.Provider.
func NewSource(cfg *config.Config) (feed.Source, error) {
	meta := cfg.InstrumentMeta()
	switch cfg.Feed.Provider {
	case "yahoo":
		return yahoo.NewClient(cfg.Feed.Yahoo.BaseURL, meta, cfg.Feed.Timeout), nil
	case "oanda":
		base := cfg.Feed.Oanda.BaseURL
		if base == "" {
			var err error
			if base, err = oanda.BaseURL(cfg.Feed.Oanda.Environment); err != nil {
				return nil, err
			}
		}
		return oanda.NewClient(base, cfg.Feed.Oanda.Token, meta, cfg.Feed.Timeout), nil
	case "replay":
		return replay.Open(cfg.Feed.Replay.Path)
	}
	return nil, fmt.Errorf("unknown feed provider %q", cfg.Feed.Provider)
}

// New builds an Assessor and its journal from cfg. The caller closes the
// returned store.
func New(cfg *config.Config, log *logger.Logger, m *metrics.Recorder) (*Assessor, journal.Store, error) {
	src, err := NewSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := journal.Open(cfg.Journal.Type, cfg.JournalPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	return &Assessor{
		Source:  src,
		Journal: store,
		Metrics: m,
		Log:     log,
		Policy:  cfg.Policy(),
		Window:  cfg.Window(time.Now()),
		Timeout: cfg.Feed.Timeout,
	}, store, nil
}
