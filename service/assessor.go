// Package service runs one assessment end to end: fetch market data, run
// the pure risk pipeline, journal the outcome, and report metrics.
package service

import (
	"context"
	"time"

	"github.com/rustyeddy/fxrisk/feed"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/pkg/logger"
	"github.com/rustyeddy/fxrisk/pkg/metrics"
	"github.com/rustyeddy/fxrisk/risk"
)

// Assessor wires a feed to the risk pipeline. Journal, Metrics, IDs and
// Log are optional.
type Assessor struct {
	Source  feed.Source
	Journal journal.Journal
	Metrics *metrics.Recorder
	Log     *logger.Logger
	IDs     *id.Generator

	Policy  risk.Policy
	Window  market.Window
	Timeout time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

// Run validates req, loads a snapshot and assesses it. The request is
// validated before any network call.
func (a *Assessor) Run(ctx context.Context, req risk.Request) (journal.Assessment, error) {
	log := a.logger().With(
		logger.Float64("amount_usd", req.AmountUSD),
		logger.String("invoice", req.InvoiceDate),
		logger.String("settlement", req.SettlementDate),
	)

	if _, err := risk.Validate(req.AmountUSD, req.InvoiceDate, req.SettlementDate); err != nil {
		return a.fail(log, err)
	}

	snap, err := a.Fetch(ctx)
	if err != nil {
		return a.fail(log, err)
	}
	return a.Assess(ctx, req, snap)
}

// Fetch loads a snapshot from the configured source.
func (a *Assessor) Fetch(ctx context.Context) (market.Snapshot, error) {
	if a.Source == nil {
		return market.Snapshot{}, apperr.New(apperr.Internal, "no market data source configured")
	}
	log := a.logger().With(logger.String("source", a.Source.Name()))
	log.Debug("fetching market data",
		logger.Time("start", a.Window.Start),
		logger.Time("end", a.Window.End),
	)

	start := time.Now()
	snap, err := feed.Fetch(ctx, a.Source, a.Window, a.Timeout)
	if a.Metrics != nil {
		a.Metrics.ObserveFetch(a.Source.Name(), time.Since(start))
	}
	if err != nil {
		return market.Snapshot{}, err
	}

	log.Info("market data loaded",
		logger.Float64("rate", snap.Quote.Price),
		logger.Int("rows", snap.Series.Len()),
		logger.Int("usable", snap.Series.Usable()),
		logger.String("field", string(snap.Series.Field)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return snap, nil
}

// Assess runs the pipeline on a snapshot already in hand and journals the
// result.
func (a *Assessor) Assess(ctx context.Context, req risk.Request, snap market.Snapshot) (journal.Assessment, error) {
	log := a.logger().With(logger.String("source", snap.Source))

	start := time.Now()
	res, err := risk.Assess(req, snap, a.Policy)
	if a.Metrics != nil {
		a.Metrics.ObserveFit(time.Since(start))
	}
	if err != nil {
		return a.fail(log, err)
	}

	v := res.Volatility
	log.Debug("volatility model fitted",
		logger.Float64("nu", v.Nu),
		logger.Float64("log_likelihood", v.LogLikelihood),
		logger.Int("evaluations", v.Evaluations),
		logger.Duration("elapsed", time.Since(start)),
	)
	for _, w := range res.Warnings {
		log.Warn(w)
	}

	rec := journal.Assessment{
		ID:          a.newID(),
		CreatedAt:   a.now().UTC(),
		Source:      snap.Source,
		Instrument:  res.Instrument,
		WindowStart: a.Window.Start,
		WindowEnd:   a.Window.End,
		Request:     req,
		Result:      res,
	}
	if a.Journal != nil {
		if err := a.Journal.Record(ctx, rec); err != nil {
			// the figures are still valid; only the audit trail is missing
			log.Error("journal write failed", logger.String("id", rec.ID), logger.Error(err))
		}
	}

	if a.Metrics != nil {
		a.Metrics.RecordAssessment("ok")
		a.Metrics.RecordModel(v.Nu, float64(v.Used), v.Clamped)
	}
	log.Info("assessment complete",
		logger.String("id", rec.ID),
		logger.Int("horizon_days", res.HorizonDays),
		logger.String("horizon_var", res.HorizonVaR.String()),
		logger.Float64("potential_loss", res.PotentialLoss),
		logger.Bool("clamped", v.Clamped),
	)
	return rec, nil
}

func (a *Assessor) fail(log *logger.Logger, err error) (journal.Assessment, error) {
	kind := apperr.KindOf(err)
	if a.Metrics != nil {
		a.Metrics.RecordAssessment(kind.Code())
	}
	if kind.UserCorrectable() {
		log.Info("request rejected", logger.String("kind", kind.String()), logger.Error(err))
	} else {
		log.Error("assessment failed", logger.String("kind", kind.String()), logger.Error(err))
	}
	return journal.Assessment{}, err
}

func (a *Assessor) logger() *logger.Logger {
	if a.Log == nil {
		return logger.Nop()
	}
	return a.Log
}

func (a *Assessor) newID() string {
	if a.IDs == nil {
		return id.New()
	}
	return a.IDs.New()
}

func (a *Assessor) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}
