package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/feed/replay"
	"github.com/rustyeddy/fxrisk/internal/fixture"
	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/pkg/apperr"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/pkg/logger"
	"github.com/rustyeddy/fxrisk/pkg/metrics"
	"github.com/rustyeddy/fxrisk/risk"
)

func newAssessor(t *testing.T, src *fixture.Source) (*Assessor, journal.Store, *bytes.Buffer) {
	t.Helper()

	store, err := journal.NewSQLite(filepath.Join(t.TempDir(), "j.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var logs bytes.Buffer
	fixed := time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	return &Assessor{
		Source:  src,
		Journal: store,
		Metrics: metrics.New(),
		Log:     logger.NewWriter(&logs),
		IDs:     id.NewGenerator(func() time.Time { return fixed }, 1),
		Policy:  risk.DefaultPolicy(),
		Window:  market.DefaultWindow(),
		Timeout: time.Second,
		Now:     func() time.Time { return fixed },
	}, store, &logs
}

func TestRunRecordsAssessment(t *testing.T) {
	src := &fixture.Source{Snap: fixture.Snapshot(800, 99, 10.0)}
	a, store, logs := newAssessor(t, src)

	rec, err := a.Run(context.Background(), risk.ReferenceRequest())
	require.NoError(t, err)

	assert.True(t, id.Valid(rec.ID))
	assert.Equal(t, "fixture", rec.Source)
	assert.Equal(t, 61, rec.Result.HorizonDays)
	assert.Equal(t, market.DefaultHistoryStart, rec.WindowStart)
	assert.Equal(t, 2, src.Calls())

	got, err := store.Get(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Result, got.Result)

	assert.Equal(t, 1.0, a.Metrics.AssessmentCount("ok"))
	assert.Contains(t, logs.String(), "assessment complete")
}

func TestRunRejectsBeforeFetching(t *testing.T) {
	src := &fixture.Source{Snap: fixture.Snapshot(800, 99, 10.0)}
	a, _, _ := newAssessor(t, src)

	req := risk.ReferenceRequest()
	req.AmountUSD = -1
	_, err := a.Run(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidAmount, apperr.KindOf(err))
	assert.Zero(t, src.Calls())
	assert.Equal(t, 1.0, a.Metrics.AssessmentCount("ERR_INVALID_AMOUNT"))
}

func TestRunFeedFailure(t *testing.T) {
	src := &fixture.Source{Err: errors.New("connection refused")}
	a, store, logs := newAssessor(t, src)

	_, err := a.Run(context.Background(), risk.ReferenceRequest())
	require.Error(t, err)
	assert.Equal(t, apperr.DataUnavailable, apperr.KindOf(err))
	assert.Contains(t, logs.String(), "assessment failed")

	all, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAssessReplayedSnapshotIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, replay.Write(&buf, fixture.Snapshot(800, 7, 10.2)))
	src, err := replay.Read(&buf)
	require.NoError(t, err)

	a := &Assessor{
		Source:  src,
		Policy:  risk.DefaultPolicy(),
		Window:  market.DefaultWindow(),
		Timeout: time.Second,
	}
	first, err := a.Run(context.Background(), risk.ReferenceRequest())
	require.NoError(t, err)
	second, err := a.Run(context.Background(), risk.ReferenceRequest())
	require.NoError(t, err)

	assert.Equal(t, first.Result, second.Result)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestJournalFailureKeepsResult(t *testing.T) {
	src := &fixture.Source{Snap: fixture.Snapshot(800, 99, 10.0)}
	a, store, logs := newAssessor(t, src)
	require.NoError(t, store.Close())

	rec, err := a.Run(context.Background(), risk.ReferenceRequest())
	require.NoError(t, err)
	assert.Greater(t, rec.Result.PotentialLoss, 0.0)
	assert.Contains(t, logs.String(), "journal write failed")
}

func TestNewSource(t *testing.T) {
	cfg := config.Default()
	src, err := NewSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", src.Name())

	cfg.Feed.Provider = "oanda"
	cfg.Feed.Oanda.Token = "t"
	src, err = NewSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "oanda", src.Name())

	path := filepath.Join(t.TempDir(), "snap.csv")
	require.NoError(t, replay.WriteFile(path, fixture.Snapshot(300, 1, 10)))
	cfg.Feed.Provider = "replay"
	cfg.Feed.Replay.Path = path
	src, err = NewSource(cfg)
	require.NoError(t, err)
	assert.Equal(t, "replay", src.Name())

	cfg.Feed.Provider = "nope"
	_, err = NewSource(cfg)
	assert.Error(t, err)
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Journal.Type = "csv"
	cfg.Journal.CSVPath = filepath.Join(t.TempDir(), "a.csv")

	a, store, err := New(cfg, logger.Nop(), nil)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, cfg.Policy(), a.Policy)
	assert.Equal(t, market.DefaultWindow(), a.Window)
	assert.IsType(t, &journal.CSV{}, store)
}
