package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenqi/daystar/internal/api"
	"github.com/wrenqi/daystar/internal/contracts"
	"github.com/wrenqi/daystar/internal/fusion"
	"github.com/wrenqi/daystar/internal/store"
	"github.com/wrenqi/daystar/pkg/logger"
)

// SignalScanJob fuses the latest trading day's dimension scores into
// signals after market close, publishes them to the API snapshot and
// pushes actionable ones to alert subscribers.
type SignalScanJob struct {
	scores *store.ScoreRepository
	bars   *store.BarRepository
	fusion *fusion.Engine
	snap   *api.Store
	hub    *api.Hub
	logger *logger.Logger
}

// NewSignalScanJob creates the daily scan job.
func NewSignalScanJob(
	scores *store.ScoreRepository,
	bars *store.BarRepository,
	fe *fusion.Engine,
	snap *api.Store,
	hub *api.Hub,
	log *logger.Logger,
) *SignalScanJob {
	return &SignalScanJob{
		scores: scores,
		bars:   bars,
		fusion: fe,
		snap:   snap,
		hub:    hub,
		logger: log,
	}
}

// Name returns the job name.
func (j *SignalScanJob) Name() string { return "signal_scan" }

// Schedule runs after the A-share close, weekdays at 15:30.
func (j *SignalScanJob) Schedule() string { return "0 30 15 * * MON-FRI" }

// Run scans the most recent trading day. Symbols with a bar but no
// score record are logged as missing-score gaps and skipped.
func (j *SignalScanJob) Run(ctx context.Context) error {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	dayBars, err := j.bars.GetRange(ctx, date, date)
	if err != nil {
		return fmt.Errorf("failed to load bars: %w", err)
	}
	if len(dayBars) == 0 {
		j.logger.WithField("date", date.Format("2006-01-02")).Info("No bars for scan date, skipping")
		return nil
	}

	records, err := j.scores.GetByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}

	recIdx := make(map[string]contracts.ScoreRecord, len(records))
	for _, rec := range records {
		recIdx[rec.Symbol] = rec
	}

	signals := make([]contracts.FusedSignal, 0, len(dayBars))
	gaps := 0

	for _, bar := range dayBars {
		rec, ok := recIdx[bar.Symbol]
		if !ok {
			gaps++
			j.logger.WithFields(map[string]interface{}{
				"symbol": bar.Symbol,
				"date":   date.Format("2006-01-02"),
				"kind":   contracts.GapMissingScore,
			}).Warn("Data gap")
			continue
		}
		signals = append(signals, j.fusion.Generate(rec, bar.Close, 0))
	}

	j.snap.SetSignals(signals)
	j.hub.BroadcastActionable(signals)

	actionable := 0
	for _, sig := range signals {
		if sig.Grade.Actionable() {
			actionable++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"date":       date.Format("2006-01-02"),
		"signals":    len(signals),
		"actionable": actionable,
		"gaps":       gaps,
	}).Info("Signal scan complete")

	return nil
}
