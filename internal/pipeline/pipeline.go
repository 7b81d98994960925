// Package pipeline is the batch driver: on every tick it scores the
// last fully completed hour for each live chatter-creator pair.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chatter-insights-go/internal/config"
	"chatter-insights-go/internal/logger"
	"chatter-insights-go/internal/scorer"
	"chatter-insights-go/internal/types"
	"chatter-insights-go/internal/window"
)

// Driver wakes up periodically, builds scoring windows and runs them
// sequentially. Sequential processing keeps profile updates for the
// same pair serialized (the EMA fold is not associative).
type Driver struct {
	cfg      config.Config
	sessions window.SessionSource
	scorer   *scorer.Scorer
	loc      *time.Location
}

func NewDriver(cfg config.Config, sessions window.SessionSource, sc *scorer.Scorer) (*Driver, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}
	return &Driver{cfg: cfg, sessions: sessions, scorer: sc, loc: loc}, nil
}

// Run ticks until the context is cancelled. The first pass runs
// immediately.
func (d *Driver) Run(ctx context.Context) {
	log := logger.New().WithField("component", "pipeline")
	log.WithField("tick_interval", d.cfg.TickInterval.String()).Info("scoring driver started")

	d.RunOnce(ctx)

	ticker := time.NewTicker(d.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scoring driver stopped")
			return
		case <-ticker.C:
			d.RunOnce(ctx)
		}
	}
}

// RunSummary reports what one pass did.
type RunSummary struct {
	RunID       string    `json:"run_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	TotalPairs  int       `json:"total_pairs"`
	Scored      int       `json:"scored"`
	Skipped     int       `json:"skipped"`
	ElapsedMs   int64     `json:"elapsed_ms"`
}

// RunOnce scores one batch: builds windows for the last completed hour,
// rotates round-robin by hour so every pair eventually gets covered even
// when MaxPairsPerRun is small, and stops early when the run budget is
// spent. One window failing never blocks the rest.
func (d *Driver) RunOnce(ctx context.Context) RunSummary {
	start := time.Now()
	runID := uuid.New().String()
	log := logger.New().WithField("component", "pipeline").WithField("run_id", runID)

	windowStart, windowEnd := LastCompletedHour(time.Now(), d.loc)
	summary := RunSummary{RunID: runID, WindowStart: windowStart, WindowEnd: windowEnd}

	log.WithField("window_start", windowStart.Format(time.RFC3339)).
		WithField("window_end", windowEnd.Format(time.RFC3339)).
		Info("building scoring windows")

	windows, err := window.Build(ctx, d.sessions, windowStart, windowEnd)
	if err != nil {
		log.WithField("error", err.Error()).Error("window build failed")
		summary.ElapsedMs = time.Since(start).Milliseconds()
		return summary
	}
	summary.TotalPairs = len(windows)
	if len(windows) == 0 {
		log.Info("no active chatter sessions in scoring window")
		summary.ElapsedMs = time.Since(start).Milliseconds()
		return summary
	}

	rotated := rotate(windows, int(time.Now().Unix()/3600))

	limit := d.cfg.MaxPairsPerRun
	if limit > len(rotated) {
		limit = len(rotated)
	}

	for i := 0; i < limit; i++ {
		if time.Since(start) > d.cfg.RunBudget {
			log.Warn("run budget hit, stopping early")
			break
		}
		if res := d.scorer.ScoreWindow(ctx, rotated[i]); res != nil {
			summary.Scored++
		} else {
			summary.Skipped++
		}
	}

	summary.ElapsedMs = time.Since(start).Milliseconds()
	log.WithField("scored", summary.Scored).
		WithField("skipped", summary.Skipped).
		WithField("elapsed_ms", summary.ElapsedMs).
		Info("scoring pass finished")
	return summary
}

// LastCompletedHour returns the UTC boundaries of the last fully
// completed hour in the given location. Hour alignment follows local
// wall clock (DST transitions included); storage stays UTC.
func LastCompletedHour(now time.Time, loc *time.Location) (time.Time, time.Time) {
	local := now.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
	start := end.Add(-time.Hour)
	return start.UTC(), end.UTC()
}

func rotate(windows []types.ScoringWindow, seed int) []types.ScoringWindow {
	if len(windows) == 0 {
		return windows
	}
	offset := seed % len(windows)
	if offset < 0 {
		offset += len(windows)
	}
	return append(append([]types.ScoringWindow{}, windows[offset:]...), windows[:offset]...)
}
