package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"

	"memetrader/src/model"
)

func (e *Engine) statsLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.StatsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.publishStats(ctx)
		}
	}
}

// publishStats aggregates session counters with realized results from closed
// positions, persists the snapshot and posts a low-priority digest.
func (e *Engine) publishStats(ctx context.Context) {
	snapshot := &model.StatisticsSnapshot{
		TokensDiscovered: atomic.LoadInt64(&e.discovered),
		TokensAssessed:   atomic.LoadInt64(&e.assessed),
		PositionsOpened:  atomic.LoadInt64(&e.opened),
		PositionsClosed:  atomic.LoadInt64(&e.closed),
	}

	closed, err := e.positions.FindClosedSince(ctx, e.config.WinRateLookbackDays)
	if err != nil {
		logger.WithField("component", "Engine").WithError(err).Warn("Win-rate query failed")
	} else if len(closed) > 0 {
		wins := 0
		totalPnl := decimal.Zero
		for _, position := range closed {
			if position.PnlPercent > 0 {
				wins++
			}
			realized := decimal.NewFromFloat(position.AmountSOL).
				Mul(decimal.NewFromFloat(position.PnlPercent)).
				Div(decimal.NewFromInt(100))
			totalPnl = totalPnl.Add(realized)
		}
		snapshot.WinRate = float64(wins) / float64(len(closed)) * 100
		snapshot.TotalPnlSOL, _ = totalPnl.Float64()
	}

	if err := e.statistics.Insert(ctx, snapshot); err != nil {
		logger.WithField("component", "Engine").WithError(err).Error("Failed to persist statistics snapshot")
	}

	e.notifier.StatusDigest(snapshot)
}

func (e *Engine) pruneLoop(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := e.signalGate.Prune(); removed > 0 {
				logger.WithFields(logger.Fields{
					"component": "Engine",
					"removed":   removed,
				}).Debug("Pruned expired dedup entries")
			}
		}
	}
}
