package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"memetrader/src/model"
)

// ExitDecision describes the action a monitor tick decided on for a position.
// SellFraction is the share of the held tokens to liquidate.
type ExitDecision struct {
	Reason       model.ExitReason
	SellFraction float64
	FinalStatus  model.PositionStatus
}

// ExitRules evaluates a position against the configured exit levels.
type ExitRules struct {
	stopLossPct          float64
	takeProfitMultiplier float64
	moonbagPct           float64
	maxHoldDuration      time.Duration
}

func NewExitRules(config Config) *ExitRules {
	return &ExitRules{
		stopLossPct:          config.StopLossPct,
		takeProfitMultiplier: config.TakeProfitMultiplier,
		moonbagPct:           config.MoonbagPct,
		maxHoldDuration:      config.MaxHoldDuration,
	}
}

// Levels computes the stop-loss and take-profit trigger prices for an entry.
func (r *ExitRules) Levels(entryPrice float64) (stopLoss, takeProfit float64) {
	entry := decimal.NewFromFloat(entryPrice)
	stopLoss, _ = entry.Mul(decimal.NewFromFloat(1 - r.stopLossPct)).Float64()
	takeProfit, _ = entry.Mul(decimal.NewFromFloat(r.takeProfitMultiplier)).Float64()
	return stopLoss, takeProfit
}

// Evaluate checks the exit conditions in priority order: take profit, then
// stop loss, then the hold-time limit. Take profit liquidates all but the
// moonbag; the other two liquidate the full remaining holding.
func (r *ExitRules) Evaluate(position *model.Position, currentPrice float64, now time.Time) (ExitDecision, bool) {
	if currentPrice >= position.TakeProfitPrice {
		return ExitDecision{
			Reason:       model.ExitReasonTakeProfit,
			SellFraction: 1 - r.moonbagPct,
			FinalStatus:  model.PositionStatusPartialClose,
		}, true
	}
	if currentPrice <= position.StopLossPrice {
		return ExitDecision{
			Reason:       model.ExitReasonStopLoss,
			SellFraction: 1.0,
			FinalStatus:  model.PositionStatusClosed,
		}, true
	}
	if now.Sub(position.EntryTimestamp) >= r.maxHoldDuration {
		return ExitDecision{
			Reason:       model.ExitReasonTimeLimit,
			SellFraction: 1.0,
			FinalStatus:  model.PositionStatusClosed,
		}, true
	}
	return ExitDecision{}, false
}

// PnlPercent computes (current - entry) / entry * 100.
func PnlPercent(entryPrice, currentPrice float64) float64 {
	if entryPrice == 0 {
		return 0
	}
	entry := decimal.NewFromFloat(entryPrice)
	pnl := decimal.NewFromFloat(currentPrice).Sub(entry).Div(entry).Mul(decimal.NewFromInt(100))
	out, _ := pnl.Float64()
	return out
}

// ApplyExit mutates the position after a confirmed sell. A take-profit exit
// scales the remaining holding down to the moonbag share; full exits zero it
// out and stamp the exit time.
func ApplyExit(position *model.Position, decision ExitDecision, currentPrice float64, now time.Time) {
	position.CurrentPrice = currentPrice
	position.PnlPercent = PnlPercent(position.EntryPrice, currentPrice)
	position.ExitReason = decision.Reason

	if decision.FinalStatus == model.PositionStatusPartialClose {
		keep := decimal.NewFromFloat(1 - decision.SellFraction)
		position.TokensHeld, _ = decimal.NewFromFloat(position.TokensHeld).Mul(keep).Float64()
		position.AmountSOL, _ = decimal.NewFromFloat(position.AmountSOL).Mul(keep).Float64()
	} else {
		position.TokensHeld = 0
		position.ExitTimestamp = &now
	}

	// A PARTIAL_CLOSE position taking profit again simply stays PARTIAL_CLOSE.
	if position.Status.CanTransition(decision.FinalStatus) {
		position.Status = decision.FinalStatus
	}
}
