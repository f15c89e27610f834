package trading

import (
	"context"
	"errors"
	"math"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/connectors"
	"memetrader/src/model"
)

// SkipReason explains why an assessment did not turn into a position.
type SkipReason string

const (
	SkipNone        SkipReason = ""
	SkipPaused      SkipReason = "trading_paused"
	SkipNotBuy      SkipReason = "recommendation_not_buy"
	SkipPositionCap SkipReason = "position_cap_reached"
	SkipDuplicate   SkipReason = "duplicate_position"
	SkipBuyFailed   SkipReason = "buy_failed"
)

// PositionStore persists positions opened by the gate.
type PositionStore interface {
	Insert(ctx context.Context, position *model.Position) error
}

// TradeLogStore records executed venue trades.
type TradeLogStore interface {
	Insert(ctx context.Context, entry *model.TransactionLog) error
}

// OpenNotifier is told about freshly opened positions.
type OpenNotifier interface {
	PositionOpened(position *model.Position)
}

// Gate is the last stop between a BUY assessment and real funds. It owns the
// decision to open, sized and capped, and hands confirmed buys to the ledger.
type Gate struct {
	config    Config
	ledger    *Ledger
	trader    *Trader
	rules     *ExitRules
	positions PositionStore
	tradeLog  TradeLogStore
	notifier  OpenNotifier
	paused    func() bool
}

func NewGate(config Config, ledger *Ledger, trader *Trader, positions PositionStore, tradeLog TradeLogStore, notifier OpenNotifier, paused func() bool) *Gate {
	return &Gate{
		config:    config,
		ledger:    ledger,
		trader:    trader,
		rules:     NewExitRules(config),
		positions: positions,
		tradeLog:  tradeLog,
		notifier:  notifier,
		paused:    paused,
	}
}

// Consider takes an assessment through the open checks in order: pause state,
// recommendation, position cap, duplicate live position. Passing all of them
// reserves the ledger slot, executes the buy and commits the new position. A
// failed buy releases the slot so a later signal can try again.
func (g *Gate) Consider(ctx context.Context, assessment *model.Assessment) (*model.Position, SkipReason, error) {
	log := logger.WithFields(logger.Fields{
		"component": "Gate",
		"symbol":    assessment.Symbol,
		"address":   assessment.Address,
	})

	if g.paused() {
		log.Info("Skipping buy, trading paused")
		return nil, SkipPaused, nil
	}
	if assessment.Recommendation != model.RecommendationBuy {
		return nil, SkipNotBuy, nil
	}

	if err := g.ledger.Reserve(assessment.Address, g.config.MaxPositions); err != nil {
		switch {
		case errors.Is(err, ErrPositionCap):
			log.WithField("max_positions", g.config.MaxPositions).Info("Skipping buy, position cap reached")
			return nil, SkipPositionCap, nil
		case errors.Is(err, ErrDuplicatePosition):
			log.Info("Skipping buy, live position already open")
			return nil, SkipDuplicate, nil
		default:
			return nil, SkipNone, err
		}
	}

	amountSOL := math.Min(g.config.BuyAmountSOL, g.config.MaxBuyAmountSOL)

	result, err := g.trader.BuyToken(ctx, assessment.Address, amountSOL, g.config.BuySlippage)
	if err != nil {
		g.ledger.Release(assessment.Address)
		return nil, SkipNone, err
	}

	g.logTrade(ctx, model.TradeSideBuy, assessment, result)

	if !result.Success {
		g.ledger.Release(assessment.Address)
		log.WithField("reason", result.Error).Warn("Buy failed")
		return nil, SkipBuyFailed, nil
	}

	stopLoss, takeProfit := g.rules.Levels(result.Price)
	position := &model.Position{
		Address:         assessment.Address,
		Symbol:          assessment.Symbol,
		EntryPrice:      result.Price,
		CurrentPrice:    result.Price,
		AmountSOL:       result.AmountIn,
		TokensHeld:      result.AmountOut,
		EntryTimestamp:  result.Timestamp,
		Status:          model.PositionStatusOpen,
		StopLossPrice:   stopLoss,
		TakeProfitPrice: takeProfit,
	}

	g.ledger.Commit(position)

	if err := g.positions.Insert(ctx, position); err != nil {
		log.WithError(err).Error("Failed to persist opened position")
	}

	if g.notifier != nil {
		g.notifier.PositionOpened(position)
	}

	log.WithFields(logger.Fields{
		"venue":       result.Venue,
		"entry_price": result.Price,
		"amount_sol":  result.AmountIn,
		"tokens":      result.AmountOut,
		"stop_loss":   stopLoss,
		"take_profit": takeProfit,
	}).Info("Position opened")

	return position, SkipNone, nil
}

func (g *Gate) logTrade(ctx context.Context, side string, assessment *model.Assessment, result *connectors.TradeResult) {
	entry := &model.TransactionLog{
		Side:          side,
		Address:       assessment.Address,
		Symbol:        assessment.Symbol,
		Venue:         result.Venue,
		TransactionID: result.TransactionID,
		Price:         result.Price,
		AmountIn:      result.AmountIn,
		AmountOut:     result.AmountOut,
		Success:       result.Success,
		Error:         result.Error,
	}
	if err := g.tradeLog.Insert(ctx, entry); err != nil {
		logger.WithFields(logger.Fields{
			"component": "Gate",
			"address":   assessment.Address,
		}).WithError(err).Error("Failed to record trade")
	}
}
