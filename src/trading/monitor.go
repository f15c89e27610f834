package trading

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"memetrader/src/connectors"
	"memetrader/src/model"
)

// PositionUpdater writes position mutations through to storage.
type PositionUpdater interface {
	UpdateByAddress(ctx context.Context, position *model.Position) error
}

// CloseNotifier is told about exits, partial or full.
type CloseNotifier interface {
	PositionClosed(position *model.Position, partial bool)
}

// Monitor drives the exit side of the pipeline: a fixed-interval loop that
// refreshes prices for every live position, evaluates the exit rules and
// executes sells. A failed sell leaves the position untouched so the next
// tick retries it.
type Monitor struct {
	config   Config
	ledger   *Ledger
	trader   *Trader
	rules    *ExitRules
	store    PositionUpdater
	tradeLog TradeLogStore
	notifier CloseNotifier
	paused   func() bool
	now      func() time.Time
}

func NewMonitor(config Config, ledger *Ledger, trader *Trader, store PositionUpdater, tradeLog TradeLogStore, notifier CloseNotifier, paused func() bool) *Monitor {
	return &Monitor{
		config:   config,
		ledger:   ledger,
		trader:   trader,
		rules:    NewExitRules(config),
		store:    store,
		tradeLog: tradeLog,
		notifier: notifier,
		paused:   paused,
		now:      time.Now,
	}
}

// Run blocks until the context is cancelled, ticking every MonitorInterval.
func (m *Monitor) Run(ctx context.Context) {
	log := logger.WithField("component", "Monitor")
	log.WithField("interval", m.config.MonitorInterval.String()).Info("Position monitor started")

	ticker := time.NewTicker(m.config.MonitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Position monitor stopped")
			return
		case <-ticker.C:
			if m.paused() {
				continue
			}
			m.Tick(ctx)
		}
	}
}

// Tick runs one monitoring pass over every live position.
func (m *Monitor) Tick(ctx context.Context) {
	for _, address := range m.ledger.Addresses() {
		if ctx.Err() != nil {
			return
		}
		m.checkPosition(ctx, address)
	}
}

func (m *Monitor) checkPosition(ctx context.Context, address string) {
	position, err := m.ledger.Lease(address)
	if err != nil {
		// Another goroutine is exiting this position, or it just closed.
		return
	}
	defer m.ledger.Unlease(address)

	log := logger.WithFields(logger.Fields{
		"component": "Monitor",
		"symbol":    position.Symbol,
		"address":   address,
	})

	price, err := m.trader.GetTokenPrice(ctx, address)
	if err != nil {
		log.WithError(err).Warn("Price refresh failed, will retry next tick")
		return
	}

	position.CurrentPrice = price
	position.PnlPercent = PnlPercent(position.EntryPrice, price)

	decision, triggered := m.rules.Evaluate(position, price, m.now())
	if !triggered {
		if err := m.store.UpdateByAddress(ctx, position); err != nil {
			log.WithError(err).Warn("Failed to persist price tick")
		}
		return
	}

	log.WithFields(logger.Fields{
		"reason":        decision.Reason,
		"current_price": price,
		"entry_price":   position.EntryPrice,
		"pnl_percent":   position.PnlPercent,
	}).Info("Exit condition triggered")

	sellAmount := position.TokensHeld * decision.SellFraction

	result, err := m.trader.SellToken(ctx, address, sellAmount, m.config.SellSlippage)
	if err != nil {
		log.WithError(err).Error("Sell failed, position unchanged")
		return
	}

	m.logTrade(ctx, position, result)

	if !result.Success {
		log.WithField("reason", result.Error).Warn("Sell not executed, position unchanged")
		return
	}

	ApplyExit(position, decision, price, m.now())

	if err := m.store.UpdateByAddress(ctx, position); err != nil {
		log.WithError(err).Error("Failed to persist exit")
	}

	if m.notifier != nil {
		m.notifier.PositionClosed(position, position.Status == model.PositionStatusPartialClose)
	}

	log.WithFields(logger.Fields{
		"reason":      decision.Reason,
		"status":      position.Status,
		"pnl_percent": position.PnlPercent,
		"tokens_kept": position.TokensHeld,
	}).Info("Position exit executed")
}

func (m *Monitor) logTrade(ctx context.Context, position *model.Position, result *connectors.TradeResult) {
	entry := &model.TransactionLog{
		Side:          model.TradeSideSell,
		Address:       position.Address,
		Symbol:        position.Symbol,
		Venue:         result.Venue,
		TransactionID: result.TransactionID,
		Price:         result.Price,
		AmountIn:      result.AmountIn,
		AmountOut:     result.AmountOut,
		Success:       result.Success,
		Error:         result.Error,
	}
	if err := m.tradeLog.Insert(ctx, entry); err != nil {
		logger.WithFields(logger.Fields{
			"component": "Monitor",
			"address":   position.Address,
		}).WithError(err).Error("Failed to record trade")
	}
}
