package trading

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"memetrader/src/model"
)

type fakeCloseNotifier struct {
	closed  []*model.Position
	partial []bool
}

func (n *fakeCloseNotifier) PositionClosed(position *model.Position, partial bool) {
	n.closed = append(n.closed, position)
	n.partial = append(n.partial, partial)
}

type monitorFixture struct {
	monitor  *Monitor
	ledger   *Ledger
	venue    *fakeVenue
	store    *fakePositionStore
	tradeLog *fakeTradeLog
	notifier *fakeCloseNotifier
	now      time.Time
}

func newMonitorFixture(venuePrice float64) *monitorFixture {
	f := &monitorFixture{
		ledger:   NewLedger(),
		venue:    &fakeVenue{name: "jupiter", price: venuePrice},
		store:    &fakePositionStore{},
		tradeLog: &fakeTradeLog{},
		notifier: &fakeCloseNotifier{},
		now:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	trader := NewTrader(rulesConfig(), NewRouter(f.venue), &fakeBalances{sol: 100, tokens: 1e9}, "wallet-pubkey")
	f.monitor = NewMonitor(rulesConfig(), f.ledger, trader, f.store, f.tradeLog, f.notifier, func() bool { return false })
	f.monitor.now = func() time.Time { return f.now }
	return f
}

func (f *monitorFixture) addPosition(entry float64, age time.Duration) {
	f.ledger.Commit(openPosition(entry, age, f.now))
}

// live returns the single ledger entry, failing the test when the position
// left the ledger.
func (f *monitorFixture) live(t *testing.T) model.Position {
	t.Helper()
	snapshot := f.ledger.Snapshot()
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 live position, got %d", len(snapshot))
	}
	return snapshot[0]
}

// lastPersisted returns the most recent write-through, which carries the
// final state of a position that already left the ledger.
func (f *monitorFixture) lastPersisted(t *testing.T) *model.Position {
	t.Helper()
	if len(f.store.updated) == 0 {
		t.Fatal("expected at least one persisted update")
	}
	return f.store.updated[len(f.store.updated)-1]
}

func TestMonitorStopLossFullClose(t *testing.T) {
	f := newMonitorFixture(40) // entry 100, stop at 50
	f.addPosition(100, time.Hour)

	f.monitor.Tick(context.Background())

	if f.ledger.Count() != 0 {
		t.Fatal("closed position should leave the ledger")
	}
	persisted := f.lastPersisted(t)
	if persisted.Status != model.PositionStatusClosed {
		t.Fatalf("expected CLOSED, got %s", persisted.Status)
	}
	if persisted.ExitReason != model.ExitReasonStopLoss {
		t.Fatalf("expected STOP_LOSS, got %s", persisted.ExitReason)
	}
	if persisted.TokensHeld != 0 {
		t.Fatalf("expected full liquidation, got %f tokens", persisted.TokensHeld)
	}
	if len(f.notifier.closed) != 1 || f.notifier.partial[0] {
		t.Fatal("expected one full-close notification")
	}
	if len(f.tradeLog.entries) != 1 || f.tradeLog.entries[0].Side != model.TradeSideSell {
		t.Fatal("sell not recorded in the trade log")
	}
}

func TestMonitorTakeProfitKeepsMoonbag(t *testing.T) {
	f := newMonitorFixture(1500) // entry 100, take profit at 1000
	f.addPosition(100, time.Hour)

	f.monitor.Tick(context.Background())

	position := f.live(t)
	if position.Status != model.PositionStatusPartialClose {
		t.Fatalf("expected PARTIAL_CLOSE, got %s", position.Status)
	}
	if math.Abs(position.TokensHeld-150) > 1e-9 {
		t.Fatalf("expected 15%% moonbag of 1000 tokens, got %f", position.TokensHeld)
	}
	if len(f.notifier.closed) != 1 || !f.notifier.partial[0] {
		t.Fatal("expected one partial-close notification")
	}
}

func TestMonitorTimeLimitExit(t *testing.T) {
	f := newMonitorFixture(200) // no price trigger
	f.addPosition(100, 25*time.Hour)

	f.monitor.Tick(context.Background())

	if f.ledger.Count() != 0 {
		t.Fatal("expired position should leave the ledger")
	}
	persisted := f.lastPersisted(t)
	if persisted.Status != model.PositionStatusClosed {
		t.Fatalf("expected CLOSED, got %s", persisted.Status)
	}
	if persisted.ExitReason != model.ExitReasonTimeLimit {
		t.Fatalf("expected TIME_LIMIT, got %s", persisted.ExitReason)
	}
}

func TestMonitorNoTriggerUpdatesPrice(t *testing.T) {
	f := newMonitorFixture(200)
	f.addPosition(100, time.Hour)

	f.monitor.Tick(context.Background())

	position := f.live(t)
	if position.Status != model.PositionStatusOpen {
		t.Fatalf("expected OPEN, got %s", position.Status)
	}
	if position.CurrentPrice != 200 {
		t.Fatalf("current price = %f, want 200", position.CurrentPrice)
	}
	if math.Abs(position.PnlPercent-100) > 1e-9 {
		t.Fatalf("pnl = %f, want 100", position.PnlPercent)
	}
	if f.venue.swapCalls != 0 {
		t.Fatal("no exit condition means no sell")
	}
	if len(f.store.updated) != 1 {
		t.Fatal("price tick must be written through")
	}
}

func TestMonitorFailedSellLeavesPositionUnchanged(t *testing.T) {
	f := newMonitorFixture(40)
	f.venue.swapFail = "order rejected"
	f.addPosition(100, time.Hour)

	f.monitor.Tick(context.Background())

	position := f.live(t)
	if position.Status != model.PositionStatusOpen {
		t.Fatalf("failed sell must leave the position OPEN, got %s", position.Status)
	}
	if position.TokensHeld != 1000 {
		t.Fatalf("failed sell must not touch the holding, got %f", position.TokensHeld)
	}
	if len(f.notifier.closed) != 0 {
		t.Fatal("no close notification on a failed sell")
	}

	// The next tick retries naturally.
	f.venue.swapFail = ""
	f.monitor.Tick(context.Background())
	if f.ledger.Count() != 0 {
		t.Fatal("retry tick should close the position")
	}
	if persisted := f.lastPersisted(t); persisted.Status != model.PositionStatusClosed {
		t.Fatalf("retry tick should persist CLOSED, got %s", persisted.Status)
	}
}

func TestMonitorPriceFailureSkipsPosition(t *testing.T) {
	f := newMonitorFixture(0)
	f.venue.priceErr = errors.New("venue down")
	f.addPosition(100, time.Hour)

	f.monitor.Tick(context.Background())

	position := f.live(t)
	if position.Status != model.PositionStatusOpen || position.CurrentPrice != 100 {
		t.Fatal("price failure must leave the position untouched")
	}
	if f.venue.swapCalls != 0 {
		t.Fatal("no sell without a fresh price")
	}
}
